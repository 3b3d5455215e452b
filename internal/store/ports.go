// Package store defines the persistence port for the subscription list.
package store

import (
	"context"

	"renewme/internal/core"
)

// SubscriptionStore persists the whole subscription list as one unit. Save
// replaces whatever was stored; list order is preserved.
type SubscriptionStore interface {
	Load(ctx context.Context) ([]core.Subscription, error)
	Save(ctx context.Context, subs []core.Subscription) error
}
