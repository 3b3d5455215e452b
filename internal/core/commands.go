package core

import "fmt"

// Command is an explicit mutation of the subscription list. Apply never
// modifies its input; it returns a new list.
type Command interface {
	Apply(subs []Subscription) ([]Subscription, error)
	Name() string
}

type (
	AddSubscription struct {
		Subscription Subscription
	}

	// UpdateSubscription replaces every editable field of the record with the
	// given ID. ID and CreatedAt of the stored record are kept.
	UpdateSubscription struct {
		ID           string
		Subscription Subscription
	}

	DeleteSubscription struct {
		ID string
	}

	// ToggleSubscription flips IsActive.
	ToggleSubscription struct {
		ID string
	}

	// ReplaceSubscriptions swaps the whole list, as an import does.
	ReplaceSubscriptions struct {
		Subscriptions []Subscription
	}
)

func (AddSubscription) Name() string      { return "add" }
func (UpdateSubscription) Name() string   { return "update" }
func (DeleteSubscription) Name() string   { return "delete" }
func (ToggleSubscription) Name() string   { return "toggle" }
func (ReplaceSubscriptions) Name() string { return "replace" }

func (c AddSubscription) Apply(subs []Subscription) ([]Subscription, error) {
	if err := c.Subscription.Validate(); err != nil {
		return nil, err
	}
	if indexOf(subs, c.Subscription.ID) >= 0 {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateID, c.Subscription.ID)
	}
	out := make([]Subscription, 0, len(subs)+1)
	out = append(out, subs...)
	return append(out, c.Subscription), nil
}

func (c UpdateSubscription) Apply(subs []Subscription) ([]Subscription, error) {
	i := indexOf(subs, c.ID)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrSubscriptionNotFound, c.ID)
	}
	updated := c.Subscription
	updated.ID = subs[i].ID
	updated.CreatedAt = subs[i].CreatedAt
	if err := updated.Validate(); err != nil {
		return nil, err
	}
	out := clone(subs)
	out[i] = updated
	return out, nil
}

func (c DeleteSubscription) Apply(subs []Subscription) ([]Subscription, error) {
	i := indexOf(subs, c.ID)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrSubscriptionNotFound, c.ID)
	}
	out := make([]Subscription, 0, len(subs)-1)
	out = append(out, subs[:i]...)
	return append(out, subs[i+1:]...), nil
}

func (c ToggleSubscription) Apply(subs []Subscription) ([]Subscription, error) {
	i := indexOf(subs, c.ID)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrSubscriptionNotFound, c.ID)
	}
	out := clone(subs)
	out[i].IsActive = !out[i].IsActive
	return out, nil
}

func (c ReplaceSubscriptions) Apply(_ []Subscription) ([]Subscription, error) {
	seen := make(map[string]struct{}, len(c.Subscriptions))
	for i, s := range c.Subscriptions {
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("record %d (%q): %w", i, s.Name, err)
		}
		if _, dup := seen[s.ID]; dup || s.ID == "" {
			return nil, fmt.Errorf("record %d (%q): %w", i, s.Name, ErrDuplicateID)
		}
		seen[s.ID] = struct{}{}
	}
	return clone(c.Subscriptions), nil
}

// Find returns the record with the given ID.
func Find(subs []Subscription, id string) (Subscription, bool) {
	if i := indexOf(subs, id); i >= 0 {
		return subs[i], true
	}
	return Subscription{}, false
}

func indexOf(subs []Subscription, id string) int {
	for i := range subs {
		if subs[i].ID == id {
			return i
		}
	}
	return -1
}

func clone(subs []Subscription) []Subscription {
	out := make([]Subscription, len(subs))
	copy(out, subs)
	return out
}
