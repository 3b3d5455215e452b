package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"renewme/internal/amqp"
	"renewme/internal/cache"
	"renewme/internal/core"
	applog "renewme/internal/log"
	"renewme/internal/store"
)

// ChangePublisher announces committed list changes.
type ChangePublisher interface {
	PublishSubscriptionChanged(ctx context.Context, msg *amqp.SubscriptionChangedMessage) error
}

// DashboardObserver receives each freshly computed dashboard.
type DashboardObserver interface {
	ObserveDashboard(d core.Dashboard)
}

// SubscriptionService applies commands to the stored list and serves the
// derived views. Commands are serialized; each successful one bumps the
// revision, which invalidates memoized dashboards.
type SubscriptionService struct {
	store     store.SubscriptionStore
	publisher ChangePublisher
	observer  DashboardObserver
	cache     *cache.LRUCache[core.Dashboard]
	clock     func() time.Time

	// source names this process in change events; revisions restart with it.
	source string

	mu       sync.Mutex
	revision int64
}

// ServiceOption configures a SubscriptionService.
type ServiceOption func(*SubscriptionService)

// WithPublisher publishes a change event after every committed command.
func WithPublisher(p ChangePublisher) ServiceOption {
	return func(s *SubscriptionService) { s.publisher = p }
}

// WithObserver reports every computed dashboard to o.
func WithObserver(o DashboardObserver) ServiceOption {
	return func(s *SubscriptionService) { s.observer = o }
}

// WithDashboardCache memoizes dashboards per revision and day.
func WithDashboardCache(c *cache.LRUCache[core.Dashboard]) ServiceOption {
	return func(s *SubscriptionService) { s.cache = c }
}

// WithClock overrides time.Now.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *SubscriptionService) { s.clock = clock }
}

func NewSubscriptionService(st store.SubscriptionStore, opts ...ServiceOption) *SubscriptionService {
	s := &SubscriptionService{store: st, clock: time.Now, source: uuid.NewString()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Revision returns the number of commands committed by this service.
func (s *SubscriptionService) Revision() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision
}

// Now returns the service clock's current time.
func (s *SubscriptionService) Now() time.Time {
	return s.clock()
}

// All returns the stored list in stored order.
func (s *SubscriptionService) All(ctx context.Context) ([]core.Subscription, error) {
	subs, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load subscriptions: %w", err)
	}
	return subs, nil
}

// List returns the filtered and sorted view.
func (s *SubscriptionService) List(ctx context.Context, f Filter) ([]core.Subscription, error) {
	subs, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	return FilterSubscriptions(subs, f), nil
}

func (s *SubscriptionService) Get(ctx context.Context, id string) (core.Subscription, error) {
	subs, err := s.All(ctx)
	if err != nil {
		return core.Subscription{}, err
	}
	sub, ok := core.Find(subs, id)
	if !ok {
		return core.Subscription{}, fmt.Errorf("%w: %s", core.ErrSubscriptionNotFound, id)
	}
	return sub, nil
}

// Create assigns an ID and creation time and appends the record.
func (s *SubscriptionService) Create(ctx context.Context, sub core.Subscription) (core.Subscription, error) {
	if strings.TrimSpace(sub.ID) == "" {
		sub.ID = uuid.NewString()
	}
	sub.CreatedAt = s.clock()
	if _, err := s.Apply(ctx, core.AddSubscription{Subscription: sub}); err != nil {
		return core.Subscription{}, err
	}
	return sub, nil
}

func (s *SubscriptionService) Update(ctx context.Context, id string, sub core.Subscription) (core.Subscription, error) {
	subs, err := s.Apply(ctx, core.UpdateSubscription{ID: id, Subscription: sub})
	if err != nil {
		return core.Subscription{}, err
	}
	updated, _ := core.Find(subs, id)
	return updated, nil
}

func (s *SubscriptionService) Delete(ctx context.Context, id string) error {
	_, err := s.Apply(ctx, core.DeleteSubscription{ID: id})
	return err
}

// Toggle flips the record's active flag and returns the result.
func (s *SubscriptionService) Toggle(ctx context.Context, id string) (core.Subscription, error) {
	subs, err := s.Apply(ctx, core.ToggleSubscription{ID: id})
	if err != nil {
		return core.Subscription{}, err
	}
	toggled, _ := core.Find(subs, id)
	return toggled, nil
}

// Import replaces the whole list. Records without a creation time get the
// current time; subs itself is left untouched.
func (s *SubscriptionService) Import(ctx context.Context, subs []core.Subscription) (int, error) {
	now := s.clock()
	subs = slices.Clone(subs)
	for i := range subs {
		if subs[i].CreatedAt.IsZero() {
			subs[i].CreatedAt = now
		}
	}
	out, err := s.Apply(ctx, core.ReplaceSubscriptions{Subscriptions: subs})
	if err != nil {
		return 0, err
	}
	return len(out), nil
}

// Apply loads the list, runs cmd against it and saves the result. The new
// list is returned.
func (s *SubscriptionService) Apply(ctx context.Context, cmd core.Command) ([]core.Subscription, error) {
	s.mu.Lock()
	subs, err := s.store.Load(ctx)
	if err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("load subscriptions: %w", err)
	}
	next, err := cmd.Apply(subs)
	if err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("%s subscription: %w", cmd.Name(), err)
	}
	if err := s.store.Save(ctx, next); err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("save subscriptions: %w", err)
	}
	s.revision++
	revision := s.revision
	s.mu.Unlock()

	id := commandTarget(cmd)
	slog.InfoContext(ctx, "Subscription command applied",
		"command", cmd.Name(),
		applog.FieldSubscriptionID, id,
		applog.FieldRevision, revision,
		"count", len(next))

	if s.publisher != nil {
		msg := amqp.NewSubscriptionChangedMessage(cmd.Name(), id, s.source, revision)
		if err := s.publisher.PublishSubscriptionChanged(ctx, msg); err != nil {
			// The list is saved; subscribers catch up on the next change.
			slog.ErrorContext(ctx, "Failed to publish subscription change",
				"command", cmd.Name(),
				applog.FieldRevision, revision,
				"error", err)
		}
	}
	return next, nil
}

func commandTarget(cmd core.Command) string {
	switch c := cmd.(type) {
	case core.AddSubscription:
		return c.Subscription.ID
	case core.UpdateSubscription:
		return c.ID
	case core.DeleteSubscription:
		return c.ID
	case core.ToggleSubscription:
		return c.ID
	}
	return ""
}

// Dashboard returns every derived view for the current day. Results are
// memoized per revision and day when a cache is configured.
func (s *SubscriptionService) Dashboard(ctx context.Context) (core.Dashboard, error) {
	now := s.clock()
	key := fmt.Sprintf("%d:%s", s.Revision(), Today(now).Format(time.DateOnly))
	if s.cache != nil {
		if d, ok := s.cache.Get(key); ok {
			return d, nil
		}
	}

	subs, err := s.All(ctx)
	if err != nil {
		return core.Dashboard{}, err
	}
	d := Snapshot(subs, now)
	if s.cache != nil {
		s.cache.Set(key, d)
	}
	if s.observer != nil {
		s.observer.ObserveDashboard(d)
	}
	return d, nil
}

// Projection returns the renewal projection series.
func (s *SubscriptionService) Projection(ctx context.Context) ([]core.MonthlyRenewals, error) {
	d, err := s.Dashboard(ctx)
	if err != nil {
		return nil, err
	}
	return d.MonthlyProjections, nil
}

// IsNotFound reports whether err means the subscription does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, core.ErrSubscriptionNotFound)
}
