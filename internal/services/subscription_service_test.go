package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"renewme/internal/amqp"
	"renewme/internal/cache"
	"renewme/internal/core"
	"renewme/internal/store/memory"
)

type recordingPublisher struct {
	actions   []string
	revisions []int64
	sources   []string
	err       error
}

func (p *recordingPublisher) PublishSubscriptionChanged(_ context.Context, msg *amqp.SubscriptionChangedMessage) error {
	p.actions = append(p.actions, msg.Action)
	p.revisions = append(p.revisions, msg.Revision)
	p.sources = append(p.sources, msg.Source)
	return p.err
}

type countingObserver struct{ n int }

func (o *countingObserver) ObserveDashboard(core.Dashboard) { o.n++ }

type failingStore struct{ err error }

func (f failingStore) Load(context.Context) ([]core.Subscription, error) { return nil, f.err }
func (f failingStore) Save(context.Context, []core.Subscription) error   { return f.err }

func newTestService(t *testing.T, opts ...ServiceOption) (*SubscriptionService, *recordingPublisher) {
	t.Helper()
	pub := &recordingPublisher{}
	clock := func() time.Time { return testToday.Add(9 * time.Hour) }
	opts = append([]ServiceOption{WithPublisher(pub), WithClock(clock)}, opts...)
	return NewSubscriptionService(memory.New(nil), opts...), pub
}

func newInput(name string) core.Subscription {
	return core.Subscription{
		Name: name, Amount: 12, Currency: "USD", Frequency: core.Monthly,
		Category: "Software", RenewalDate: testToday.AddDate(0, 0, 4), IsActive: true,
	}
}

func TestSubscriptionServiceLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, pub := newTestService(t)

	created, err := svc.Create(ctx, newInput("Figma"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == "" || !created.CreatedAt.Equal(svc.Now()) {
		t.Fatalf("Create did not assign identity: %+v", created)
	}

	edit := newInput("Figma Pro")
	edit.Amount = 15
	updated, err := svc.Update(ctx, created.ID, edit)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Name != "Figma Pro" || updated.ID != created.ID || !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("unexpected update result: %+v", updated)
	}

	toggled, err := svc.Toggle(ctx, created.ID)
	if err != nil || toggled.IsActive {
		t.Fatalf("Toggle: %+v err=%v", toggled, err)
	}

	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Get(ctx, created.ID); !IsNotFound(err) {
		t.Fatalf("Get after delete: %v", err)
	}

	wantActions := []string{"add", "update", "toggle", "delete"}
	if len(pub.actions) != len(wantActions) {
		t.Fatalf("published %v, want %v", pub.actions, wantActions)
	}
	for i, a := range wantActions {
		if pub.actions[i] != a || pub.revisions[i] != int64(i+1) {
			t.Errorf("event %d = %s@%d, want %s@%d", i, pub.actions[i], pub.revisions[i], a, i+1)
		}
	}
	if svc.Revision() != 4 {
		t.Errorf("Revision() = %d, want 4", svc.Revision())
	}
	for _, src := range pub.sources {
		if src == "" || src != pub.sources[0] {
			t.Fatalf("events should share one source, got %v", pub.sources)
		}
	}

	other, otherPub := newTestService(t)
	if _, err := other.Create(ctx, newInput("Figma")); err != nil {
		t.Fatal(err)
	}
	if otherPub.sources[0] == pub.sources[0] {
		t.Error("each service instance needs its own source")
	}
}

func TestSubscriptionServiceRejectsInvalidInput(t *testing.T) {
	ctx := context.Background()
	svc, pub := newTestService(t)

	bad := newInput("")
	if _, err := svc.Create(ctx, bad); !errors.Is(err, core.ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
	if _, err := svc.Toggle(ctx, "missing"); !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if len(pub.actions) != 0 || svc.Revision() != 0 {
		t.Fatalf("failed commands must not publish or bump the revision")
	}
}

func TestSubscriptionServicePublishFailureKeepsChange(t *testing.T) {
	ctx := context.Background()
	svc, pub := newTestService(t)
	pub.err = errors.New("broker down")

	if _, err := svc.Create(ctx, newInput("Notion")); err != nil {
		t.Fatalf("Create should succeed without the broker: %v", err)
	}
	all, _ := svc.All(ctx)
	if len(all) != 1 {
		t.Fatalf("change lost: %+v", all)
	}
}

func TestSubscriptionServiceStoreErrors(t *testing.T) {
	boom := errors.New("disk full")
	svc := NewSubscriptionService(failingStore{err: boom})
	if _, err := svc.Dashboard(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
	if _, err := svc.Create(context.Background(), newInput("x")); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}

func TestSubscriptionServiceImport(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	subs := core.SampleSubscriptions(svc.Now())
	subs[0].CreatedAt = time.Time{}
	n, err := svc.Import(ctx, subs)
	if err != nil || n != 4 {
		t.Fatalf("Import = %d, %v", n, err)
	}
	got, _ := svc.Get(ctx, subs[0].ID)
	if got.CreatedAt.IsZero() {
		t.Errorf("missing CreatedAt not filled")
	}
	if !subs[0].CreatedAt.IsZero() {
		t.Errorf("Import modified the caller's slice")
	}

	dup := []core.Subscription{subs[0], subs[0]}
	if _, err := svc.Import(ctx, dup); !errors.Is(err, core.ErrDuplicateID) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
	all, _ := svc.All(ctx)
	if len(all) != 4 {
		t.Fatalf("failed import replaced the list")
	}
}

func TestSubscriptionServiceImportKeepsReminderWithoutNumber(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	sub := newInput("iCloud")
	sub.ID = "1741600000000"
	sub.Amount = 2.999
	sub.WhatsAppReminder = true
	sub.ReminderDaysBefore = 7
	if _, err := svc.Import(ctx, []core.Subscription{sub}); err != nil {
		t.Fatalf("Import: %v", err)
	}

	got, _ := svc.Get(ctx, sub.ID)
	if got.Amount != 2.999 || !got.WhatsAppReminder {
		t.Errorf("stored = %+v", got)
	}
	d, err := svc.Dashboard(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(d.Reminders) != 0 {
		t.Errorf("record without a number was queued: %+v", d.Reminders)
	}
}

func TestSubscriptionServiceListFilters(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	if _, err := svc.Import(ctx, core.SampleSubscriptions(svc.Now())); err != nil {
		t.Fatal(err)
	}

	got, err := svc.List(ctx, Filter{Query: "streaming", Sort: SortByAmount})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Name != "Netflix" || got[1].Name != "Spotify Premium" {
		t.Fatalf("unexpected list: %+v", got)
	}
}

func TestSubscriptionServiceDashboardMemoized(t *testing.T) {
	ctx := context.Background()
	obs := &countingObserver{}
	svc, _ := newTestService(t,
		WithObserver(obs),
		WithDashboardCache(cache.NewLRUCache[core.Dashboard](8, time.Hour)))

	if _, err := svc.Create(ctx, newInput("Linear")); err != nil {
		t.Fatal(err)
	}

	first, err := svc.Dashboard(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Dashboard(ctx); err != nil {
		t.Fatal(err)
	}
	if obs.n != 1 {
		t.Fatalf("dashboard recomputed for an unchanged revision: %d", obs.n)
	}
	if first.ActiveCount != 1 || first.TotalMonthly != 12 {
		t.Fatalf("unexpected dashboard: %+v", first)
	}

	if _, err := svc.Create(ctx, newInput("Slack")); err != nil {
		t.Fatal(err)
	}
	second, _ := svc.Dashboard(ctx)
	if obs.n != 2 || second.ActiveCount != 2 {
		t.Fatalf("new revision not recomputed: n=%d dashboard=%+v", obs.n, second)
	}

	proj, err := svc.Projection(ctx)
	if err != nil || len(proj) == 0 {
		t.Fatalf("Projection = %v, %v", proj, err)
	}
}
