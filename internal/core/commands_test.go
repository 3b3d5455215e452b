package core

import (
	"errors"
	"testing"
)

func listOf(ids ...string) []Subscription {
	out := make([]Subscription, len(ids))
	for i, id := range ids {
		s := validSubscription()
		s.ID = id
		s.Name = "sub " + id
		out[i] = s
	}
	return out
}

func TestAddSubscription(t *testing.T) {
	in := listOf("a")
	s := validSubscription()
	s.ID = "b"

	out, err := AddSubscription{Subscription: s}.Apply(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 || out[1].ID != "b" {
		t.Fatalf("unexpected list %v", out)
	}
	if len(in) != 1 {
		t.Fatalf("input list was mutated")
	}

	if _, err := (AddSubscription{Subscription: s}).Apply(out); !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("expected duplicate error, got %v", err)
	}

	bad := s
	bad.ID = "c"
	bad.Frequency = "hourly"
	if _, err := (AddSubscription{Subscription: bad}).Apply(out); !errors.Is(err, ErrInvalidFrequency) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateSubscriptionKeepsIdentity(t *testing.T) {
	in := listOf("a", "b")
	created := in[1].CreatedAt

	patch := validSubscription()
	patch.ID = "ignored"
	patch.Name = "Renamed"
	patch.Amount = 42

	out, err := UpdateSubscription{ID: "b", Subscription: patch}.Apply(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out[1].ID != "b" || out[1].Name != "Renamed" || out[1].Amount != 42 || !out[1].CreatedAt.Equal(created) {
		t.Fatalf("unexpected record %+v", out[1])
	}
	if in[1].Name != "sub b" {
		t.Fatalf("input list was mutated")
	}

	if _, err := (UpdateSubscription{ID: "zz", Subscription: patch}).Apply(in); !errors.Is(err, ErrSubscriptionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDeleteAndToggle(t *testing.T) {
	in := listOf("a", "b", "c")

	out, err := DeleteSubscription{ID: "b"}.Apply(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 || out[0].ID != "a" || out[1].ID != "c" {
		t.Fatalf("unexpected list after delete: %v", out)
	}
	if len(in) != 3 || in[1].ID != "b" {
		t.Fatalf("input list was mutated")
	}

	toggled, err := ToggleSubscription{ID: "c"}.Apply(out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if toggled[1].IsActive || !out[1].IsActive {
		t.Fatalf("toggle should flip only the copy")
	}

	if _, err := (DeleteSubscription{ID: "b"}).Apply(out); !errors.Is(err, ErrSubscriptionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := (ToggleSubscription{ID: "b"}).Apply(out); !errors.Is(err, ErrSubscriptionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestReplaceSubscriptions(t *testing.T) {
	out, err := ReplaceSubscriptions{Subscriptions: listOf("x", "y")}.Apply(listOf("a"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 || out[0].ID != "x" {
		t.Fatalf("unexpected list %v", out)
	}

	if _, err := (ReplaceSubscriptions{Subscriptions: listOf("x", "x")}).Apply(nil); !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
	if _, err := (ReplaceSubscriptions{Subscriptions: listOf("")}).Apply(nil); !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("expected error for empty id, got %v", err)
	}

	empty, err := ReplaceSubscriptions{}.Apply(listOf("a"))
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected empty list, got %v (err=%v)", empty, err)
	}
}

func TestFind(t *testing.T) {
	subs := listOf("a", "b")
	if s, ok := Find(subs, "b"); !ok || s.ID != "b" {
		t.Fatalf("expected to find b")
	}
	if _, ok := Find(subs, "z"); ok {
		t.Fatalf("did not expect to find z")
	}
}
