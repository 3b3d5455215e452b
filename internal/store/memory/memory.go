// Package memory keeps the subscription list in memory, optionally backed by
// a single JSON file.
package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"renewme/internal/core"
	"renewme/internal/store"
)

var _ store.SubscriptionStore = (*Store)(nil)

type Store struct {
	mu     sync.Mutex
	path   string
	items  []core.Subscription
	loaded bool
	seed   bool
	now    func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithSamples seeds the demo subscriptions when nothing is stored yet.
func WithSamples(now func() time.Time) Option {
	return func(s *Store) {
		s.seed = true
		if now != nil {
			s.now = now
		}
	}
}

// New returns a store kept only in memory.
func New(items []core.Subscription, opts ...Option) *Store {
	s := &Store{items: clone(items), loaded: true, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	if s.seed && len(s.items) == 0 {
		s.items = core.SampleSubscriptions(s.now())
	}
	return s
}

// NewFromFile returns a store persisted to path as one JSON array. The file
// is read lazily on first Load.
func NewFromFile(path string, opts ...Option) *Store {
	s := &Store{path: path, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Store) Load(ctx context.Context) ([]core.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		if err := s.readFile(ctx); err != nil {
			return nil, err
		}
	}
	return clone(s.items), nil
}

func (s *Store) Save(ctx context.Context, subs []core.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.path != "" {
		if err := writeFile(s.path, subs); err != nil {
			return fmt.Errorf("save subscriptions: %w", err)
		}
	}
	s.items = clone(subs)
	s.loaded = true
	slog.DebugContext(ctx, "Subscriptions saved", "count", len(subs), "path", s.path)
	return nil
}

func (s *Store) readFile(ctx context.Context) error {
	data, err := os.ReadFile(s.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		data = nil
	case err != nil:
		return fmt.Errorf("read %s: %w", s.path, err)
	}

	var items []core.Subscription
	if len(data) > 0 {
		if err := json.Unmarshal(data, &items); err != nil {
			return fmt.Errorf("decode %s: %w", s.path, err)
		}
	}

	if len(items) == 0 && s.seed {
		items = core.SampleSubscriptions(s.now())
		if err := writeFile(s.path, items); err != nil {
			return fmt.Errorf("seed %s: %w", s.path, err)
		}
		slog.InfoContext(ctx, "Seeded sample subscriptions", "path", s.path, "count", len(items))
	}

	s.items = items
	s.loaded = true
	return nil
}

// writeFile replaces path atomically through a temp file in the same
// directory.
func writeFile(path string, subs []core.Subscription) error {
	if subs == nil {
		subs = []core.Subscription{}
	}
	data, err := json.MarshalIndent(subs, "", "  ")
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".subscriptions-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func clone(in []core.Subscription) []core.Subscription {
	out := make([]core.Subscription, len(in))
	copy(out, in)
	return out
}
