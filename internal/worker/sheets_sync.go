package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"renewme/internal/amqp"
	"renewme/internal/export"
	"renewme/internal/sheets"
	"renewme/internal/store"
)

// SheetsSync rewrites the report sheet whenever the subscription list
// changes. The sheet always reflects the whole stored list, so one write
// covers every earlier change from the same source.
type SheetsSync struct {
	store  store.SubscriptionStore
	writer sheets.ReportWriter
	clock  func() time.Time
	onSync func(ok bool)

	mu       sync.Mutex
	source   string
	revision int64
}

func NewSheetsSync(st store.SubscriptionStore, w sheets.ReportWriter) *SheetsSync {
	return &SheetsSync{store: st, writer: w, clock: time.Now}
}

// OnSync registers a hook run after every write attempt.
func (s *SheetsSync) OnSync(fn func(ok bool)) { s.onSync = fn }

// HandleSubscriptionChanged rewrites the sheet unless a write made for a
// later revision of the same source already succeeded. Messages are ordered
// by revision only; publisher and worker clocks are never compared.
func (s *SheetsSync) HandleSubscriptionChanged(ctx context.Context, msg *amqp.SubscriptionChangedMessage) error {
	if msg == nil {
		return errors.New("nil subscription change message")
	}

	if s.covered(msg) {
		slog.DebugContext(ctx, "Skipping change already covered by last sync",
			"action", msg.Action,
			"subscription_id", msg.ID,
			"source", msg.Source,
			"revision", msg.Revision)
		return nil
	}

	slog.InfoContext(ctx, "Processing subscription change",
		"action", msg.Action,
		"subscription_id", msg.ID,
		"source", msg.Source,
		"revision", msg.Revision)
	if err := s.Sync(ctx); err != nil {
		return err
	}

	// The write loaded the list after msg was published, so it covers msg.
	s.mu.Lock()
	if msg.Source != s.source || msg.Revision > s.revision {
		s.source, s.revision = msg.Source, msg.Revision
	}
	s.mu.Unlock()
	return nil
}

func (s *SheetsSync) covered(msg *amqp.SubscriptionChangedMessage) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return msg.Source != "" && msg.Source == s.source && msg.Revision <= s.revision
}

// Sync writes the current list to the sheet.
func (s *SheetsSync) Sync(ctx context.Context) error {
	err := s.sync(ctx, s.clock())
	if s.onSync != nil {
		s.onSync(err == nil)
	}
	if err != nil {
		slog.ErrorContext(ctx, "Sheet sync failed", "error", err)
		return err
	}
	return nil
}

func (s *SheetsSync) sync(ctx context.Context, now time.Time) error {
	subs, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load subscriptions: %w", err)
	}
	if err := s.writer.WriteReport(ctx, export.BuildReport(subs, now)); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	slog.InfoContext(ctx, "Sheet synced", "subscriptions", len(subs))
	return nil
}
