package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
)

// ReminderRunner publishes the reminders that are due now.
type ReminderRunner interface {
	ProcessDueReminders(ctx context.Context) (int, error)
}

// ReminderScheduler runs a ReminderRunner on a cron schedule.
type ReminderScheduler struct {
	runner   ReminderRunner
	schedule string
	logger   *slog.Logger
	cron     *cron.Cron

	mu      sync.Mutex
	running bool
	runMu   sync.Mutex
}

// NewReminderScheduler creates a scheduler for a standard five-field cron
// schedule such as "0 8 * * *".
func NewReminderScheduler(runner ReminderRunner, schedule string, logger *slog.Logger) *ReminderScheduler {
	if logger == nil {
		logger = slog.Default()
	}
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelInfo))
	return &ReminderScheduler{
		runner:   runner,
		schedule: schedule,
		logger:   logger,
		cron:     cron.New(cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger))),
	}
}

// Start registers the reminder job and starts the cron loop. Jobs run with
// ctx; they stop publishing once it is cancelled. Returns an error if
// already running or if the schedule does not parse.
func (s *ReminderScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return errors.New("reminder scheduler is already running")
	}

	if _, err := s.cron.AddFunc(s.schedule, func() { _, _ = s.RunNow(ctx) }); err != nil {
		s.logger.ErrorContext(ctx, "Failed to schedule reminder job", "schedule", s.schedule, "error", err)
		return err
	}
	s.cron.Start()
	s.running = true

	s.logger.InfoContext(ctx, "Reminder scheduler started", "schedule", s.schedule)
	return nil
}

// Stop stops the cron loop. The returned context is done once a running
// job has finished.
func (s *ReminderScheduler) Stop() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		return ctx
	}
	s.running = false
	s.logger.Info("Reminder scheduler stopping")
	return s.cron.Stop()
}

// IsRunning reports whether the cron loop is active.
func (s *ReminderScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// RunNow scans the reminder queue immediately. Runs never overlap.
func (s *ReminderScheduler) RunNow(ctx context.Context) (int, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	if err := ctx.Err(); err != nil {
		return 0, err
	}
	n, err := s.runner.ProcessDueReminders(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "Reminder run failed", "error", err)
		return n, err
	}
	s.logger.InfoContext(ctx, "Reminder run finished", "published", n)
	return n, nil
}
