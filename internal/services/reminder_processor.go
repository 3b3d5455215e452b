package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"renewme/internal/amqp"
	"renewme/internal/cache"
	"renewme/internal/core"
	"renewme/internal/store"
)

// ReminderPublisher hands a due reminder to whoever delivers it.
type ReminderPublisher interface {
	PublishReminderDue(ctx context.Context, msg *amqp.ReminderDueMessage) error
}

// ReminderProcessor publishes one reminder.due event per subscription and
// renewal date while the reminder window is open.
type ReminderProcessor struct {
	store     store.SubscriptionStore
	publisher ReminderPublisher
	sent      *cache.LRUCache[time.Time]
	clock     func() time.Time
	onPublish func()
}

// NewReminderProcessor creates a processor. sent remembers what was already
// published; each entry is kept until the end of its renewal day.
func NewReminderProcessor(st store.SubscriptionStore, publisher ReminderPublisher, sent *cache.LRUCache[time.Time]) *ReminderProcessor {
	return &ReminderProcessor{
		store:     st,
		publisher: publisher,
		sent:      sent,
		clock:     time.Now,
	}
}

// OnPublish registers a hook run after each published reminder.
func (p *ReminderProcessor) OnPublish(fn func()) { p.onPublish = fn }

// ProcessDueReminders scans the reminder queue and publishes every entry not
// yet sent. It returns how many reminders were published.
func (p *ReminderProcessor) ProcessDueReminders(ctx context.Context) (int, error) {
	if p.store == nil || p.publisher == nil {
		return 0, fmt.Errorf("processor not properly initialized")
	}

	subs, err := p.store.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("load subscriptions: %w", err)
	}

	now := p.clock()
	today := Today(now)
	queue := ReminderQueue(subs, today)

	slog.InfoContext(ctx, "Processing reminder queue",
		"queued", len(queue),
		"processing_date", now.Format(time.DateOnly))

	published := 0
	for _, r := range queue {
		key := reminderKey(r.Subscription)
		if p.sent != nil && !p.sent.AddUntil(key, now, reminderExpiry(r.Subscription, today)) {
			continue
		}

		if err := p.publisher.PublishReminderDue(ctx, amqp.NewReminderDueMessage(r)); err != nil {
			if p.sent != nil {
				p.sent.Delete(key)
			}
			slog.ErrorContext(ctx, "Failed to publish reminder",
				"subscription_id", r.Subscription.ID,
				"name", r.Subscription.Name,
				"error", err)
			continue
		}

		published++
		if p.onPublish != nil {
			p.onPublish()
		}
		slog.InfoContext(ctx, "Reminder published",
			"subscription_id", r.Subscription.ID,
			"name", r.Subscription.Name,
			"days_until_renewal", r.DaysUntilRenewal,
			"days_until_reminder_send", r.DaysUntilReminderSend)
	}

	slog.InfoContext(ctx, "Reminder processing complete",
		"published", published,
		"total_checked", len(queue))

	return published, nil
}

func reminderKey(s core.Subscription) string {
	return s.ID + ":" + s.RenewalDate.Format(time.DateOnly)
}

// reminderExpiry is the end of the renewal day, after which the record
// leaves the reminder queue for that renewal date.
func reminderExpiry(s core.Subscription, today time.Time) time.Time {
	return Midnight(s.RenewalDate.In(today.Location())).AddDate(0, 0, 1)
}
