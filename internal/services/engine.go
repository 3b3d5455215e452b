package services

import (
	"time"

	"renewme/internal/core"
)

// DueSoonDays is the window of the "due this week" counter.
const DueSoonDays = 7

// Snapshot computes every derived view of subs against a single today, so
// the views agree on where the day boundary is.
func Snapshot(subs []core.Subscription, now time.Time) core.Dashboard {
	today := Today(now)
	return core.Dashboard{
		Today:              today,
		ActiveCount:        CountActive(subs),
		TotalMonthly:       TotalMonthlySpend(subs),
		DueWithinWeek:      CountDueWithin(subs, today, DueSoonDays),
		CategorySpending:   CategorySpending(subs),
		Upcoming:           UpcomingRenewals(subs, today),
		Reminders:          ReminderQueue(subs, today),
		MonthlyProjections: ProjectRenewals(subs, today),
	}
}
