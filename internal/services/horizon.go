package services

import (
	"fmt"
	"time"

	"renewme/internal/core"
)

// Tier thresholds, in days until renewal.
const (
	UrgentWithinDays   = 3
	SoonWithinDays     = 7
	UpcomingWindowDays = 30
)

// Midnight truncates t to the start of its day in t's own location.
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Today returns now truncated to local midnight.
func Today(now time.Time) time.Time {
	return Midnight(now.Local())
}

// DaysUntilRenewal returns the whole number of calendar days from today to
// the renewal date. Negative values mean the renewal is overdue.
//
// Both dates are compared as calendar dates, so a DST shift between them
// never turns a 1-day gap into 2.
func DaysUntilRenewal(renewal, today time.Time) int {
	r := Midnight(renewal.In(today.Location()))
	ry, rm, rd := r.Date()
	ty, tm, td := today.Date()
	ru := time.Date(ry, rm, rd, 0, 0, 0, 0, time.UTC)
	tu := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(ru.Sub(tu) / (24 * time.Hour))
}

// RenewalTier buckets a day offset into a status.
func RenewalTier(days int) core.RenewalStatus {
	switch {
	case days < 0:
		return core.StatusOverdue
	case days <= UrgentWithinDays:
		return core.StatusUrgent
	case days <= SoonWithinDays:
		return core.StatusSoon
	default:
		return core.StatusNormal
	}
}

// StatusText renders the short status shown in reports.
func StatusText(s core.Subscription, days int) string {
	switch {
	case !s.IsActive:
		return "Inactive"
	case days == 0:
		return "Today"
	case days < 0:
		return fmt.Sprintf("%dd overdue", -days)
	default:
		return fmt.Sprintf("%dd left", days)
	}
}
