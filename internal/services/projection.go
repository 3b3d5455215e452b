package services

import (
	"slices"
	"time"

	"renewme/internal/core"
)

// ProjectRenewals enumerates the renewals of active subscriptions between
// today and ProjectionHorizonMonths months ahead and buckets them by
// calendar month, earliest month first.
//
// Each subscription is walked forward from its stored renewal date for at
// most its cadence's ProjectionCap steps. A renewal date more periods in the
// past than the cap allows therefore contributes nothing.
func ProjectRenewals(subs []core.Subscription, today time.Time) []core.MonthlyRenewals {
	horizon := today.AddDate(0, ProjectionHorizonMonths, 0)
	buckets := make(map[core.MonthKey]*core.MonthlyRenewals)

	for _, s := range subs {
		if !s.IsActive {
			continue
		}
		cadence, err := GetCadence(s.Frequency)
		if err != nil {
			continue
		}
		cursor := Midnight(s.RenewalDate.In(today.Location()))
		for n := cadence.ProjectionCap(); n > 0; n-- {
			if cursor.After(horizon) {
				break
			}
			if !cursor.Before(today) {
				key := core.MonthKey{Year: cursor.Year(), Month: cursor.Month()}
				b, ok := buckets[key]
				if !ok {
					b = &core.MonthlyRenewals{Key: key, Month: key.Label()}
					buckets[key] = b
				}
				b.Renewals++
				b.TotalAmount += s.Amount
			}
			cursor = cadence.Next(cursor)
		}
	}

	out := make([]core.MonthlyRenewals, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	slices.SortFunc(out, func(a, b core.MonthlyRenewals) int {
		switch {
		case a.Key.Less(b.Key):
			return -1
		case b.Key.Less(a.Key):
			return 1
		}
		return 0
	})
	return out
}
