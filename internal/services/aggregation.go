package services

import (
	"slices"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"renewme/internal/core"
)

// SortKey selects the ordering of the filtered list view.
type SortKey string

const (
	SortByName   SortKey = "name"
	SortByAmount SortKey = "amount"
	SortByDate   SortKey = "date"
)

// AllCategories disables the category filter.
const AllCategories = "all"

// IsValid reports whether k is a known sort key.
func (k SortKey) IsValid() bool {
	switch k {
	case SortByName, SortByAmount, SortByDate:
		return true
	}
	return false
}

// Filter describes the list view: a free-text query, an exact category and
// an ordering.
type Filter struct {
	Query    string
	Category string
	Sort     SortKey
}

// TotalMonthlySpend sums the monthly equivalents of active subscriptions.
// Amounts are added as-is across currencies.
func TotalMonthlySpend(subs []core.Subscription) float64 {
	var total float64
	for _, s := range subs {
		if s.IsActive {
			total += MonthlyEquivalent(s)
		}
	}
	return total
}

// CategorySpending groups active subscriptions by category and ranks the
// groups by monthly spend, largest first. Equal amounts keep the order in
// which their category was first seen.
func CategorySpending(subs []core.Subscription) []core.CategorySpend {
	out := []core.CategorySpend{}
	index := make(map[string]int)
	for _, s := range subs {
		if !s.IsActive {
			continue
		}
		i, ok := index[s.Category]
		if !ok {
			i = len(out)
			index[s.Category] = i
			out = append(out, core.CategorySpend{Category: s.Category})
		}
		out[i].Amount += MonthlyEquivalent(s)
	}
	slices.SortStableFunc(out, func(a, b core.CategorySpend) int {
		switch {
		case a.Amount > b.Amount:
			return -1
		case a.Amount < b.Amount:
			return 1
		}
		return 0
	})
	return out
}

// UpcomingRenewals lists active subscriptions renewing within the next 30
// days, today included, soonest first.
func UpcomingRenewals(subs []core.Subscription, today time.Time) []core.Renewal {
	out := []core.Renewal{}
	for _, s := range subs {
		if !s.IsActive {
			continue
		}
		days := DaysUntilRenewal(s.RenewalDate, today)
		if days < 0 || days > UpcomingWindowDays {
			continue
		}
		out = append(out, core.Renewal{Subscription: s, DaysUntilRenewal: days, Status: RenewalTier(days)})
	}
	slices.SortStableFunc(out, func(a, b core.Renewal) int {
		return a.Subscription.RenewalDate.Compare(b.Subscription.RenewalDate)
	})
	return out
}

// ReminderQueue lists the subscriptions whose reminder window is open: the
// renewal is between today and ReminderDaysBefore days away.
func ReminderQueue(subs []core.Subscription, today time.Time) []core.Reminder {
	out := []core.Reminder{}
	for _, s := range subs {
		if !s.WantsReminder() {
			continue
		}
		days := DaysUntilRenewal(s.RenewalDate, today)
		if days < 0 || days > s.ReminderDaysBefore {
			continue
		}
		out = append(out, core.Reminder{
			Subscription:          s,
			DaysUntilRenewal:      days,
			DaysUntilReminderSend: days - s.ReminderDaysBefore,
		})
	}
	slices.SortStableFunc(out, func(a, b core.Reminder) int {
		return a.Subscription.RenewalDate.Compare(b.Subscription.RenewalDate)
	})
	return out
}

// FilterSubscriptions returns the subscriptions matching f, active or not,
// in the order f asks for. The input is not modified.
func FilterSubscriptions(subs []core.Subscription, f Filter) []core.Subscription {
	query := strings.ToLower(strings.TrimSpace(f.Query))
	out := []core.Subscription{}
	for _, s := range subs {
		if f.Category != "" && f.Category != AllCategories && s.Category != f.Category {
			continue
		}
		if query != "" && !matchesQuery(s, query) {
			continue
		}
		out = append(out, s)
	}

	switch f.Sort {
	case SortByAmount:
		slices.SortStableFunc(out, func(a, b core.Subscription) int {
			switch {
			case a.Amount > b.Amount:
				return -1
			case a.Amount < b.Amount:
				return 1
			}
			return 0
		})
	case SortByDate:
		slices.SortStableFunc(out, func(a, b core.Subscription) int {
			return a.RenewalDate.Compare(b.RenewalDate)
		})
	default:
		c := collate.New(language.English, collate.IgnoreCase)
		slices.SortStableFunc(out, func(a, b core.Subscription) int {
			return c.CompareString(a.Name, b.Name)
		})
	}
	return out
}

func matchesQuery(s core.Subscription, query string) bool {
	return strings.Contains(strings.ToLower(s.Name), query) ||
		strings.Contains(strings.ToLower(s.Category), query) ||
		strings.Contains(strings.ToLower(s.Description), query)
}

// CountDueWithin counts active subscriptions renewing between today and
// days days from now.
func CountDueWithin(subs []core.Subscription, today time.Time, days int) int {
	n := 0
	for _, s := range subs {
		if !s.IsActive {
			continue
		}
		d := DaysUntilRenewal(s.RenewalDate, today)
		if d >= 0 && d <= days {
			n++
		}
	}
	return n
}

// CountActive counts subscriptions with IsActive set.
func CountActive(subs []core.Subscription) int {
	n := 0
	for _, s := range subs {
		if s.IsActive {
			n++
		}
	}
	return n
}
