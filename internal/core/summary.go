package core

import "time"

// RenewalStatus buckets the distance to a renewal date.
type RenewalStatus string

const (
	StatusOverdue RenewalStatus = "overdue"
	StatusUrgent  RenewalStatus = "urgent"
	StatusSoon    RenewalStatus = "soon"
	StatusNormal  RenewalStatus = "normal"
)

// CategorySpend is the monthly-equivalent spend of one category.
type CategorySpend struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

// Renewal is a subscription annotated with its distance from today.
type Renewal struct {
	Subscription     Subscription  `json:"subscription"`
	DaysUntilRenewal int           `json:"daysUntilRenewal"`
	Status           RenewalStatus `json:"status"`
}

// Reminder is an entry of the reminder queue. DaysUntilReminderSend is
// usually <= 0, meaning the reminder is due now or is already late.
type Reminder struct {
	Subscription          Subscription `json:"subscription"`
	DaysUntilRenewal      int          `json:"daysUntilRenewal"`
	DaysUntilReminderSend int          `json:"daysUntilReminderSend"`
}

// MonthKey orders projection buckets chronologically.
type MonthKey struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

// Less reports whether k falls before o.
func (k MonthKey) Less(o MonthKey) bool {
	if k.Year != o.Year {
		return k.Year < o.Year
	}
	return k.Month < o.Month
}

// Label renders the key the way charts display it ("Jan 25").
func (k MonthKey) Label() string {
	return time.Date(k.Year, k.Month, 1, 0, 0, 0, 0, time.UTC).Format("Jan 06")
}

// MonthlyRenewals is one point of the renewal projection series.
type MonthlyRenewals struct {
	Key         MonthKey `json:"key"`
	Month       string   `json:"month"`
	Renewals    int      `json:"renewals"`
	TotalAmount float64  `json:"totalAmount"`
}

// Dashboard bundles every derived view computed in one pass against a single
// notion of "today".
type Dashboard struct {
	Today              time.Time         `json:"today"`
	ActiveCount        int               `json:"activeCount"`
	TotalMonthly       float64           `json:"totalMonthly"`
	DueWithinWeek      int               `json:"dueWithinWeek"`
	CategorySpending   []CategorySpend   `json:"categorySpending"`
	Upcoming           []Renewal         `json:"upcoming"`
	Reminders          []Reminder        `json:"reminders"`
	MonthlyProjections []MonthlyRenewals `json:"monthlyProjections"`
}
