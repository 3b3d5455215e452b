// Package export renders the subscription list as a JSON blob, a report
// table and a PDF document.
package export

import (
	"sort"
	"time"

	"renewme/internal/core"
	"renewme/internal/services"
)

const (
	ReportTitle  = "RenewMe Subscriptions Report"
	ReportFooter = "RenewMe Report"
)

// Columns is the report table header.
var Columns = []string{"Name", "Category", "Amount", "Currency", "Renewal Date", "Frequency", "Status"}

// Row is one report line, already formatted for display.
type Row struct {
	ID          string
	Name        string
	Category    string
	Amount      string
	Currency    string
	RenewalDate string
	Frequency   string
	Status      string
}

// Cells returns the row in Columns order.
func (r Row) Cells() []string {
	return []string{r.Name, r.Category, r.Amount, r.Currency, r.RenewalDate, r.Frequency, r.Status}
}

// Report is the printable summary of the whole list.
type Report struct {
	GeneratedOn  string
	ActiveCount  int
	MonthlyTotal string
	Rows         []Row
}

// BuildReport summarizes subs as of now. Rows cover every record, active or
// not, ordered by renewal date. The monthly total is shown in the first
// record's currency, or USD for an empty list.
func BuildReport(subs []core.Subscription, now time.Time) Report {
	today := services.Today(now)

	currency := "USD"
	if len(subs) > 0 && subs[0].Currency != "" {
		currency = subs[0].Currency
	}

	ordered := make([]core.Subscription, len(subs))
	copy(ordered, subs)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].RenewalDate.Before(ordered[j].RenewalDate)
	})

	rows := make([]Row, 0, len(ordered))
	for _, s := range ordered {
		days := services.DaysUntilRenewal(s.RenewalDate, today)
		rows = append(rows, Row{
			ID:          s.ID,
			Name:        s.Name,
			Category:    s.Category,
			Amount:      core.FormatFixed(s.Amount),
			Currency:    s.Currency,
			RenewalDate: s.RenewalDate.Local().Format("Jan 2, 2006"),
			Frequency:   s.Frequency.Title(),
			Status:      services.StatusText(s, days),
		})
	}

	return Report{
		GeneratedOn:  now.Format("January 2, 2006"),
		ActiveCount:  services.CountActive(subs),
		MonthlyTotal: core.FormatCurrency(services.TotalMonthlySpend(subs), currency),
		Rows:         rows,
	}
}
