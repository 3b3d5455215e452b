package export

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"renewme/internal/core"
)

var testNow = time.Date(2025, 3, 10, 9, 30, 0, 0, time.Local)

func TestBuildReport(t *testing.T) {
	subs := core.SampleSubscriptions(testNow)
	subs[1].IsActive = false
	subs = append(subs, core.Subscription{
		ID: "5", Name: "Old Cloud", Amount: 5, Currency: "USD",
		RenewalDate: testNow.AddDate(0, 0, -4), Frequency: core.Monthly,
		Category: "Software", IsActive: true,
	})

	r := BuildReport(subs, testNow)

	if r.GeneratedOn != "March 10, 2025" {
		t.Errorf("GeneratedOn = %q", r.GeneratedOn)
	}
	if r.ActiveCount != 4 {
		t.Errorf("ActiveCount = %d, want 4", r.ActiveCount)
	}
	if !strings.HasPrefix(r.MonthlyTotal, "$") {
		t.Errorf("MonthlyTotal should use the first record's currency (USD), got %q", r.MonthlyTotal)
	}

	var names, statuses []string
	for _, row := range r.Rows {
		names = append(names, row.Name)
		statuses = append(statuses, row.Status)
	}
	wantNames := []string{"Old Cloud", "Gym Membership", "Netflix", "Spotify Premium", "DSTV Premium"}
	if fmt.Sprint(names) != fmt.Sprint(wantNames) {
		t.Errorf("row order = %v, want %v", names, wantNames)
	}
	wantStatuses := []string{"4d overdue", "1d left", "3d left", "7d left", "Inactive"}
	if fmt.Sprint(statuses) != fmt.Sprint(wantStatuses) {
		t.Errorf("statuses = %v, want %v", statuses, wantStatuses)
	}

	netflix := r.Rows[2]
	if netflix.Amount != "15.99" || netflix.Frequency != "Monthly" || netflix.RenewalDate != "Mar 13, 2025" {
		t.Errorf("unexpected Netflix row: %+v", netflix)
	}
	if got := len(netflix.Cells()); got != len(Columns) {
		t.Errorf("Cells() has %d entries, want %d", got, len(Columns))
	}
}

func TestBuildReportEmpty(t *testing.T) {
	r := BuildReport(nil, testNow)
	if r.MonthlyTotal != "$0.00" || len(r.Rows) != 0 || r.ActiveCount != 0 {
		t.Errorf("unexpected empty report: %+v", r)
	}
}

func TestBuildReportToday(t *testing.T) {
	subs := []core.Subscription{{
		ID: "t", Name: "Due", Amount: 1, Currency: "EUR",
		RenewalDate: testNow.Add(2 * time.Hour), Frequency: core.Weekly, IsActive: true,
	}}
	r := BuildReport(subs, testNow)
	if r.Rows[0].Status != "Today" {
		t.Errorf("Status = %q, want Today", r.Rows[0].Status)
	}
	if !strings.HasSuffix(r.MonthlyTotal, "€") {
		t.Errorf("MonthlyTotal = %q, want euro formatting", r.MonthlyTotal)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	subs := core.SampleSubscriptions(testNow)

	var buf bytes.Buffer
	if err := WriteJSON(&buf, subs); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	if !strings.Contains(buf.String(), `"renewalDate"`) || !strings.Contains(buf.String(), "\n  {") {
		t.Errorf("unexpected blob layout: %s", buf.String()[:80])
	}

	got, err := ReadJSON(&buf)
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if len(got) != len(subs) || got[0].Name != subs[0].Name || !got[0].RenewalDate.Equal(subs[0].RenewalDate) {
		t.Errorf("round trip mismatch: %+v", got[0])
	}
}

func TestWriteJSONNil(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, nil); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("nil list encoded as %q, want []", buf.String())
	}
}

func TestReadJSONErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"empty array", "[]", ErrEmptyImport},
		{"not json", "{oops", nil},
		{"object instead of array", `{"id":"1"}`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadJSON(strings.NewReader(tt.input))
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePDF(&buf, BuildReport(core.SampleSubscriptions(testNow), testNow)); err != nil {
		t.Fatalf("WritePDF: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Errorf("output does not look like a PDF: %q", buf.Bytes()[:8])
	}
}

func TestPDFPaginatesLongLists(t *testing.T) {
	var subs []core.Subscription
	for i := 0; i < 120; i++ {
		subs = append(subs, core.Subscription{
			ID: fmt.Sprint(i), Name: strings.Repeat("Very long subscription name ", 3),
			Amount: 9.99, Currency: "NGN", RenewalDate: testNow.AddDate(0, 0, i),
			Frequency: core.Monthly, Category: "Software", IsActive: true,
		})
	}
	pdf := buildPDF(BuildReport(subs, testNow))
	if pdf.Err() {
		t.Fatalf("pdf error: %v", pdf.Error())
	}
	if pdf.PageCount() < 3 {
		t.Errorf("PageCount() = %d, want at least 3", pdf.PageCount())
	}
}
