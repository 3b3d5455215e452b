package memory

import (
	"context"
	"sync"

	"renewme/internal/export"
	ports "renewme/internal/sheets"
)

var _ ports.ReportWriter = (*Writer)(nil)

// Writer keeps written reports in memory. It stands in for Google Sheets
// when no spreadsheet is configured.
type Writer struct {
	mu      sync.Mutex
	reports []export.Report
}

func New() *Writer { return &Writer{} }

func (w *Writer) WriteReport(_ context.Context, r export.Report) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.reports = append(w.reports, r)
	return nil
}

// Last returns the most recent report.
func (w *Writer) Last() (export.Report, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.reports) == 0 {
		return export.Report{}, false
	}
	return w.reports[len(w.reports)-1], true
}

// Count returns how many reports were written.
func (w *Writer) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.reports)
}
