package sheets

import (
	"context"

	"renewme/internal/export"
)

// ReportWriter publishes the subscription report somewhere people read it.
type ReportWriter interface {
	// WriteReport replaces whatever report was written before.
	WriteReport(ctx context.Context, r export.Report) error
}
