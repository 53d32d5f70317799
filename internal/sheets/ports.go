// Package sheets defines the outbound port for report exports.
package sheets

import (
	"context"

	"envelopes/internal/services"
)

// ReportWriter persists a finished monthly report outside the database,
// one row per month.
type ReportWriter interface {
	AppendMonthlyReport(ctx context.Context, r *services.MonthlyReport) (rowRef string, err error)
}
