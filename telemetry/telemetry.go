// Package telemetry delivers anonymous per-session usage reports to
// the backend. Delivery is strictly best effort: a failed report is
// logged and dropped, it never surfaces to the caller or interrupts
// the summarization flow.
package telemetry

import (
	"context"

	"github.com/sitzungslab/minutes/api"
	"github.com/sitzungslab/minutes/logger"
)

// Sender submits a finished report to the backend.
type Sender interface {
	ReportSession(ctx context.Context, report api.SessionReport) error
}

// Reporter forwards session reports to a Sender and swallows failures.
type Reporter struct {
	sender Sender
	log    *logger.Logger
}

// NewReporter creates a Reporter. A nil sender disables delivery
// entirely, which is the supported opt-out.
func NewReporter(sender Sender, log *logger.Logger) *Reporter {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Reporter{
		sender: sender,
		log:    log.WithComponent("telemetry"),
	}
}

// Report sends one session report. Reports without a job identifier
// carry nothing attributable and are dropped.
func (r *Reporter) Report(ctx context.Context, report api.SessionReport) {
	if r.sender == nil {
		return
	}
	if report.JobID == "" {
		r.log.Debug("session report without job id, skipping")
		return
	}
	if err := r.sender.ReportSession(ctx, report); err != nil {
		r.log.Warn("session report failed", logger.ErrorFields("report_session", err))
		return
	}
	r.log.Debug("session report delivered", logger.Fields(
		logger.FieldJobID, report.JobID,
		"top_count", report.TopCount,
	))
}
