package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/sitzungslab/minutes/api"
)

type fakeSender struct {
	reports []api.SessionReport
	err     error
}

func (f *fakeSender) ReportSession(ctx context.Context, report api.SessionReport) error {
	f.reports = append(f.reports, report)
	return f.err
}

func TestReport_Delivers(t *testing.T) {
	sender := &fakeSender{}
	r := NewReporter(sender, nil)

	r.Report(context.Background(), api.SessionReport{JobID: "job-1", TopCount: 3})

	if len(sender.reports) != 1 {
		t.Fatalf("expected 1 report, got %d", len(sender.reports))
	}
	if sender.reports[0].JobID != "job-1" {
		t.Errorf("unexpected report: %+v", sender.reports[0])
	}
}

func TestReport_SwallowsSendErrors(t *testing.T) {
	sender := &fakeSender{err: errors.New("backend down")}
	r := NewReporter(sender, nil)

	// Must not panic or propagate anything.
	r.Report(context.Background(), api.SessionReport{JobID: "job-1"})

	if len(sender.reports) != 1 {
		t.Fatalf("expected the send to be attempted once, got %d", len(sender.reports))
	}
}

func TestReport_DropsWithoutJobID(t *testing.T) {
	sender := &fakeSender{}
	r := NewReporter(sender, nil)

	r.Report(context.Background(), api.SessionReport{TopCount: 2})

	if len(sender.reports) != 0 {
		t.Errorf("report without job id must be dropped, got %d", len(sender.reports))
	}
}

func TestReport_NilSenderDisables(t *testing.T) {
	r := NewReporter(nil, nil)
	r.Report(context.Background(), api.SessionReport{JobID: "job-1"})
}
