// Package poller tracks a remote transcription job from submission to a
// terminal state. Polling is an explicit loop with an injectable interval
// and context cancellation, so an abandoned workflow step stops issuing
// status requests instead of polling forever.
package poller

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sitzungslab/minutes/api"
	"github.com/sitzungslab/minutes/logger"
)

const defaultInterval = 1000 * time.Millisecond

// StatusClient is the backend surface the poller needs.
type StatusClient interface {
	SubmitAudio(ctx context.Context, filename, contentType string, audio io.Reader) (*api.Job, error)
	JobStatus(ctx context.Context, jobID string) (*api.Job, error)
}

// ProgressFunc receives the job's progress percentage and status message
// on every non-terminal fetch.
type ProgressFunc func(progress int, message string)

// JobFailedError reports a job that reached the failed terminal state.
type JobFailedError struct {
	JobID   string
	Message string
}

func (e *JobFailedError) Error() string {
	return fmt.Sprintf("transcription job %s failed: %s", e.JobID, e.Message)
}

// Config configures the poller.
type Config struct {
	// Interval is the wait between status fetches. Defaults to 1s.
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.Interval <= 0 {
		c.Interval = defaultInterval
	}
}

// Poller submits audio and follows the resulting job to completion.
type Poller struct {
	client   StatusClient
	interval time.Duration
	log      *logger.Logger
}

// New creates a poller.
func New(client StatusClient, cfg Config, log *logger.Logger) *Poller {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Poller{
		client:   client,
		interval: cfg.Interval,
		log:      log.WithComponent("poller"),
	}
}

// Submit uploads the audio and returns the created job. Submission is a
// single call: at most one job is created per invocation.
func (p *Poller) Submit(ctx context.Context, filename, contentType string, audio io.Reader) (*api.Job, error) {
	p.log.Info("Submitting audio for transcription", map[string]interface{}{
		"filename": filename,
	})

	job, err := p.client.SubmitAudio(ctx, filename, contentType, audio)
	if err != nil {
		p.log.Error("Audio submission failed", logger.ErrorFields("submit", err))
		return nil, err
	}

	p.log.Info("Transcription job created", map[string]interface{}{
		logger.FieldJobID: job.JobID,
	})
	return job, nil
}

// PollUntilTerminal fetches the job's status until it completes or fails,
// invoking onProgress for every non-terminal fetch and sleeping the
// configured interval in between. A failed job yields a *JobFailedError;
// transport or server errors abort the loop; context cancellation stops
// it with ctx.Err(). There is no attempt limit; only a terminal state,
// an error, or cancellation ends the loop.
func (p *Poller) PollUntilTerminal(ctx context.Context, jobID string, onProgress ProgressFunc) (*api.Job, error) {
	log := p.log.WithJob(jobID)

	for {
		job, err := p.client.JobStatus(ctx, jobID)
		if err != nil {
			log.Error("Status fetch failed", logger.ErrorFields("poll", err))
			return nil, err
		}

		switch job.Status {
		case api.StatusCompleted:
			log.Info("Job completed", map[string]interface{}{
				"lines": len(job.Transcript),
			})
			return job, nil

		case api.StatusFailed:
			msg := job.Error
			if msg == "" {
				msg = "Transkription fehlgeschlagen"
			}
			log.Error("Job failed", map[string]interface{}{
				logger.FieldError: msg,
			})
			return nil, &JobFailedError{JobID: jobID, Message: msg}
		}

		// pending and processing are handled identically: surface
		// progress and keep waiting.
		if onProgress != nil {
			onProgress(job.Progress, job.Message)
		}
		log.Debug("Job in progress", map[string]interface{}{
			logger.FieldProgress: job.Progress,
			logger.FieldStatus:   string(job.Status),
		})

		timer := time.NewTimer(p.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			log.Warn("Polling canceled")
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}
