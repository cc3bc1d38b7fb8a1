package poller

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sitzungslab/minutes/api"
)

// scriptedClient replays a fixed sequence of job states, one per
// JobStatus call, sticking on the last entry.
type scriptedClient struct {
	states []api.Job
	errs   []error
	calls  int
}

func (c *scriptedClient) SubmitAudio(ctx context.Context, filename, contentType string, audio io.Reader) (*api.Job, error) {
	return &api.Job{JobID: "job-1", Status: api.StatusPending}, nil
}

func (c *scriptedClient) JobStatus(ctx context.Context, jobID string) (*api.Job, error) {
	i := c.calls
	if i >= len(c.states) {
		i = len(c.states) - 1
	}
	c.calls++
	if i < len(c.errs) && c.errs[i] != nil {
		return nil, c.errs[i]
	}
	job := c.states[i]
	return &job, nil
}

func newTestPoller(client StatusClient) *Poller {
	return New(client, Config{Interval: time.Millisecond}, nil)
}

func TestPollUntilTerminal_Completes(t *testing.T) {
	client := &scriptedClient{states: []api.Job{
		{JobID: "job-1", Status: api.StatusPending, Progress: 10, Message: "Audio hochgeladen"},
		{JobID: "job-1", Status: api.StatusProcessing, Progress: 50, Message: "Transkription läuft..."},
		{JobID: "job-1", Status: api.StatusCompleted, Progress: 100, Transcript: []api.TranscriptLine{{Speaker: "SPEAKER_00", Text: "Hallo"}}},
	}}

	var progress []int
	var messages []string
	job, err := newTestPoller(client).PollUntilTerminal(context.Background(), "job-1", func(p int, m string) {
		progress = append(progress, p)
		messages = append(messages, m)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if job.Status != api.StatusCompleted {
		t.Errorf("expected completed job, got %s", job.Status)
	}
	if len(job.Transcript) != 1 {
		t.Errorf("expected transcript on completed job")
	}
	// Progress surfaces only for the non-terminal fetches.
	if len(progress) != 2 || progress[0] != 10 || progress[1] != 50 {
		t.Errorf("expected progress [10 50], got %v", progress)
	}
	if messages[1] != "Transkription läuft..." {
		t.Errorf("unexpected message %q", messages[1])
	}
}

func TestPollUntilTerminal_Failed(t *testing.T) {
	client := &scriptedClient{states: []api.Job{
		{JobID: "job-1", Status: api.StatusProcessing, Progress: 30},
		{JobID: "job-1", Status: api.StatusFailed, Error: "Audio defekt"},
	}}

	var callbacks int
	_, err := newTestPoller(client).PollUntilTerminal(context.Background(), "job-1", func(p int, m string) {
		callbacks++
	})

	var failed *JobFailedError
	if !errors.As(err, &failed) {
		t.Fatalf("expected *JobFailedError, got %v", err)
	}
	if failed.Message != "Audio defekt" {
		t.Errorf("expected job error message, got %q", failed.Message)
	}
	if callbacks != 1 {
		t.Errorf("expected 1 progress callback, got %d", callbacks)
	}
}

func TestPollUntilTerminal_FailedWithoutMessage(t *testing.T) {
	client := &scriptedClient{states: []api.Job{
		{JobID: "job-1", Status: api.StatusFailed},
	}}

	_, err := newTestPoller(client).PollUntilTerminal(context.Background(), "job-1", nil)
	var failed *JobFailedError
	if !errors.As(err, &failed) {
		t.Fatalf("expected *JobFailedError, got %v", err)
	}
	if failed.Message == "" {
		t.Error("expected generic fallback message")
	}
}

func TestPollUntilTerminal_TransportErrorAborts(t *testing.T) {
	transportErr := &api.TransportError{Err: errors.New("connection refused")}
	client := &scriptedClient{
		states: []api.Job{
			{JobID: "job-1", Status: api.StatusPending, Progress: 5},
			{}, // replaced by error
		},
		errs: []error{nil, transportErr},
	}

	_, err := newTestPoller(client).PollUntilTerminal(context.Background(), "job-1", nil)
	if !api.IsTransport(err) {
		t.Errorf("expected transport error to propagate, got %v", err)
	}
	if client.calls != 2 {
		t.Errorf("expected polling to abort after the error, got %d calls", client.calls)
	}
}

func TestPollUntilTerminal_ContextCancellation(t *testing.T) {
	// The job never reaches a terminal state.
	client := &scriptedClient{states: []api.Job{
		{JobID: "job-1", Status: api.StatusProcessing, Progress: 40},
	}}

	ctx, cancel := context.WithCancel(context.Background())
	p := New(client, Config{Interval: time.Hour}, nil)

	done := make(chan error, 1)
	go func() {
		_, err := p.PollUntilTerminal(ctx, "job-1", nil)
		done <- err
	}()

	// Give the loop a moment to park in the interval wait, then cancel.
	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("poll loop did not stop after cancellation")
	}
}

func TestSubmit(t *testing.T) {
	client := &scriptedClient{}
	job, err := newTestPoller(client).Submit(context.Background(), "sitzung.mp3", "audio/mpeg", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if job.JobID != "job-1" {
		t.Errorf("expected job-1, got %s", job.JobID)
	}
}
