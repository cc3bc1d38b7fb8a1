// Package pipeline turns an assigned transcript into per-topic meeting
// minutes. The bulk run walks the valid topics strictly in order, one
// remote summarization call in flight at a time, and isolates failures
// per topic: a failed topic surfaces as an error string in its summary
// slot while the remaining topics still run.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/sitzungslab/minutes/api"
	"github.com/sitzungslab/minutes/logger"
	"github.com/sitzungslab/minutes/session"
)

// ErrRunActive is returned when a bulk run or regeneration is requested
// while another run is still writing to the same summary store.
var ErrRunActive = errors.New("pipeline: summarization run already active")

// Summarizer is the backend surface the pipeline needs.
type Summarizer interface {
	Summarize(ctx context.Context, req api.SummarizeRequest) (*api.SummarizeResponse, error)
}

// Reporter receives the session-complete record after a bulk run.
// Implementations are expected to be best-effort and never fail the run.
type Reporter interface {
	Report(ctx context.Context, report api.SessionReport)
}

// Pipeline generates summaries for one session at a time.
type Pipeline struct {
	summarizer Summarizer
	reporter   Reporter
	log        *logger.Logger

	// running makes bulk runs and regenerations mutually exclusive.
	// Both write to the shared summary store; interleaving them would
	// make "currently generating" state ambiguous.
	running atomic.Bool
}

// New creates a pipeline. The reporter may be nil to disable telemetry.
func New(summarizer Summarizer, reporter Reporter, log *logger.Logger) *Pipeline {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Pipeline{
		summarizer: summarizer,
		reporter:   reporter,
		log:        log.WithComponent("pipeline"),
	}
}

// RunAll summarizes every valid topic of the session in list order and
// returns the summed generation time of the successful calls.
//
// Per topic: topics with no assigned lines are skipped entirely (no
// placeholder, no call, no entry). Otherwise a placeholder is published
// before the remote call so observers can render progress; on success
// the placeholder is replaced with the summary text, on failure with a
// formatted error string, and the run continues with the next topic.
//
// After the last topic, if the session has a job handle, exactly one
// telemetry record is reported. Context cancellation aborts the run
// between topics without reporting.
func (p *Pipeline) RunAll(ctx context.Context, sess *session.Session, opts api.LLMOptions) (float64, error) {
	if !p.running.CompareAndSwap(false, true) {
		return 0, ErrRunActive
	}
	defer p.running.Store(false)

	log := p.log.WithSession(sess.ID)
	topics := sess.ValidTopics()
	names := sess.SpeakerNames()

	log.Info("Starting summarization run", map[string]interface{}{
		"topics": len(topics),
	})

	var totalSeconds float64
	started := time.Now()

	for _, topic := range topics {
		select {
		case <-ctx.Done():
			log.Warn("Summarization run canceled")
			return totalSeconds, ctx.Err()
		default:
		}

		lines := sess.LinesForTopic(topic.ID)
		if len(lines) == 0 {
			log.Debug("Skipping topic without assigned lines", map[string]interface{}{
				logger.FieldTopic: topic.Title,
			})
			continue
		}

		duration, err := p.summarizeTopic(ctx, sess, topic, lines, names, opts)
		if err != nil {
			// The error is already recorded in the topic's summary slot;
			// a single failed topic never aborts the run.
			log.Error("Topic summarization failed", map[string]interface{}{
				logger.FieldTopic: topic.Title,
				logger.FieldError: err.Error(),
			})
			continue
		}
		totalSeconds += duration
	}

	log.Info("Summarization run finished", logger.DurationFields("run_all", time.Since(started)))

	p.reportOnce(ctx, sess, topics, opts, totalSeconds)
	return totalSeconds, nil
}

// Regenerate re-runs the per-topic step for a single topic, overwriting
// only that topic's entry. It never touches the run total and never
// re-triggers telemetry, and fails fast while a bulk run is active.
func (p *Pipeline) Regenerate(ctx context.Context, sess *session.Session, topicID session.TopicID, opts api.LLMOptions) error {
	if !p.running.CompareAndSwap(false, true) {
		return ErrRunActive
	}
	defer p.running.Store(false)

	var topic session.Topic
	found := false
	for _, t := range sess.ValidTopics() {
		if t.ID == topicID {
			topic = t
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("pipeline: unknown or blank topic %s", topicID)
	}

	lines := sess.LinesForTopic(topicID)
	if len(lines) == 0 {
		return fmt.Errorf("pipeline: topic %q has no assigned lines", topic.Title)
	}

	_, err := p.summarizeTopic(ctx, sess, topic, lines, sess.SpeakerNames(), opts)
	return err
}

// summarizeTopic is the shared per-topic step: placeholder, resolve
// speakers, one remote call, then the terminal entry.
func (p *Pipeline) summarizeTopic(
	ctx context.Context,
	sess *session.Session,
	topic session.Topic,
	lines []api.TranscriptLine,
	names map[string]string,
	opts api.LLMOptions,
) (float64, error) {
	sess.Summaries.SetPlaceholder(topic.ID)

	resolved := session.ResolveSpeakers(lines, names)

	resp, err := p.summarizer.Summarize(ctx, api.SummarizeRequest{
		TopTitle:     topic.Title,
		Lines:        resolved,
		Model:        opts.Model,
		SystemPrompt: opts.SystemPrompt,
	})
	if err != nil {
		sess.Summaries.SetError(topic.ID, errorText(err))
		return 0, err
	}

	sess.Summaries.SetSummary(topic.ID, resp.Summary)
	return resp.DurationSeconds, nil
}

// reportOnce builds and hands off the telemetry record for a completed
// bulk run. Without a job handle, reporting is suppressed entirely.
func (p *Pipeline) reportOnce(ctx context.Context, sess *session.Session, topics []session.Topic, opts api.LLMOptions, totalSeconds float64) {
	jobID := sess.JobID()
	if jobID == "" || p.reporter == nil {
		return
	}

	p.reporter.Report(ctx, api.SessionReport{
		JobID:                        jobID,
		TopCount:                     len(topics),
		ProtocolCharCount:            sess.Summaries.CharCount(),
		SummarizationDurationSeconds: totalSeconds,
		LLMModel:                     opts.Model,
		SystemPrompt:                 opts.SystemPrompt,
	})
}

// errorText renders a failure as the topic's summary content. Server
// details are surfaced verbatim, transport failures get a generic
// user-facing message.
func errorText(err error) string {
	var serverErr *api.ServerError
	if errors.As(err, &serverErr) {
		return fmt.Sprintf("Fehler bei der Zusammenfassung: %s", serverErr.Detail)
	}
	if api.IsTransport(err) {
		return "Fehler bei der Zusammenfassung: Der Server ist nicht erreichbar."
	}
	return fmt.Sprintf("Fehler bei der Zusammenfassung: %v", err)
}
