package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sitzungslab/minutes/httpclient"
	"github.com/sitzungslab/minutes/validation"
)

const (
	defaultSummarizeTimeout = 300 * time.Second
)

// Config holds configuration for the backend client.
type Config struct {
	// BaseURL is the backend address (e.g. "http://localhost:8010").
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	// Timeout bounds upload and status requests.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// SummarizeTimeout bounds summarization and TOP extraction, which run
	// an LLM inference server-side. Defaults to 300s.
	SummarizeTimeout time.Duration `yaml:"summarize_timeout" mapstructure:"summarize_timeout"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "http://localhost:8010"
	}
	if c.SummarizeTimeout <= 0 {
		c.SummarizeTimeout = defaultSummarizeTimeout
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("api: base_url is required")
	}
	return nil
}

// Client is the typed HTTP client for the minutes backend.
type Client struct {
	http *httpclient.Client
	// slow is a second client with a longer timeout for LLM-backed calls.
	slow *httpclient.Client
}

// NewClient creates a backend client from config.
func NewClient(cfg Config) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	fast, err := httpclient.New(httpclient.Config{
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
	})
	if err != nil {
		return nil, err
	}
	slow, err := httpclient.New(httpclient.Config{
		BaseURL: cfg.BaseURL,
		Timeout: cfg.SummarizeTimeout,
	})
	if err != nil {
		return nil, err
	}

	return &Client{http: fast, slow: slow}, nil
}

// SubmitAudio uploads an audio file and creates a transcription job.
// Submission is at-most-once: there is no retry and no idempotency key.
func (c *Client) SubmitAudio(ctx context.Context, filename, contentType string, audio io.Reader) (*Job, error) {
	resp, err := c.http.Do(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   "/api/transcribe",
		Body: &httpclient.MultipartBody{
			Files: []httpclient.FileField{{
				FieldName:   "audio",
				FileName:    filename,
				ContentType: contentType,
				Reader:      audio,
			}},
		},
	})
	if err != nil {
		return nil, classify(err)
	}
	return decodeJob(resp.Body)
}

// JobStatus fetches the current state of a transcription job.
func (c *Client) JobStatus(ctx context.Context, jobID string) (*Job, error) {
	resp, err := c.http.Do(ctx, httpclient.Request{
		Method: http.MethodGet,
		Path:   "/api/transcribe/" + jobID,
	})
	if err != nil {
		return nil, classify(err)
	}
	return decodeJob(resp.Body)
}

// Summarize requests minutes for a single agenda topic.
func (c *Client) Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	resp, err := c.slow.Do(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   "/api/summarize",
		Body:   req,
	})
	if err != nil {
		return nil, classify(err)
	}

	var out SummarizeResponse
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return nil, &TransportError{Err: fmt.Errorf("decode summarize response: %w", err)}
	}
	return &out, nil
}

// ExtractTOPs uploads a meeting invitation PDF and returns the agenda
// item titles the backend extracted from it.
func (c *Client) ExtractTOPs(ctx context.Context, filename string, pdf io.Reader, opts LLMOptions) ([]string, error) {
	fields := map[string]string{}
	if opts.Model != "" {
		fields["model"] = opts.Model
	}
	if opts.SystemPrompt != "" {
		fields["system_prompt"] = opts.SystemPrompt
	}

	resp, err := c.slow.Do(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   "/api/extract-tops",
		Body: &httpclient.MultipartBody{
			Fields: fields,
			Files: []httpclient.FileField{{
				FieldName:   "pdf",
				FileName:    filename,
				ContentType: "application/pdf",
				Reader:      pdf,
			}},
		},
	})
	if err != nil {
		return nil, classify(err)
	}

	var out ExtractTOPsResponse
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return nil, &TransportError{Err: fmt.Errorf("decode extract-tops response: %w", err)}
	}
	return out.TOPs, nil
}

// Health reports whether the backend is up and its models are loaded.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.http.Do(ctx, httpclient.Request{
		Method: http.MethodGet,
		Path:   "/health",
	})
	return classify(err)
}

// ReportSession posts the session-complete telemetry record. The caller
// is expected to treat failures as best-effort.
func (c *Client) ReportSession(ctx context.Context, report SessionReport) error {
	if err := validation.Struct(report); err != nil {
		return err
	}
	_, err := c.http.Do(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   "/api/telemetry/session-complete",
		Body:   report,
	})
	return classify(err)
}

func decodeJob(body []byte) (*Job, error) {
	var job Job
	if err := json.Unmarshal(body, &job); err != nil {
		return nil, &TransportError{Err: fmt.Errorf("decode job: %w", err)}
	}
	return &job, nil
}
