// Package pyannote implements diarization.Provider against a pyannote
// HTTP sidecar.
package pyannote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/sitzungslab/minutes/diarization"
	"github.com/sitzungslab/minutes/provider"
)

const (
	// ProviderName is the registered name for the Pyannote provider.
	ProviderName = "pyannote"

	defaultURL     = "http://localhost:8388"
	defaultTimeout = 30 * time.Minute
)

// Config holds configuration for the Pyannote diarization provider.
type Config struct {
	URL     string        `json:"url" yaml:"url"`
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// Provider implements diarization.Provider using a pyannote HTTP sidecar.
type Provider struct {
	cfg    Config
	client *http.Client
}

// NewProvider creates a new Pyannote diarization provider.
func NewProvider(cfg Config) *Provider {
	if cfg.URL == "" {
		cfg.URL = defaultURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Provider{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Factory returns a provider.Factory that creates Pyannote providers
// from a generic config map.
func Factory() provider.Factory[diarization.Provider] {
	return func(cfg map[string]any) (diarization.Provider, error) {
		pc := Config{}
		if v, ok := cfg["url"].(string); ok {
			pc.URL = v
		}
		if v, ok := cfg["timeout"].(time.Duration); ok {
			pc.Timeout = v
		}
		return NewProvider(pc), nil
	}
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// IsAvailable checks if the Pyannote sidecar is reachable.
func (p *Provider) IsAvailable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.URL+"/health", http.NoBody)
	if err != nil {
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	_ = resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// Diarize uploads an audio file to the sidecar and returns the speaker
// turns.
func (p *Provider) Diarize(ctx context.Context, req diarization.Request) (*diarization.Result, error) {
	audio, err := os.ReadFile(req.AudioPath)
	if err != nil {
		return nil, fmt.Errorf("read audio file: %w", err)
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("audio", filepath.Base(req.AudioPath))
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return nil, fmt.Errorf("write audio data: %w", err)
	}
	if req.NumSpeakers > 0 {
		_ = writer.WriteField("num_speakers", strconv.Itoa(req.NumSpeakers))
	}
	if req.MinSpeakers > 0 {
		_ = writer.WriteField("min_speakers", strconv.Itoa(req.MinSpeakers))
	}
	if req.MaxSpeakers > 0 {
		_ = writer.WriteField("max_speakers", strconv.Itoa(req.MaxSpeakers))
	}
	writer.Close()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.URL+"/diarize", &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("diarization request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("diarization error (status %d): %s", resp.StatusCode, string(body))
	}

	var result pyannoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode diarization response: %w", err)
	}
	if result.Error != "" {
		return nil, fmt.Errorf("diarization error: %s", result.Error)
	}
	return result.toResult(), nil
}

// --- internal Pyannote API types ---

type pyannoteResponse struct {
	Segments []pyannoteSegment `json:"segments"`
	Error    string            `json:"error,omitempty"`
}

type pyannoteSegment struct {
	Speaker string  `json:"speaker"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
}

func (r *pyannoteResponse) toResult() *diarization.Result {
	turns := make([]diarization.Turn, len(r.Segments))
	speakers := make(map[string]struct{}, 4)
	for i, seg := range r.Segments {
		turns[i] = diarization.Turn{
			Speaker: seg.Speaker,
			Start:   seg.Start,
			End:     seg.End,
		}
		speakers[seg.Speaker] = struct{}{}
	}
	return &diarization.Result{
		Turns:       turns,
		NumSpeakers: len(speakers),
	}
}

// Close releases pooled connections. Implements provider.Closeable.
func (p *Provider) Close(_ context.Context) error {
	p.client.CloseIdleConnections()
	return nil
}

func init() {
	diarization.Registry.RegisterFactory(ProviderName, Factory())
}
