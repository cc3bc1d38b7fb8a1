// Package ollama implements llm.Provider against Ollama's native chat
// API (/api/chat).
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sitzungslab/minutes/llm"
	"github.com/sitzungslab/minutes/provider"
)

const (
	// ProviderName is the registered name for the Ollama provider.
	ProviderName = "ollama"

	defaultBaseURL = "http://localhost:11434"
	defaultTimeout = 300 * time.Second
)

// Config holds configuration for the Ollama provider.
type Config struct {
	BaseURL     string        `json:"base_url"`
	Model       string        `json:"model"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	Timeout     time.Duration `json:"timeout"`
}

// Provider implements llm.Provider using Ollama's HTTP API.
type Provider struct {
	cfg    Config
	client *http.Client
}

// NewProvider creates a new Ollama chat provider.
func NewProvider(cfg Config) *Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = llm.DefaultModel
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

// Factory returns a provider.Factory that creates Ollama providers
// from a generic config map.
func Factory() provider.Factory[llm.Provider] {
	return func(cfg map[string]any) (llm.Provider, error) {
		oc := Config{}
		if v, ok := cfg["base_url"].(string); ok {
			oc.BaseURL = v
		}
		if v, ok := cfg["model"].(string); ok {
			oc.Model = v
		}
		if v, ok := cfg["temperature"].(float64); ok {
			oc.Temperature = v
		}
		if v, ok := cfg["max_tokens"].(int); ok {
			oc.MaxTokens = v
		}
		if v, ok := cfg["timeout"].(time.Duration); ok {
			oc.Timeout = v
		}
		return NewProvider(oc), nil
	}
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// IsAvailable checks if the Ollama server is reachable.
func (p *Provider) IsAvailable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.BaseURL+"/api/tags", http.NoBody)
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

// Chat sends a chat request and returns the full response.
func (p *Provider) Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	chatReq := p.buildChatRequest(req)

	body, err := json.Marshal(chatReq)
	if err != nil {
		return nil, fmt.Errorf("ollama chat: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.BaseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("ollama chat: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("ollama chat: send request: %w", err)
	}
	defer httpResp.Body.Close() //nolint:errcheck

	if httpResp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(httpResp.Body, 4096))
		return nil, fmt.Errorf("ollama chat: unexpected status %d: %s", httpResp.StatusCode, string(respBody))
	}

	var resp chatResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("ollama chat: decode response: %w", err)
	}

	return &llm.ChatResponse{
		Content: resp.Message.Content,
		Model:   resp.Model,
		Usage: llm.Usage{
			PromptTokens:     resp.PromptEvalCount,
			CompletionTokens: resp.EvalCount,
			TotalTokens:      resp.PromptEvalCount + resp.EvalCount,
		},
	}, nil
}

// --- internal Ollama API types ---

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  *chatOptions  `json:"options,omitempty"`
}

type chatResponse struct {
	Model           string      `json:"model"`
	Message         chatMessage `json:"message"`
	Done            bool        `json:"done"`
	PromptEvalCount int         `json:"prompt_eval_count,omitempty"`
	EvalCount       int         `json:"eval_count,omitempty"`
}

func (p *Provider) buildChatRequest(req llm.ChatRequest) chatRequest {
	model := p.cfg.Model
	if req.Model != "" {
		model = req.Model
	}

	temp := p.cfg.Temperature
	if req.Temperature != 0 {
		temp = req.Temperature
	}
	maxTokens := p.cfg.MaxTokens
	if req.MaxTokens != 0 {
		maxTokens = req.MaxTokens
	}

	var opts *chatOptions
	if temp != 0 || maxTokens != 0 {
		opts = &chatOptions{Temperature: temp, NumPredict: maxTokens}
	}

	msgs := make([]chatMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		msgs = append(msgs, chatMessage{Role: m.Role, Content: m.Content})
	}

	return chatRequest{
		Model:    model,
		Messages: msgs,
		Stream:   false,
		Options:  opts,
	}
}

// Health reports detailed availability. Implements provider.HealthChecker.
func (p *Provider) Health(ctx context.Context) provider.HealthStatus {
	if !p.IsAvailable(ctx) {
		return provider.HealthStatus{
			Status:  provider.StatusUnavailable,
			Message: "ollama not reachable",
			Details: map[string]any{"base_url": p.cfg.BaseURL},
		}
	}
	return provider.HealthStatus{
		Status:  provider.StatusHealthy,
		Details: map[string]any{"base_url": p.cfg.BaseURL, "model": p.cfg.Model},
	}
}

// Close releases pooled connections. Implements provider.Closeable.
func (p *Provider) Close(_ context.Context) error {
	p.client.CloseIdleConnections()
	return nil
}

func init() {
	llm.Registry.RegisterFactory(ProviderName, Factory())
}
