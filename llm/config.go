package llm

import (
	"fmt"
	"time"
)

// Defaults matching the reference deployment: a local Ollama with a
// small German-capable model, low temperature for consistent minutes.
const (
	DefaultModel       = "qwen3:8b"
	DefaultTemperature = 0.3
	DefaultMaxTokens   = 1024
)

// Config selects and configures the chat backend.
type Config struct {
	// Provider names the backend factory. Defaults to "ollama".
	Provider string `yaml:"provider" mapstructure:"provider"`

	// BaseURL is the backend's API address.
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`

	// Model is the default model for all requests.
	Model string `yaml:"model" mapstructure:"model"`

	// Temperature is the default sampling temperature.
	Temperature float64 `yaml:"temperature" mapstructure:"temperature"`

	// MaxTokens limits response length.
	MaxTokens int `yaml:"max_tokens" mapstructure:"max_tokens"`

	// Timeout bounds a single chat call. Summarizing a long agenda item
	// on CPU can take minutes, so the default is generous.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.Provider == "" {
		c.Provider = "ollama"
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.Temperature == 0 {
		c.Temperature = DefaultTemperature
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.Timeout == 0 {
		c.Timeout = 300 * time.Second
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Provider == "" {
		return fmt.Errorf("llm.provider is required")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("llm.temperature must be in [0, 2] (got: %v)", c.Temperature)
	}
	if c.MaxTokens < 0 {
		return fmt.Errorf("llm.max_tokens must be non-negative (got: %d)", c.MaxTokens)
	}
	return nil
}
