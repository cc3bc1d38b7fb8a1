package transcription

import (
	"fmt"
	"time"
)

// Config selects and configures the transcription backend.
type Config struct {
	// Provider names the backend factory. Defaults to "whisper".
	Provider string `yaml:"provider" mapstructure:"provider"`

	// URL is the sidecar address.
	URL string `yaml:"url" mapstructure:"url"`

	// Model is the whisper model size. Defaults to "large-v2".
	Model string `yaml:"model" mapstructure:"model"`

	// Language is the expected audio language. Defaults to "de".
	Language string `yaml:"language" mapstructure:"language"`

	// Timeout bounds one transcription call. Transcribing an hour of
	// council audio on CPU is slow, so the default is generous.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.Provider == "" {
		c.Provider = "whisper"
	}
	if c.Model == "" {
		c.Model = "large-v2"
	}
	if c.Language == "" {
		c.Language = "de"
	}
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Minute
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Provider == "" {
		return fmt.Errorf("transcription.provider is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("transcription.timeout must be positive (got: %v)", c.Timeout)
	}
	return nil
}
