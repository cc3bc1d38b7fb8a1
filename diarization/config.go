package diarization

import (
	"fmt"
	"time"
)

// Config selects and configures the diarization backend.
type Config struct {
	// Provider names the backend factory. Defaults to "pyannote".
	Provider string `yaml:"provider" mapstructure:"provider"`

	// URL is the sidecar address.
	URL string `yaml:"url" mapstructure:"url"`

	// MinSpeakers and MaxSpeakers bound the speaker search. Zero means
	// auto-detect.
	MinSpeakers int `yaml:"min_speakers" mapstructure:"min_speakers"`
	MaxSpeakers int `yaml:"max_speakers" mapstructure:"max_speakers"`

	// Timeout bounds one diarization call.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.Provider == "" {
		c.Provider = "pyannote"
	}
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Minute
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Provider == "" {
		return fmt.Errorf("diarization.provider is required")
	}
	if c.MinSpeakers < 0 || c.MaxSpeakers < 0 {
		return fmt.Errorf("diarization speaker bounds must be non-negative")
	}
	if c.MaxSpeakers > 0 && c.MinSpeakers > c.MaxSpeakers {
		return fmt.Errorf("diarization.min_speakers (%d) exceeds max_speakers (%d)", c.MinSpeakers, c.MaxSpeakers)
	}
	return nil
}
