package server

import (
	"fmt"
	"time"

	"github.com/sitzungslab/minutes/server/middleware"
)

// Config holds HTTP server configuration.
type Config struct {
	Host string `yaml:"host" mapstructure:"host"`
	Port int    `yaml:"port" mapstructure:"port"`

	// Timeouts are in seconds. The write timeout must cover a full
	// synchronous summarization call.
	ReadTimeout  int `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout int `yaml:"write_timeout" mapstructure:"write_timeout"`
	IdleTimeout  int `yaml:"idle_timeout" mapstructure:"idle_timeout"`

	// MaxBodySize bounds uploads (e.g. "500MB"). Council recordings run
	// for hours, so the default is large.
	MaxBodySize string `yaml:"max_body_size" mapstructure:"max_body_size"`

	CORS middleware.CORSConfig `yaml:"cors" mapstructure:"cors"`

	// UploadDir is where uploaded audio and PDFs are written.
	UploadDir string `yaml:"upload_dir" mapstructure:"upload_dir"`

	// JobMaxAge and JobMaxCount bound the in-memory job store.
	JobMaxAge   time.Duration `yaml:"job_max_age" mapstructure:"job_max_age"`
	JobMaxCount int           `yaml:"job_max_count" mapstructure:"job_max_count"`
}

// ApplyDefaults sets sensible default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Port == 0 {
		c.Port = 8010
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 60
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 600
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 120
	}
	if c.MaxBodySize == "" {
		c.MaxBodySize = "500MB"
	}
	if c.UploadDir == "" {
		c.UploadDir = "uploads"
	}
	if c.JobMaxAge == 0 {
		c.JobMaxAge = 2 * time.Hour
	}
	if c.JobMaxCount == 0 {
		c.JobMaxCount = 100
	}
	if len(c.CORS.AllowedOrigins) == 0 {
		// Local dev frontends (Vite, CRA).
		c.CORS.AllowedOrigins = []string{
			"http://localhost:5173",
			"http://localhost:5174",
			"http://localhost:5175",
			"http://localhost:3000",
		}
	}
	if len(c.CORS.AllowedMethods) == 0 {
		c.CORS.AllowedMethods = []string{"GET", "POST", "OPTIONS"}
	}
	if len(c.CORS.AllowedHeaders) == 0 {
		c.CORS.AllowedHeaders = []string{"Origin", "Content-Type", "Accept", "Range"}
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("server.port must be between 0 and 65535 (got: %d)", c.Port)
	}
	if c.ReadTimeout < 0 || c.WriteTimeout < 0 || c.IdleTimeout < 0 {
		return fmt.Errorf("server timeouts must be non-negative")
	}
	if c.JobMaxCount < 1 {
		return fmt.Errorf("server.job_max_count must be at least 1 (got: %d)", c.JobMaxCount)
	}
	return nil
}
