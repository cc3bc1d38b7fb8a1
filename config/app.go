package config

import (
	"fmt"

	"github.com/sitzungslab/minutes/logger"
)

// AppConfig contains the fields every binary in this project needs.
// Binaries extend it by embedding:
//
//	type Config struct {
//	    config.AppConfig `yaml:",inline" mapstructure:",squash"`
//	    Backend api.Config `yaml:"backend" mapstructure:"backend"`
//	}
type AppConfig struct {
	Name        string        `yaml:"name" mapstructure:"name"`
	Environment string        `yaml:"environment" mapstructure:"environment"`
	Version     string        `yaml:"version" mapstructure:"version"`
	Debug       bool          `yaml:"debug" mapstructure:"debug"`
	Logging     logger.Config `yaml:"logging" mapstructure:"logging"`
}

// ApplyDefaults applies default values to the base fields. Embedding
// structs override this and call it first.
func (c *AppConfig) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
	if c.Debug && c.Logging.Level == "" {
		c.Logging.Level = "debug"
	}
	c.Logging.ApplyDefaults()
}

// Validate validates the base fields. Embedding structs override this
// and call it first.
func (c *AppConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("config.name is required")
	}
	switch c.Environment {
	case "development", "staging", "production":
	default:
		return fmt.Errorf("config.environment must be one of [development, staging, production] (got: %s)", c.Environment)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	return nil
}
