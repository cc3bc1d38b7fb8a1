// Package config loads application configuration from YAML files and
// environment variables.
//
// Configuration is layered: a config.yml file provides the base, a .env
// file (loaded via godotenv) supplies secrets, and process environment
// variables override both. Viper performs the merge and unmarshals the
// result into typed config structs. Each package owns its Config section
// with ApplyDefaults and Validate methods; applications compose them by
// embedding AppConfig.
package config
