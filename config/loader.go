package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// FileSystem abstracts file probing and .env loading for tests.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

type osFileSystem struct{}

func (osFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (osFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

// LoaderConfig holds dependencies and optional file overrides.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string
	EnvFile    string
}

// Option customizes Load.
type Option func(*LoaderConfig)

// WithFileSystem sets a custom filesystem for the loader.
func WithFileSystem(fs FileSystem) Option {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile sets an explicit config file path, skipping the search.
func WithConfigFile(path string) Option {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path, skipping the search.
func WithEnvFile(path string) Option {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// Load loads configuration for the named binary into cfg. It searches
// standard locations for config.yml and .env unless explicit paths are
// given, binds environment variables, and unmarshals the merged result.
// A missing config file is not an error; everything then comes from
// defaults and the environment.
func Load(appName string, cfg interface{}, opts ...Option) error {
	var lc LoaderConfig
	for _, opt := range opts {
		opt(&lc)
	}
	if lc.FileSystem == nil {
		lc.FileSystem = osFileSystem{}
	}

	configFile := lc.ConfigFile
	if configFile == "" {
		configFile = findFirst(lc.FileSystem, configSearchPaths(appName))
	}
	envFile := lc.EnvFile
	if envFile == "" {
		envFile = findFirst(lc.FileSystem, envSearchPaths(appName))
	}

	v := viper.New()

	if configFile != "" && lc.FileSystem.Exists(configFile) {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config file %s: %w", configFile, err)
		}
	}

	// .env feeds the process environment before env binding so both
	// sources go through the same key translation.
	if envFile != "" && lc.FileSystem.Exists(envFile) {
		if err := lc.FileSystem.LoadEnv(envFile); err != nil {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
	}

	v.AutomaticEnv()
	bindEnvVars(v)

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unmarshal config for %s: %w", appName, err)
	}
	return nil
}

// ConfigSearchPaths returns the probe order used when no explicit
// config file is given.
func configSearchPaths(appName string) []string {
	return []string{
		fmt.Sprintf("./cmd/%s/config.yml", appName),
		fmt.Sprintf("../cmd/%s/config.yml", appName),
		"./config/config.yml",
		"./config.yml",
	}
}

func envSearchPaths(appName string) []string {
	return []string{
		fmt.Sprintf(".env.%s", appName),
		".env",
		fmt.Sprintf("../.env.%s", appName),
		"../.env",
	}
}

func findFirst(fs FileSystem, paths []string) string {
	for _, p := range paths {
		if fs.Exists(p) {
			return p
		}
	}
	return ""
}

// bindEnvVars maps UPPER_SNAKE environment variables onto nested viper
// keys. MINUTES_BACKEND_BASE_URL becomes backend.base_url (and the
// other plausible splits), so flat env vars can override nested YAML.
func bindEnvVars(v *viper.Viper) {
	for _, env := range os.Environ() {
		pair := strings.SplitN(env, "=", 2)
		if len(pair) != 2 {
			continue
		}
		for _, key := range envKeyVariants(pair[0]) {
			v.Set(key, pair[1])
		}
	}
}

// envKeyVariants generates every split of an env var name into a nested
// key, since underscores serve both as nesting separators and as parts
// of field names (BASE_URL vs BACKEND.BASE).
func envKeyVariants(envKey string) []string {
	lower := strings.ToLower(strings.TrimPrefix(envKey, "MINUTES_"))
	parts := strings.Split(lower, "_")
	if len(parts) <= 1 {
		return []string{lower}
	}

	seen := map[string]bool{}
	variants := make([]string, 0, len(parts)+1)
	add := func(key string) {
		if !seen[key] {
			seen[key] = true
			variants = append(variants, key)
		}
	}

	add(lower)
	add(strings.ReplaceAll(lower, "_", "."))
	for i := 1; i < len(parts); i++ {
		add(strings.Join(parts[:i], ".") + "." + strings.Join(parts[i:], "_"))
	}
	return variants
}
