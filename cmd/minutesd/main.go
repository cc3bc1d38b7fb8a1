// Command minutesd runs the meeting-minutes backend: audio upload and
// transcription jobs, per-topic summarization and TOP extraction.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sitzungslab/minutes/config"
	"github.com/sitzungslab/minutes/diarization"
	"github.com/sitzungslab/minutes/llm"
	"github.com/sitzungslab/minutes/logger"
	"github.com/sitzungslab/minutes/provider"
	"github.com/sitzungslab/minutes/server"
	"github.com/sitzungslab/minutes/transcription"
	"github.com/sitzungslab/minutes/version"

	// Register the backend provider factories.
	_ "github.com/sitzungslab/minutes/diarization/pyannote"
	_ "github.com/sitzungslab/minutes/llm/ollama"
	_ "github.com/sitzungslab/minutes/transcription/whisper"
)

// daemonConfig is the full configuration of the backend process.
type daemonConfig struct {
	config.AppConfig `mapstructure:",squash" yaml:",inline"`

	Server        server.Config        `yaml:"server" mapstructure:"server"`
	Transcription transcription.Config `yaml:"transcription" mapstructure:"transcription"`
	Diarization   diarization.Config   `yaml:"diarization" mapstructure:"diarization"`
	LLM           llm.Config           `yaml:"llm" mapstructure:"llm"`
}

func (c *daemonConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "minutesd"
	}
	c.AppConfig.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Transcription.ApplyDefaults()
	c.Diarization.ApplyDefaults()
	c.LLM.ApplyDefaults()
}

func (c *daemonConfig) Validate() error {
	if err := c.AppConfig.Validate(); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := c.Transcription.Validate(); err != nil {
		return err
	}
	if err := c.Diarization.Validate(); err != nil {
		return err
	}
	return c.LLM.Validate()
}

func main() {
	var configFile string

	root := &cobra.Command{
		Use:     "minutesd",
		Short:   "Backend server for municipal meeting minutes",
		Version: version.Get().String(),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), configFile)
		},
	}
	root.Flags().StringVarP(&configFile, "config", "c", "", "path to config file")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configFile string) error {
	var cfg daemonConfig
	var opts []config.Option
	if configFile != "" {
		opts = append(opts, config.WithConfigFile(configFile))
	}
	if err := config.Load("minutesd", &cfg, opts...); err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	log := logger.New(&cfg.Logging, cfg.Name)
	logger.SetGlobalLogger(log)
	log.Info("Starting", logger.Fields(
		"version", version.Get().String(),
		"environment", cfg.Environment,
	))

	transcriber, err := transcription.Registry.Create(cfg.Transcription.Provider, map[string]any{
		"url":      cfg.Transcription.URL,
		"model":    cfg.Transcription.Model,
		"language": cfg.Transcription.Language,
		"timeout":  cfg.Transcription.Timeout,
	})
	if err != nil {
		return fmt.Errorf("transcription provider: %w", err)
	}

	diarizer, err := diarization.Registry.Create(cfg.Diarization.Provider, map[string]any{
		"url":     cfg.Diarization.URL,
		"timeout": cfg.Diarization.Timeout,
	})
	if err != nil {
		return fmt.Errorf("diarization provider: %w", err)
	}

	chat, err := llm.Registry.Create(cfg.LLM.Provider, map[string]any{
		"base_url":    cfg.LLM.BaseURL,
		"model":       cfg.LLM.Model,
		"temperature": cfg.LLM.Temperature,
		"max_tokens":  cfg.LLM.MaxTokens,
		"timeout":     cfg.LLM.Timeout,
	})
	if err != nil {
		return fmt.Errorf("llm provider: %w", err)
	}

	defer closeProviders(transcriber, diarizer, chat)

	srv := server.New(cfg.Server, log)
	srv.ApplyMiddleware()

	handler := server.NewHandler(cfg.Server, cfg.LLM, cfg.Diarization, transcriber, diarizer, chat, log)
	handler.Register(srv.Engine())
	go handler.WarmUp(ctx)

	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("start server: %w", err)
	}
	log.Info("Listening", logger.Fields("addr", srv.Addr()))

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Stop(shutdownCtx)
}

// closeProviders releases resources of backends that support cleanup.
func closeProviders(backends ...any) {
	ctx := context.Background()
	for _, b := range backends {
		if c, ok := b.(provider.Closeable); ok {
			_ = c.Close(ctx)
		}
	}
}
