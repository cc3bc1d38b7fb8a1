// Command minutes is the terminal client for the minutes backend. It
// uploads recordings for transcription, extracts agenda items from
// invitation PDFs and generates per-topic meeting minutes.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sitzungslab/minutes/api"
	"github.com/sitzungslab/minutes/config"
	"github.com/sitzungslab/minutes/logger"
	"github.com/sitzungslab/minutes/poller"
	"github.com/sitzungslab/minutes/version"
)

// clientConfig is the full configuration of the CLI.
type clientConfig struct {
	config.AppConfig `mapstructure:",squash" yaml:",inline"`

	Backend api.Config     `yaml:"backend" mapstructure:"backend"`
	Poller  poller.Config  `yaml:"poller" mapstructure:"poller"`
	LLM     api.LLMOptions `yaml:"llm" mapstructure:"llm"`
}

func (c *clientConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "minutes"
	}
	if c.Logging.Level == "" {
		// A CLI should stay quiet unless asked.
		c.Logging.Level = "warn"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	c.AppConfig.ApplyDefaults()
	c.Backend.ApplyDefaults()
	c.Poller.ApplyDefaults()
}

func (c *clientConfig) Validate() error {
	if err := c.AppConfig.Validate(); err != nil {
		return err
	}
	return c.Backend.Validate()
}

// app bundles what every subcommand needs.
type app struct {
	cfg    clientConfig
	client *api.Client
	log    *logger.Logger
}

func main() {
	var (
		configFile string
		serverURL  string
		verbose    bool
	)

	var a app

	root := &cobra.Command{
		Use:           "minutes",
		Short:         "Generate meeting minutes from council session recordings",
		Version:       version.Get().String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			var opts []config.Option
			if configFile != "" {
				opts = append(opts, config.WithConfigFile(configFile))
			}
			if err := config.Load("minutes", &a.cfg, opts...); err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if serverURL != "" {
				a.cfg.Backend.BaseURL = serverURL
			}
			a.cfg.ApplyDefaults()
			if verbose {
				a.cfg.Logging.Level = "debug"
			}
			if err := a.cfg.Validate(); err != nil {
				return fmt.Errorf("validate config: %w", err)
			}

			a.log = logger.New(&a.cfg.Logging, a.cfg.Name)
			logger.SetGlobalLogger(a.log)

			client, err := api.NewClient(a.cfg.Backend)
			if err != nil {
				return fmt.Errorf("backend client: %w", err)
			}
			a.client = client
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to config file")
	root.PersistentFlags().StringVarP(&serverURL, "server", "s", "", "backend base URL (overrides config)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newDoctorCmd(&a),
		newTranscribeCmd(&a),
		newTopsCmd(&a),
		newGenerateCmd(&a),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
