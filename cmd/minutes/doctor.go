package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDoctorCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that the backend is reachable and ready",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.client.Health(cmd.Context()); err != nil {
				return fmt.Errorf("backend at %s: %w", a.cfg.Backend.BaseURL, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Backend at %s is healthy\n", a.cfg.Backend.BaseURL)
			return nil
		},
	}
}
