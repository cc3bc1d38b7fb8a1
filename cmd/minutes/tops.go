package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

func newTopsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tops <invitation.pdf>",
		Short: "Extract agenda items (TOPs) from an invitation PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			tops, err := a.client.ExtractTOPs(cmd.Context(), filepath.Base(args[0]), f, a.cfg.LLM)
			if err != nil {
				return err
			}
			if len(tops) == 0 {
				fmt.Fprintln(cmd.ErrOrStderr(), "Keine Tagesordnungspunkte gefunden")
				return nil
			}
			for i, top := range tops {
				fmt.Fprintf(cmd.OutOrStdout(), "%d. %s\n", i+1, top)
			}
			return nil
		},
	}
}
