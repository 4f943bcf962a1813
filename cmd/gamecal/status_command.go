package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"gamecal/internal/preflight"
)

var errChecksFailed = errors.New("one or more checks failed")

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var offline bool
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check directories, the page cache and source reachability",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(cmd.Context(), cfg, preflight.Options{Offline: offline})
			if jsonOut {
				if err := writeJSON(cmd, results); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				for _, line := range renderSectionHeader("gamecal status", colorize) {
					fmt.Fprintln(out, line)
				}
				fmt.Fprintln(out, renderStatusLine("Config", statusOK, ctx.configPath, colorize))
				for _, r := range results {
					kind := statusOK
					if !r.Passed {
						kind = statusError
					}
					fmt.Fprintln(out, renderStatusLine(r.Name, kind, r.Detail, colorize))
				}
			}
			if preflight.Failed(results) {
				return errChecksFailed
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&offline, "offline", false, "Skip source reachability checks")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}
