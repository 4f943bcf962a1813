package main

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"gamecal/internal/logging"
	"gamecal/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var lines int
	var level string
	var source string
	var runID string
	var lastRun bool
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show recent entries from the run log",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if strings.TrimSpace(cfg.Paths.LogDir) == "" {
				return fmt.Errorf("paths.log_dir is not set; no run log is written")
			}
			path := filepath.Join(cfg.Paths.LogDir, logging.LogFileName)

			filter := logs.Filter{Source: source, RunID: runID}
			if level != "" {
				filter.MinLevel = logs.ParseLevel(level)
			}
			if lastRun && runID == "" {
				id, err := logs.LastRunID(path)
				if err != nil {
					return err
				}
				filter.RunID = id
			}

			result, err := logs.Tail(path, logs.TailOptions{Limit: lines, Filter: filter})
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, result.Entries)
			}

			out := cmd.OutOrStdout()
			if len(result.Entries) == 0 {
				fmt.Fprintf(out, "No log entries in %s\n", path)
				return nil
			}
			for _, entry := range result.Entries {
				fmt.Fprintln(out, formatLogEntry(entry))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of entries to show (0 for all)")
	cmd.Flags().StringVar(&level, "level", "", "Minimum level (debug, info, warn, error)")
	cmd.Flags().StringVarP(&source, "source", "s", "", "Only entries for this source")
	cmd.Flags().StringVar(&runID, "run", "", "Only entries for this run id")
	cmd.Flags().BoolVar(&lastRun, "last-run", false, "Only entries from the most recent fetch")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func formatLogEntry(entry logs.Entry) string {
	var b strings.Builder
	if !entry.Time.IsZero() {
		b.WriteString(entry.Time.Local().Format(time.DateTime))
		b.WriteByte(' ')
	}
	b.WriteString(strings.ToUpper(entry.Level))
	if entry.Source != "" {
		fmt.Fprintf(&b, " [%s]", entry.Source)
	}
	b.WriteByte(' ')
	b.WriteString(entry.Message)

	keys := make([]string, 0, len(entry.Fields))
	for key := range entry.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Fprintf(&b, " %s=%v", key, entry.Fields[key])
	}
	return b.String()
}
