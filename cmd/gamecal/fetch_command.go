package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"gamecal/internal/aggregate"
	"gamecal/internal/logging"
	"gamecal/internal/publish"
	"gamecal/internal/services"
)

type fetchResult struct {
	RunID   string         `json:"runId"`
	Sources []sourceResult `json:"sources"`
	Entries int            `json:"entries"`
	Files   []string       `json:"files"`
}

type sourceResult struct {
	aggregate.Report
	Error string `json:"error,omitempty"`
}

func newFetchCommand(ctx *commandContext) *cobra.Command {
	var sources []string
	var noMerge bool
	var noCache bool
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Scrape the enabled sources and publish the calendar",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			runID := uuid.NewString()
			runCtx := services.WithRunID(cmd.Context(), runID)
			logger := logging.WithContext(runCtx, ctx.ensureLogger())

			opts := pipelineOptions{Sources: sources, NoCache: noCache, NoMerge: noMerge}
			p, err := newPipeline(cfg, logger, opts)
			if err != nil {
				return err
			}
			defer p.Close()

			cal, reports, err := p.run(runCtx, opts)
			if err != nil {
				return err
			}

			files, err := publish.New(cfg.Paths.OutputDir, logger).Publish(runCtx, cal, time.Now())
			if err != nil {
				logging.ErrorWithContext(logger, "calendar publish failed", "publish_failed",
					logging.String("dir", cfg.Paths.OutputDir),
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "check that paths.output_dir is writable and no other fetch is running"))
				return fmt.Errorf("publish calendar: %w", err)
			}

			if jsonOut {
				result := fetchResult{RunID: runID, Entries: cal.Len(), Files: files}
				for _, r := range reports {
					sr := sourceResult{Report: r}
					if r.Err != nil {
						sr.Error = r.Err.Error()
					}
					result.Sources = append(result.Sources, sr)
				}
				return writeJSON(cmd, result)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(out, reportHeaders, reportRows(reports), reportAligns))
			fmt.Fprintf(out, "Published %d entries to %s\n", cal.Len(), cfg.Paths.OutputDir)
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&sources, "source", "s", nil, "Sources to scrape (defaults to sources.enabled)")
	cmd.Flags().BoolVar(&noMerge, "no-merge", false, "Insert every report as its own game")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Bypass the page cache")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}
