package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"gamecal/internal/calendar"
	"gamecal/internal/publish"
)

func newResolveCommand(ctx *commandContext) *cobra.Command {
	var monthFlag string
	var noMerge bool
	var jsonOut bool
	var publishOut bool

	cmd := &cobra.Command{
		Use:   "resolve FILE...",
		Short: "Resolve local observation files into a calendar",
		Long: "Resolve merges the observations in each JSON file, in the order given, " +
			"and prints the resulting calendar. No network access is performed.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger := ctx.ensureLogger()

			opts := pipelineOptions{Files: args, NoMerge: noMerge, Offline: true}
			p, err := newPipeline(cfg, logger, opts)
			if err != nil {
				return err
			}
			defer p.Close()

			cal, _, err := p.run(cmd.Context(), opts)
			if err != nil {
				return err
			}

			now := time.Now()
			if publishOut {
				if _, err := publish.New(cfg.Paths.OutputDir, logger).Publish(cmd.Context(), cal, now); err != nil {
					return fmt.Errorf("publish calendar: %w", err)
				}
			}

			if strings.TrimSpace(monthFlag) != "" {
				index, err := calendar.ParseMonth(monthFlag)
				if err != nil {
					return err
				}
				doc, err := cal.MonthDocument(index, now)
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, doc)
				}
				printEntries(cmd, []calendar.MonthDocument{doc})
				return nil
			}

			doc := cal.Document(now)
			if jsonOut {
				return writeJSON(cmd, doc)
			}
			printEntries(cmd, doc.Months)
			return nil
		},
	}

	cmd.Flags().StringVarP(&monthFlag, "month", "m", "", "Only print one month (name, prefix or 1-12)")
	cmd.Flags().BoolVar(&noMerge, "no-merge", false, "Insert every observation as its own game")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&publishOut, "publish", false, "Also write the calendar files to paths.output_dir")
	return cmd
}
