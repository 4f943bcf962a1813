package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"gamecal/internal/audit"
)

func newAuditCommand(ctx *commandContext) *cobra.Command {
	var sources []string
	var floor float64
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "audit [FILE...]",
		Short: "List pairs of games that almost merged",
		Long: "Audit resolves the given observation files (and any --source) and lists " +
			"pairs whose title similarity falls between the audit floor and the merge threshold.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger := ctx.ensureLogger()

			opts := pipelineOptions{Sources: sources, Files: args, Offline: len(sources) == 0}
			p, err := newPipeline(cfg, logger, opts)
			if err != nil {
				return err
			}
			defer p.Close()

			if _, _, err := p.run(cmd.Context(), opts); err != nil {
				return err
			}

			if !cmd.Flags().Changed("floor") {
				floor = cfg.Resolver.AuditFloor
			}
			misses := audit.NearMisses(p.pool.Records(), floor, p.pool.Threshold())
			if jsonOut {
				if misses == nil {
					misses = []audit.NearMiss{}
				}
				return writeJSON(cmd, misses)
			}

			out := cmd.OutOrStdout()
			if len(misses) == 0 {
				fmt.Fprintln(out, "No near misses")
				return nil
			}
			rows := make([][]string, 0, len(misses))
			for _, m := range misses {
				rows = append(rows, []string{
					m.Left,
					m.Right,
					strconv.FormatFloat(m.Similarity, 'f', 3, 64),
					strconv.FormatFloat(m.JaroWinkler, 'f', 3, 64),
					yesNo(m.NumbersDiffer),
					yesNo(m.SharesAPlatform),
				})
			}
			fmt.Fprintln(out, renderTable(out,
				[]string{"Left", "Right", "Dice", "Jaro-Winkler", "Numbers differ", "Shared platform"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight}))
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&sources, "source", "s", nil, "Also scrape these sources")
	cmd.Flags().Float64Var(&floor, "floor", 0, "Lowest similarity reported (defaults to resolver.audit_floor)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}
