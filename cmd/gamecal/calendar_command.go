package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"gamecal/internal/calendar"
	"gamecal/internal/publish"
)

var weekdayHeaders = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

func newCalendarCommand(ctx *commandContext) *cobra.Command {
	calendarCmd := &cobra.Command{
		Use:   "calendar",
		Short: "Inspect the published calendar",
	}

	calendarCmd.AddCommand(newCalendarShowCommand(ctx))
	calendarCmd.AddCommand(newCalendarDaysCommand(ctx))
	calendarCmd.AddCommand(newCalendarGridCommand(ctx))

	return calendarCmd
}

func newCalendarShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "show [MONTH]",
		Short: "List published releases, optionally for one month",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if len(args) == 1 {
				doc, err := loadMonth(cfg.Paths.OutputDir, args[0])
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, doc)
				}
				printEntries(cmd, []calendar.MonthDocument{doc})
				return nil
			}

			doc, err := publish.LoadAll(cfg.Paths.OutputDir)
			if err != nil {
				return fmt.Errorf("load calendar: %w", err)
			}
			if jsonOut {
				return writeJSON(cmd, doc)
			}
			printEntries(cmd, doc.Months)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func newCalendarDaysCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "days MONTH",
		Short: "Group a month's releases by day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			doc, err := loadMonth(cfg.Paths.OutputDir, args[0])
			if err != nil {
				return err
			}
			sections := calendar.GroupByDay(doc.Entries)
			if jsonOut {
				return writeJSON(cmd, sections)
			}

			out := cmd.OutOrStdout()
			if len(sections) == 0 {
				fmt.Fprintf(out, "No releases in %s\n", doc.Name)
				return nil
			}
			for i, section := range sections {
				if i > 0 {
					fmt.Fprintln(out)
				}
				fmt.Fprintf(out, "%s %s\n", section.Title, doc.Name)
				for _, entry := range section.Entries {
					fmt.Fprintf(out, "  %s (%s)\n", entry.Name, platformList(entry))
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func newCalendarGridCommand(ctx *commandContext) *cobra.Command {
	var year int

	cmd := &cobra.Command{
		Use:   "grid MONTH",
		Short: "Print a month as a week grid with release counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			doc, err := loadMonth(cfg.Paths.OutputDir, args[0])
			if err != nil {
				return err
			}
			if year <= 0 {
				year = cfg.CalendarYear(time.Now())
			}
			weeks, err := calendar.Grid(doc.Entries, doc.Index, year)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(weeks))
			for _, week := range weeks {
				row := make([]string, len(week))
				for i, day := range week {
					if !day.InMonth {
						continue
					}
					cell := strconv.Itoa(day.Date.Day())
					if n := day.Entries; n > 0 {
						cell += fmt.Sprintf(" (%d)", n)
					}
					row[i] = cell
				}
				rows = append(rows, row)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %d\n", doc.Name, year)
			fmt.Fprintln(out, renderTable(out, weekdayHeaders, rows, nil))
			return nil
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "Year to lay out (defaults to calendar.year)")
	return cmd
}

func loadMonth(dir, value string) (calendar.MonthDocument, error) {
	index, err := calendar.ParseMonth(value)
	if err != nil {
		return calendar.MonthDocument{}, err
	}
	doc, err := publish.LoadMonth(dir, index)
	if err != nil {
		return calendar.MonthDocument{}, fmt.Errorf("load %s: %w (run gamecal fetch first)", publish.MonthFile(index), err)
	}
	return doc, nil
}

func printEntries(cmd *cobra.Command, months []calendar.MonthDocument) {
	out := cmd.OutOrStdout()
	var rows [][]string
	for _, month := range months {
		for _, entry := range month.Entries {
			rows = append(rows, []string{
				entry.ReleaseDate.UTC().Format(time.DateOnly),
				entry.Name,
				platformList(entry),
				scoreList(entry),
			})
		}
	}
	if len(rows) == 0 {
		fmt.Fprintln(out, "No releases")
		return
	}
	fmt.Fprintln(out, renderTable(out, []string{"Date", "Name", "Platforms", "Scores"}, rows, nil))
}

func platformList(entry calendar.Entry) string {
	names := make([]string, 0, len(entry.Platforms))
	for _, p := range entry.Platforms {
		names = append(names, p.ShortName)
	}
	return strings.Join(names, ", ")
}

func scoreList(entry calendar.Entry) string {
	parts := make([]string, 0, len(entry.Scores))
	for _, s := range entry.Scores {
		parts = append(parts, fmt.Sprintf("%s %s", s.Label, strconv.FormatFloat(s.Value, 'f', -1, 64)))
	}
	return strings.Join(parts, ", ")
}
