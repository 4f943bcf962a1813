package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"gamecal/internal/platform"
)

func newPlatformsCommand() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:         "platforms",
		Short:       "List the known platforms and their aliases",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog := platform.NewDefaultCatalog(nil)
			if jsonOut {
				type platformJSON struct {
					ID        int64    `json:"id"`
					Name      string   `json:"name"`
					ShortName string   `json:"shortName"`
					Aliases   []string `json:"aliases"`
				}
				items := make([]platformJSON, 0, catalog.Len())
				for _, p := range catalog.All() {
					items = append(items, platformJSON{ID: p.ID, Name: p.Name, ShortName: p.ShortName, Aliases: p.Aliases()})
				}
				return writeJSON(cmd, items)
			}

			rows := make([][]string, 0, catalog.Len())
			for _, p := range catalog.All() {
				rows = append(rows, []string{
					strconv.FormatInt(p.ID, 10),
					p.Name,
					p.ShortName,
					strings.Join(p.Aliases(), ", "),
				})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(out, []string{"ID", "Name", "Short", "Aliases"}, rows, []columnAlignment{alignRight}))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}
