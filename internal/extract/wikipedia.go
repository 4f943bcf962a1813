package extract

import (
	"fmt"
	"strconv"
	"time"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"gamecal/internal/game"
)

var (
	wikitableSel = cascadia.MustCompile("table.wikitable")
	rowSel       = cascadia.MustCompile("tr")
	tdSel        = cascadia.MustCompile("td")
)

const (
	wikiReleasesStart = "January–March"
	wikiReleasesEnd   = "Unscheduled_releases"
)

// Wikipedia reads the quarterly release tables of a "<year> in video games"
// article. Rows come in three shapes, since month and day cells span rows:
//
//	8 cells: month, day, title, platforms, ...
//	7 cells: day, title, platforms, ...
//	6 cells: title, platforms, ...
type Wikipedia struct {
	*pageSource
}

// Extract parses every fetched page.
func (w *Wikipedia) Extract() ([]*game.Record, error) {
	defer w.reportUnknown()
	var records []*game.Record
	for _, page := range w.pages {
		doc, err := parseHTML(page.Body)
		if err != nil {
			return nil, fmt.Errorf("%s: parse %s: %w", w.name, page.URL, err)
		}
		for _, table := range releaseTables(doc) {
			records = append(records, w.extractTable(table)...)
		}
	}
	return records, nil
}

// releaseTables returns the wikitables between the January–March heading and
// the unscheduled releases heading. Pages without the heading yield every
// wikitable.
func releaseTables(doc *html.Node) []*html.Node {
	var tables []*html.Node
	started := false
	walk(doc, func(n *html.Node) bool {
		id := attr(n, "id")
		if id == wikiReleasesStart {
			started = true
		}
		if started && id == wikiReleasesEnd {
			return false
		}
		if started && wikitableSel.Match(n) {
			tables = append(tables, n)
		}
		return true
	})
	if !started {
		return cascadia.QueryAll(doc, wikitableSel)
	}
	return tables
}

func (w *Wikipedia) extractTable(table *html.Node) []*game.Record {
	var (
		records []*game.Record
		month   time.Month
		day     int
	)
	for _, row := range cascadia.QueryAll(table, rowSel) {
		cells := children(row, tdSel)
		values := make([]string, len(cells))
		for i, cell := range cells {
			values[i] = cellText(cell)
		}

		var title, platforms string
		switch len(values) {
		case 8:
			if m, ok := parseMonth(values[0]); ok {
				month = m
			}
			day = parseDay(values[1])
			title, platforms = values[2], values[3]
		case 7:
			day = parseDay(values[0])
			title, platforms = values[1], values[2]
		case 6:
			title, platforms = values[0], values[1]
		default:
			continue
		}

		if month == 0 || day == 0 {
			w.dropped("unscheduled day", title)
			continue
		}
		date, ok := dateOf(w.env.Year, month, day)
		if !ok {
			w.dropped("invalid date", title)
			continue
		}
		resolved := w.resolvePlatforms(splitPlatforms(platforms))
		if title == "" || len(resolved) == 0 {
			w.dropped("missing title or platforms", title)
			continue
		}
		records = append(records, w.observe(title, resolved, date))
	}
	return records
}

// parseDay returns 0 for TBA and other non-numeric day cells.
func parseDay(value string) int {
	day, err := strconv.Atoi(value)
	if err != nil || day < 1 {
		return 0
	}
	return day
}
