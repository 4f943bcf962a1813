package extract

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"gamecal/internal/fetch"
	"gamecal/internal/game"
	"gamecal/internal/logging"
	"gamecal/internal/services"
)

// metacriticMaxPages bounds how many pages are followed per listing URL.
const metacriticMaxPages = 10

var (
	metacriticRowSel      = cascadia.MustCompile("tr.expand_collapse")
	metacriticTitleSel    = cascadia.MustCompile(".title h3")
	metacriticPlatformSel = cascadia.MustCompile(".platform .data")
	metacriticDateSel     = cascadia.MustCompile("td.details > span")
	metacriticScoreSel    = cascadia.MustCompile(".score")
	metacriticGameSel     = cascadia.MustCompile(".game")
	metacriticUserSel     = cascadia.MustCompile(".details .score .game")
	metacriticNextSel     = cascadia.MustCompile(".flipper.next .action")
)

// Metacritic reads the condensed release-date browse tables, one platform per
// listing, along with the critic ("metacritic") and "user" scores. Listings
// are paginated; Fetch follows next links until the listing leaves the
// calendar year.
type Metacritic struct {
	*pageSource
}

// Fetch retrieves every listing and its follow-up pages.
func (m *Metacritic) Fetch(ctx context.Context) error {
	if m.env.Fetcher == nil {
		return services.Wrap(services.ErrConfiguration, m.name, "fetch", "no fetcher configured", nil)
	}
	ctx = services.WithSource(ctx, m.name)
	m.pages = m.pages[:0]
	for _, start := range m.urls {
		next := start
		for count := 0; next != "" && count < metacriticMaxPages; count++ {
			page, err := m.env.Fetcher.Get(ctx, next)
			if err != nil {
				return fmt.Errorf("%s: %w", m.name, err)
			}
			m.pages = append(m.pages, page)
			next = m.nextPage(page)
		}
	}
	return nil
}

// nextPage returns the next listing page while the current page still
// overlaps the calendar year.
func (m *Metacritic) nextPage(page fetch.Page) string {
	doc, err := parseHTML(page.Body)
	if err != nil {
		return ""
	}
	var dates []time.Time
	for _, span := range cascadia.QueryAll(doc, metacriticDateSel) {
		if date, ok := parseFullDate(textContent(span)); ok {
			dates = append(dates, date)
		}
	}
	if len(dates) == 0 {
		return ""
	}
	first, last := dates[0], dates[len(dates)-1]
	yearStart := time.Date(m.env.Year, time.January, 1, 0, 0, 0, 0, time.UTC)
	yearEnd := yearStart.AddDate(1, 0, 0)
	ascending := first.Before(last)
	if ascending && !last.Before(yearEnd) {
		return ""
	}
	if !ascending && last.Before(yearStart) {
		return ""
	}

	link := cascadia.Query(doc, metacriticNextSel)
	if link == nil {
		return ""
	}
	href := strings.TrimSpace(attr(link, "href"))
	if href == "" {
		return ""
	}
	base, err := url.Parse(page.URL)
	if err != nil {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}

// Extract parses every fetched page.
func (m *Metacritic) Extract() ([]*game.Record, error) {
	defer m.reportUnknown()
	var records []*game.Record
	for _, page := range m.pages {
		doc, err := parseHTML(page.Body)
		if err != nil {
			return nil, fmt.Errorf("%s: parse %s: %w", m.name, page.URL, err)
		}
		for _, row := range cascadia.QueryAll(doc, metacriticRowSel) {
			if record := m.extractRow(row); record != nil {
				records = append(records, record)
			}
		}
	}
	return records, nil
}

func (m *Metacritic) extractRow(row *html.Node) *game.Record {
	title := textContent(cascadia.Query(row, metacriticTitleSel))
	if title == "" {
		return nil
	}
	platformName := textContent(cascadia.Query(row, metacriticPlatformSel))
	if platformName == "" {
		m.dropped("missing platform", title)
		return nil
	}
	date, ok := parseFullDate(textContent(cascadia.Query(row, metacriticDateSel)))
	if !ok {
		m.dropped("invalid date", title)
		return nil
	}
	if date.Year() != m.env.Year {
		return nil
	}
	platforms := m.resolvePlatforms([]string{platformName})
	if len(platforms) == 0 {
		return nil
	}

	record := m.observe(title, platforms, date)
	if score, ok := criticScore(row); ok {
		record.AddScore("metacritic", score)
	}
	if text := textContent(cascadia.Query(row, metacriticUserSel)); text != "" && !strings.EqualFold(text, "tbd") {
		if score, err := strconv.ParseFloat(text, 64); err == nil {
			record.AddScore("user", score)
		} else {
			m.logger.Debug("unparseable user score",
				logging.String("title", title),
				logging.String("score", text))
		}
	}
	return record
}

// criticScore reads the score cell that is a direct child of the row; the
// user score lives deeper inside the details cell.
func criticScore(row *html.Node) (float64, bool) {
	for _, cell := range children(row, metacriticScoreSel) {
		text := textContent(cascadia.Query(cell, metacriticGameSel))
		if text == "" || strings.EqualFold(text, "tbd") {
			continue
		}
		score, err := strconv.Atoi(text)
		if err != nil {
			continue
		}
		return float64(score), true
	}
	return 0, false
}
