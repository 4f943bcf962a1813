package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"gamecal/internal/game"
)

var (
	calendarEntrySel  = cascadia.MustCompile(".calendar_entry")
	techRadarHeading  = cascadia.MustCompile(`[id^="section-upcoming-games-in-"]`)
	gamesRadarHeading = cascadia.MustCompile(`[id$="-video-game-releases"]`)
	gameInformerLine  = regexp.MustCompile(`(?i)(.+)\s+(\(.+\))\s+[–\-]\s+(` + monthPattern + `)`)
	techRadarLine     = regexp.MustCompile(`(?i)(.+)\s+[–-]\s+(` + monthPattern + `) (\(.+\))`)
	gamesRadarLine    = regexp.MustCompile(`(?i)(.+) (\[.+\]) – (` + monthPattern + `)`)
)

// listingLine is one parsed "title, platforms, month day" line.
type listingLine struct {
	title     string
	platforms string
	date      string
}

// extractLines parses each text line and records the ones that carry a
// title, at least one known platform and a valid date.
func (s *pageSource) extractLines(lines []string, parse func(string) (listingLine, bool)) []*game.Record {
	var records []*game.Record
	for _, text := range lines {
		line, ok := parse(text)
		if !ok {
			s.dropped("no match", text)
			continue
		}
		date, ok := parseMonthDay(line.date, s.env.Year)
		if !ok {
			s.dropped("invalid date", text)
			continue
		}
		platforms := s.resolvePlatforms(splitPlatforms(line.platforms))
		if line.title == "" || len(platforms) == 0 {
			s.dropped("missing title or platforms", text)
			continue
		}
		records = append(records, s.observe(line.title, platforms, date))
	}
	return records
}

// GameInformer reads the release calendar entries of gameinformer.com.
type GameInformer struct {
	*pageSource
}

// Extract parses every fetched page.
func (g *GameInformer) Extract() ([]*game.Record, error) {
	defer g.reportUnknown()
	var records []*game.Record
	for _, page := range g.pages {
		doc, err := parseHTML(page.Body)
		if err != nil {
			return nil, fmt.Errorf("%s: parse %s: %w", g.name, page.URL, err)
		}
		var lines []string
		for _, entry := range cascadia.QueryAll(doc, calendarEntrySel) {
			lines = append(lines, textContent(entry))
		}
		records = append(records, g.extractLines(lines, parseGameInformerLine)...)
	}
	return records, nil
}

func parseGameInformerLine(text string) (listingLine, bool) {
	m := gameInformerLine.FindStringSubmatch(text)
	if m == nil {
		return listingLine{}, false
	}
	return listingLine{title: strings.TrimSpace(m[1]), platforms: m[2], date: m[3]}, true
}

// TechRadar reads the month lists of the TechRadar upcoming games article.
type TechRadar struct {
	*pageSource
}

// Extract parses every fetched page.
func (t *TechRadar) Extract() ([]*game.Record, error) {
	defer t.reportUnknown()
	var records []*game.Record
	for _, page := range t.pages {
		doc, err := parseHTML(page.Body)
		if err != nil {
			return nil, fmt.Errorf("%s: parse %s: %w", t.name, page.URL, err)
		}
		records = append(records, t.extractLines(headingListLines(doc, techRadarHeading), parseTechRadarLine)...)
	}
	return records, nil
}

func parseTechRadarLine(text string) (listingLine, bool) {
	m := techRadarLine.FindStringSubmatch(text)
	if m == nil {
		return listingLine{}, false
	}
	return listingLine{title: strings.TrimSpace(m[1]), date: m[2], platforms: m[3]}, true
}

// GamesRadar reads the month lists of the GamesRadar release dates article.
type GamesRadar struct {
	*pageSource
}

// Extract parses every fetched page.
func (g *GamesRadar) Extract() ([]*game.Record, error) {
	defer g.reportUnknown()
	var records []*game.Record
	for _, page := range g.pages {
		doc, err := parseHTML(page.Body)
		if err != nil {
			return nil, fmt.Errorf("%s: parse %s: %w", g.name, page.URL, err)
		}
		records = append(records, g.extractLines(headingListLines(doc, gamesRadarHeading), parseGamesRadarLine)...)
	}
	return records, nil
}

func parseGamesRadarLine(text string) (listingLine, bool) {
	m := gamesRadarLine.FindStringSubmatch(text)
	if m == nil {
		return listingLine{}, false
	}
	return listingLine{title: strings.TrimSpace(m[1]), platforms: m[2], date: m[3]}, true
}

// headingListLines returns the text of each list item following a heading
// matched by sel.
func headingListLines(doc *html.Node, sel cascadia.Matcher) []string {
	var lines []string
	for _, heading := range cascadia.QueryAll(doc, sel) {
		for _, item := range listItems(heading) {
			lines = append(lines, textContent(item))
		}
	}
	return lines
}
