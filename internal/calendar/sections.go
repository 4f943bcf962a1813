package calendar

import (
	"fmt"
	"strconv"
	"time"

	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
)

// Section groups the entries of one day of a month.
type Section struct {
	ID      string  `json:"id"`
	Day     int     `json:"day"`
	Title   string  `json:"title"`
	Entries []Entry `json:"entries"`
}

// Sections groups the entries of month index by day of month, in date order.
func (c *Calendar) Sections(index int) ([]Section, error) {
	m, err := c.Month(index)
	if err != nil {
		return nil, err
	}
	return GroupByDay(m.Entries), nil
}

// GroupByDay groups date-sorted entries of a single month by day of month.
func GroupByDay(entries []Entry) []Section {
	var sections []Section
	for _, e := range entries {
		day := e.ReleaseDate.UTC().Day()
		if n := len(sections); n > 0 && sections[n-1].Day == day {
			sections[n-1].Entries = append(sections[n-1].Entries, e)
			continue
		}
		sections = append(sections, Section{
			ID:      fmt.Sprintf("day-%d", day),
			Day:     day,
			Title:   Ordinal(day),
			Entries: []Entry{e},
		})
	}
	return sections
}

// Ordinal renders n with its English ordinal suffix: 1st, 2nd, 3rd, 11th.
func Ordinal(n int) string {
	suffix := "th"
	switch plural.Ordinal.MatchPlural(language.English, n, 0, 0, 0, 0) {
	case plural.One:
		suffix = "st"
	case plural.Two:
		suffix = "nd"
	case plural.Few:
		suffix = "rd"
	}
	return strconv.Itoa(n) + suffix
}

// Day is one cell of a month grid.
type Day struct {
	Date    time.Time
	InMonth bool
	Entries int
}

// Weeks lays month index of year out as Monday-first weeks. Cells outside
// the month are padded with neighbouring days.
func (c *Calendar) Weeks(index, year int) ([][]Day, error) {
	m, err := c.Month(index)
	if err != nil {
		return nil, err
	}
	return Grid(m.Entries, index, year)
}

// Grid lays entries out on the Monday-first weeks of month index of year.
func Grid(entries []Entry, index, year int) ([][]Day, error) {
	if index < 0 || index >= MonthCount {
		return nil, fmt.Errorf("month %d: %w", index, ErrMonthIndex)
	}
	counts := make(map[int]int)
	for _, e := range entries {
		if e.ReleaseDate.UTC().Year() == year && int(e.ReleaseDate.UTC().Month()) == index+1 {
			counts[e.ReleaseDate.UTC().Day()]++
		}
	}

	first := time.Date(year, time.Month(index+1), 1, 0, 0, 0, 0, time.UTC)
	offset := (int(first.Weekday()) + 6) % 7
	cursor := first.AddDate(0, 0, -offset)

	var weeks [][]Day
	for {
		week := make([]Day, 7)
		for i := range week {
			inMonth := cursor.Month() == first.Month()
			cell := Day{Date: cursor, InMonth: inMonth}
			if inMonth {
				cell.Entries = counts[cursor.Day()]
			}
			week[i] = cell
			cursor = cursor.AddDate(0, 0, 1)
		}
		weeks = append(weeks, week)
		if cursor.Month() != first.Month() {
			break
		}
	}
	return weeks, nil
}
