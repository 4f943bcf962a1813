// Package calendar projects resolved game records onto a twelve month release
// calendar.
//
// Build walks the records once, resolves each platform through the supplied
// resolver, buckets entries by the UTC month of their release date and sorts
// every month by date and then by title using locale-aware collation. The
// resulting Calendar is immutable; documents and day sections are derived from
// the same sorted state.
package calendar

import (
	"errors"
	"fmt"
	"iter"
	"slices"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"gamecal/internal/game"
	"gamecal/internal/platform"
)

// MonthCount is the number of months in a calendar.
const MonthCount = 12

var (
	// ErrMonthIndex reports a month index outside 0-11.
	ErrMonthIndex = errors.New("month index out of range")
	// ErrUnknownPlatform reports a record date on a platform the resolver
	// does not know.
	ErrUnknownPlatform = errors.New("unknown platform")
)

// PlatformResolver maps platform identifiers back to platforms.
type PlatformResolver interface {
	ResolveByID(id int64) (*platform.Platform, bool)
}

// PlatformRef is the projection of a platform onto an entry.
type PlatformRef struct {
	Name      string `json:"name"`
	ShortName string `json:"shortName"`
}

// Score is a labelled review score, e.g. "Metacritic".
type Score struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Entry is one game release on one date.
type Entry struct {
	Name        string
	Developer   string
	Publisher   string
	Platforms   []PlatformRef
	ReleaseDate time.Time
	UID         string
	Scores      []Score
}

// Month is one bucket of the calendar.
type Month struct {
	Index   int
	Name    string
	Entries []Entry
}

// Calendar holds twelve sorted months.
type Calendar struct {
	months [MonthCount]Month
}

// UIDFunc derives the stable identifier of an entry.
type UIDFunc func(Entry) string

type options struct {
	tag language.Tag
	uid UIDFunc
}

// Option configures Build.
type Option func(*options)

// WithLanguage sets the collation language used to order titles.
func WithLanguage(tag language.Tag) Option {
	return func(o *options) { o.tag = tag }
}

// WithUIDFunc overrides how entry identifiers are derived.
func WithUIDFunc(fn UIDFunc) Option {
	return func(o *options) {
		if fn != nil {
			o.uid = fn
		}
	}
}

// Build projects records onto a calendar. It fails with ErrUnknownPlatform
// when a record references a platform the resolver cannot resolve.
func Build(records iter.Seq[*game.Record], resolver PlatformResolver, opts ...Option) (*Calendar, error) {
	o := options{tag: language.English, uid: DeterministicUID}
	for _, opt := range opts {
		opt(&o)
	}
	collator := collate.New(o.tag)
	title := cases.Title(o.tag)

	cal := &Calendar{}
	for i := range cal.months {
		cal.months[i] = Month{Index: i, Name: time.Month(i + 1).String()}
	}

	for record := range records {
		for _, ce := range record.CalendarEntries() {
			entry, err := projectEntry(ce, resolver, collator, title)
			if err != nil {
				return nil, err
			}
			entry.UID = o.uid(entry)
			index := int(entry.ReleaseDate.UTC().Month()) - 1
			cal.months[index].Entries = append(cal.months[index].Entries, entry)
		}
	}

	for i := range cal.months {
		slices.SortStableFunc(cal.months[i].Entries, func(a, b Entry) int {
			if c := a.ReleaseDate.Compare(b.ReleaseDate); c != 0 {
				return c
			}
			return collator.CompareString(a.Name, b.Name)
		})
	}
	return cal, nil
}

func projectEntry(ce game.CalendarEntry, resolver PlatformResolver, collator *collate.Collator, title cases.Caser) (Entry, error) {
	refs := make([]PlatformRef, 0, len(ce.PlatformIDs))
	for _, id := range ce.PlatformIDs {
		p, ok := resolver.ResolveByID(id)
		if !ok {
			return Entry{}, fmt.Errorf("record %d (%q): platform %d: %w", ce.RecordID, ce.Name, id, ErrUnknownPlatform)
		}
		refs = append(refs, PlatformRef{Name: p.Name, ShortName: p.ShortName})
	}
	slices.SortStableFunc(refs, func(a, b PlatformRef) int {
		return collator.CompareString(a.ShortName, b.ShortName)
	})

	scores := make([]Score, 0, len(ce.Scores))
	for _, s := range ce.Scores {
		scores = append(scores, Score{Label: title.String(s.Label), Value: s.Value})
	}

	return Entry{
		Name:        ce.Name,
		Developer:   ce.Developer,
		Publisher:   ce.Publisher,
		Platforms:   refs,
		ReleaseDate: ce.ReleaseDate.UTC(),
		Scores:      scores,
	}, nil
}

// Month returns the month at index 0-11.
func (c *Calendar) Month(index int) (Month, error) {
	if index < 0 || index >= MonthCount {
		return Month{}, fmt.Errorf("month %d: %w", index, ErrMonthIndex)
	}
	m := c.months[index]
	m.Entries = slices.Clone(m.Entries)
	return m, nil
}

// Months returns all twelve months, including empty ones.
func (c *Calendar) Months() []Month {
	out := make([]Month, 0, MonthCount)
	for i := range c.months {
		m, _ := c.Month(i)
		out = append(out, m)
	}
	return out
}

// Len returns the total number of entries across all months.
func (c *Calendar) Len() int {
	total := 0
	for i := range c.months {
		total += len(c.months[i].Entries)
	}
	return total
}

// ParseMonth resolves a month name ("september", "Sep") or 1-based number
// ("9") to a 0-based index.
func ParseMonth(value string) (int, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return 0, fmt.Errorf("empty month: %w", ErrMonthIndex)
	}
	if n, err := strconv.Atoi(value); err == nil {
		if n < 1 || n > MonthCount {
			return 0, fmt.Errorf("month %q: %w", value, ErrMonthIndex)
		}
		return n - 1, nil
	}
	for i := range MonthCount {
		name := strings.ToLower(time.Month(i + 1).String())
		if value == name || (len(value) >= 3 && strings.HasPrefix(name, value)) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("month %q: %w", value, ErrMonthIndex)
}
