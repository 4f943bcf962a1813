package calendar

import (
	"encoding/json"
	"fmt"
	"time"

	"gamecal/internal/game"
)

type entryJSON struct {
	Name        string        `json:"name"`
	Developer   string        `json:"developer"`
	Publisher   string        `json:"publisher"`
	Platforms   []PlatformRef `json:"platforms"`
	ReleaseDate string        `json:"releaseDate"`
	UID         string        `json:"uid"`
	Scores      []Score       `json:"scores,omitempty"`
}

// MarshalJSON renders the release date in ISO-8601 UTC form.
func (e Entry) MarshalJSON() ([]byte, error) {
	platforms := e.Platforms
	if platforms == nil {
		platforms = []PlatformRef{}
	}
	return json.Marshal(entryJSON{
		Name:        e.Name,
		Developer:   e.Developer,
		Publisher:   e.Publisher,
		Platforms:   platforms,
		ReleaseDate: e.ReleaseDate.UTC().Format(game.DateLayout),
		UID:         e.UID,
		Scores:      e.Scores,
	})
}

// UnmarshalJSON accepts the form produced by MarshalJSON.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var raw entryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	date, err := time.Parse(game.DateLayout, raw.ReleaseDate)
	if err != nil {
		return fmt.Errorf("entry %q: release date: %w", raw.Name, err)
	}
	*e = Entry{
		Name:        raw.Name,
		Developer:   raw.Developer,
		Publisher:   raw.Publisher,
		Platforms:   raw.Platforms,
		ReleaseDate: date.UTC(),
		UID:         raw.UID,
		Scores:      raw.Scores,
	}
	return nil
}

// MonthDocument is the published form of a single month.
type MonthDocument struct {
	Name      string  `json:"name"`
	Index     int     `json:"index"`
	Entries   []Entry `json:"entries"`
	UpdatedAt string  `json:"updatedAt"`
}

// Document is the published form of the whole calendar.
type Document struct {
	Months    []MonthDocument `json:"months"`
	UpdatedAt string          `json:"updatedAt"`
}

// MonthDocument builds the document for month index, stamped with now.
func (c *Calendar) MonthDocument(index int, now time.Time) (MonthDocument, error) {
	m, err := c.Month(index)
	if err != nil {
		return MonthDocument{}, err
	}
	return monthDocument(m, stamp(now)), nil
}

// Document builds the all-months document, stamped with now.
func (c *Calendar) Document(now time.Time) Document {
	updated := stamp(now)
	doc := Document{Months: make([]MonthDocument, 0, MonthCount), UpdatedAt: updated}
	for _, m := range c.Months() {
		doc.Months = append(doc.Months, monthDocument(m, updated))
	}
	return doc
}

func monthDocument(m Month, updated string) MonthDocument {
	entries := m.Entries
	if entries == nil {
		entries = []Entry{}
	}
	return MonthDocument{Name: m.Name, Index: m.Index, Entries: entries, UpdatedAt: updated}
}

func stamp(now time.Time) string {
	return now.UTC().Format(game.DateLayout)
}
