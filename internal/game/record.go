package game

import (
	"maps"
	"slices"
	"time"

	"gamecal/internal/alias"
	"gamecal/internal/ident"
	"gamecal/internal/platform"
)

// DateLayout is the ISO-8601 form release dates are recorded in.
const DateLayout = "2006-01-02T15:04:05.000Z07:00"

// Record is one game as reported by one or more sources.
type Record struct {
	id         int64
	names      *alias.Ledger
	developers *alias.Ledger
	publishers *alias.Ledger
	releases   map[int64]*alias.Ledger
	platforms  []int64
	scores     map[string][]float64
}

// NewRecord returns a record with a fresh identifier from seq, seeded with the
// given title aliases.
func NewRecord(seq *ident.Sequence, names ...string) *Record {
	return &Record{
		id:         seq.Next(),
		names:      alias.New(names...),
		developers: alias.New(),
		publishers: alias.New(),
		releases:   make(map[int64]*alias.Ledger),
		scores:     make(map[string][]float64),
	}
}

// ID returns the record identifier.
func (r *Record) ID() int64 { return r.id }

// Names returns the title ledger.
func (r *Record) Names() *alias.Ledger { return r.names }

// Developers returns the developer ledger.
func (r *Record) Developers() *alias.Ledger { return r.developers }

// Publishers returns the publisher ledger.
func (r *Record) Publishers() *alias.Ledger { return r.publishers }

// AddAlias records one observation of each title.
func (r *Record) AddAlias(names ...string) {
	r.names.AddAll(names)
}

// AddDeveloper records one observation of each developer.
func (r *Record) AddDeveloper(names ...string) {
	r.developers.AddAll(names)
}

// AddPublisher records one observation of each publisher.
func (r *Record) AddPublisher(names ...string) {
	r.publishers.AddAll(names)
}

// AddReleaseDate records that the game releases on p at date.
func (r *Record) AddReleaseDate(p *platform.Platform, date time.Time) {
	r.AddReleaseDateCount(p, date, 1)
}

// AddReleaseDateCount records n observations of a release date on p. A nil
// platform is a caller bug and panics.
func (r *Record) AddReleaseDateCount(p *platform.Platform, date time.Time, n int) {
	if p == nil {
		panic("game: release date recorded without a platform")
	}
	r.addDate(p.ID, date.UTC().Format(DateLayout), n)
}

func (r *Record) addDate(platformID int64, iso string, n int) {
	ledger, ok := r.releases[platformID]
	if !ok {
		ledger = alias.New()
		r.releases[platformID] = ledger
		r.platforms = append(r.platforms, platformID)
	}
	ledger.AddCount(iso, n)
}

// AddScore records a review score under label, e.g. "metacritic".
func (r *Record) AddScore(label string, value float64) {
	if label == "" {
		return
	}
	r.scores[label] = append(r.scores[label], value)
}

// PlatformIDs returns the platforms with at least one release date, in the
// order they were first reported.
func (r *Record) PlatformIDs() []int64 {
	return slices.Clone(r.platforms)
}

// ReleaseDates returns the date ledger for a platform.
func (r *Record) ReleaseDates(platformID int64) (*alias.Ledger, bool) {
	ledger, ok := r.releases[platformID]
	return ledger, ok
}

// Compare scores title similarity with other in [0, 1].
func (r *Record) Compare(other *Record) float64 {
	return r.names.Compare(other.names)
}

// Merge folds every observation of other into r. Other is left untouched and
// merging the same record twice counts its observations twice.
func (r *Record) Merge(other *Record) {
	if other == nil {
		return
	}
	r.names.Merge(other.names)
	r.developers.Merge(other.developers)
	r.publishers.Merge(other.publishers)
	for _, platformID := range other.platforms {
		for _, entry := range other.releases[platformID].Entries() {
			r.addDate(platformID, entry.Value, entry.Count)
		}
	}
	for _, label := range slices.Sorted(maps.Keys(other.scores)) {
		r.scores[label] = append(r.scores[label], other.scores[label]...)
	}
}

// ResolvedName returns the canonical title.
func (r *Record) ResolvedName() string {
	name, _ := r.names.Resolved()
	return name
}

// ResolvedDeveloper returns the canonical developer, or "" when unknown.
func (r *Record) ResolvedDeveloper() string {
	name, _ := r.developers.Resolved()
	return name
}

// ResolvedPublisher returns the canonical publisher, or "" when unknown.
func (r *Record) ResolvedPublisher() string {
	name, _ := r.publishers.Resolved()
	return name
}

// PlatformDate pairs a platform with its resolved release date.
type PlatformDate struct {
	PlatformID int64
	Date       time.Time
}

// ResolvedReleaseDates returns the most reported date for each platform, in
// platform order. Dates that fail to parse are skipped.
func (r *Record) ResolvedReleaseDates() []PlatformDate {
	out := make([]PlatformDate, 0, len(r.platforms))
	for _, platformID := range r.platforms {
		iso, ok := r.releases[platformID].Resolved()
		if !ok {
			continue
		}
		date, err := time.Parse(DateLayout, iso)
		if err != nil {
			continue
		}
		out = append(out, PlatformDate{PlatformID: platformID, Date: date})
	}
	return out
}

// Score is the averaged value of one score label.
type Score struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Scores returns the mean of each score label, sorted by label.
func (r *Record) Scores() []Score {
	labels := slices.Sorted(maps.Keys(r.scores))
	out := make([]Score, 0, len(labels))
	for _, label := range labels {
		values := r.scores[label]
		if len(values) == 0 {
			continue
		}
		var sum float64
		for _, v := range values {
			sum += v
		}
		out = append(out, Score{Label: label, Value: sum / float64(len(values))})
	}
	return out
}

// CalendarEntry is one dated release of a record. Platforms sharing a
// resolved date share an entry.
type CalendarEntry struct {
	RecordID    int64
	Name        string
	Developer   string
	Publisher   string
	ReleaseDate time.Time
	PlatformIDs []int64
	Scores      []Score
}

// CalendarEntries groups the resolved per-platform dates by distinct date,
// earliest first. A record without dates yields no entries.
func (r *Record) CalendarEntries() []CalendarEntry {
	resolved := r.ResolvedReleaseDates()
	if len(resolved) == 0 {
		return nil
	}
	name := r.ResolvedName()
	developer := r.ResolvedDeveloper()
	publisher := r.ResolvedPublisher()
	scores := r.Scores()

	var entries []CalendarEntry
	index := make(map[time.Time]int)
	for _, pd := range resolved {
		if i, ok := index[pd.Date]; ok {
			entries[i].PlatformIDs = append(entries[i].PlatformIDs, pd.PlatformID)
			continue
		}
		index[pd.Date] = len(entries)
		entries = append(entries, CalendarEntry{
			RecordID:    r.id,
			Name:        name,
			Developer:   developer,
			Publisher:   publisher,
			ReleaseDate: pd.Date,
			PlatformIDs: []int64{pd.PlatformID},
			Scores:      slices.Clone(scores),
		})
	}
	slices.SortStableFunc(entries, func(a, b CalendarEntry) int {
		return a.ReleaseDate.Compare(b.ReleaseDate)
	})
	return entries
}
