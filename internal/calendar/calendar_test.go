package calendar

import (
	"encoding/json"
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	"gamecal/internal/game"
	"gamecal/internal/ident"
	"gamecal/internal/platform"
)

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

type fixture struct {
	catalog *platform.Catalog
	seq     *ident.Sequence
	pool    *game.Pool
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return &fixture{
		catalog: platform.NewDefaultCatalog(ident.NewSequence(0)),
		seq:     ident.NewSequence(0),
		pool:    game.NewPool(),
	}
}

func (f *fixture) platform(t *testing.T, name string) *platform.Platform {
	t.Helper()
	p, ok := f.catalog.ResolveByName(name)
	if !ok {
		t.Fatalf("platform %q missing", name)
	}
	return p
}

func (f *fixture) add(t *testing.T, name string, date time.Time, platforms ...string) *game.Record {
	t.Helper()
	r := game.NewRecord(f.seq, name)
	for _, p := range platforms {
		r.AddReleaseDate(f.platform(t, p), date)
	}
	f.pool.Add([]*game.Record{r}, false)
	return r
}

func (f *fixture) build(t *testing.T, opts ...Option) *Calendar {
	t.Helper()
	cal, err := Build(f.pool.All(), f.catalog, opts...)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return cal
}

func entryNames(entries []Entry) []string {
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
	}
	return names
}

func TestBuildBucketsByMonth(t *testing.T) {
	f := newFixture(t)
	f.add(t, "Astro Bot", day(2024, time.September, 6), "PS5")
	f.add(t, "Metaphor: ReFantazio", day(2024, time.October, 11), "PS5", "PC")
	f.add(t, "Dragon Age: The Veilguard", day(2024, time.October, 31), "PC")

	cal := f.build(t)
	months := cal.Months()
	if len(months) != MonthCount {
		t.Fatalf("expected %d months, got %d", MonthCount, len(months))
	}
	if got := entryNames(months[8].Entries); !slices.Equal(got, []string{"Astro Bot"}) {
		t.Fatalf("september = %v", got)
	}
	if got := entryNames(months[9].Entries); !slices.Equal(got, []string{"Metaphor: ReFantazio", "Dragon Age: The Veilguard"}) {
		t.Fatalf("october = %v", got)
	}
	if len(months[0].Entries) != 0 {
		t.Fatalf("january should be empty, got %v", entryNames(months[0].Entries))
	}
	if months[9].Name != "October" || months[9].Index != 9 {
		t.Fatalf("unexpected month header %+v", months[9])
	}
	if cal.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", cal.Len())
	}
}

func TestBuildSplitsDistinctPlatformDates(t *testing.T) {
	f := newFixture(t)
	r := game.NewRecord(f.seq, "Final Fantasy XVI")
	r.AddReleaseDate(f.platform(t, "PS5"), day(2023, time.June, 22))
	r.AddReleaseDate(f.platform(t, "PC"), day(2024, time.September, 17))
	f.pool.Add([]*game.Record{r}, false)

	cal := f.build(t)
	june, _ := cal.Month(5)
	september, _ := cal.Month(8)
	if len(june.Entries) != 1 || len(september.Entries) != 1 {
		t.Fatalf("expected one entry in june and september, got %d and %d", len(june.Entries), len(september.Entries))
	}
	if june.Entries[0].Platforms[0].ShortName != "PS5" {
		t.Fatalf("june platforms = %+v", june.Entries[0].Platforms)
	}
	if september.Entries[0].Platforms[0].ShortName != "Win" {
		t.Fatalf("september platforms = %+v", september.Entries[0].Platforms)
	}
}

func TestBuildSortsByDateThenName(t *testing.T) {
	f := newFixture(t)
	f.add(t, "zelda: echoes of wisdom", day(2024, time.September, 26), "Switch")
	f.add(t, "Astro Bot", day(2024, time.September, 6), "PS5")
	f.add(t, "Ara: History Untold", day(2024, time.September, 24), "PC")
	f.add(t, "Warhammer 40,000: Space Marine 2", day(2024, time.September, 9), "PC")
	f.add(t, "EA Sports FC 25", day(2024, time.September, 26), "PS5")

	september, err := f.build(t).Month(8)
	if err != nil {
		t.Fatalf("Month: %v", err)
	}
	want := []string{
		"Astro Bot",
		"Warhammer 40,000: Space Marine 2",
		"Ara: History Untold",
		"EA Sports FC 25",
		"zelda: echoes of wisdom",
	}
	if got := entryNames(september.Entries); !slices.Equal(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
	for i := 1; i < len(september.Entries); i++ {
		if september.Entries[i].ReleaseDate.Before(september.Entries[i-1].ReleaseDate) {
			t.Fatalf("entry %d out of date order", i)
		}
	}
}

func TestBuildSortsPlatformsByShortName(t *testing.T) {
	f := newFixture(t)
	f.add(t, "Hades II", day(2025, time.September, 25), "Switch", "PC", "PS5", "XSX")

	september, _ := f.build(t).Month(8)
	var shorts []string
	for _, p := range september.Entries[0].Platforms {
		shorts = append(shorts, p.ShortName)
	}
	if want := []string{"NS", "PS5", "Win", "XBS"}; !slices.Equal(shorts, want) {
		t.Fatalf("platforms = %v, want %v", shorts, want)
	}
}

func TestBuildCapitalisesScoreLabels(t *testing.T) {
	f := newFixture(t)
	r := f.add(t, "Astro Bot", day(2024, time.September, 6), "PS5")
	r.AddScore("metacritic", 94)
	r.AddScore("user", 8.9)

	september, _ := f.build(t).Month(8)
	scores := september.Entries[0].Scores
	if len(scores) != 2 || scores[0].Label != "Metacritic" || scores[1].Label != "User" {
		t.Fatalf("scores = %+v", scores)
	}
	if scores[0].Value != 94 {
		t.Fatalf("metacritic = %v", scores[0].Value)
	}
}

func TestBuildUnknownPlatform(t *testing.T) {
	f := newFixture(t)
	foreign := platform.NewCatalog(ident.NewSequence(500)).Register("Dreamcast", "DC")
	r := game.NewRecord(f.seq, "Shenmue")
	r.AddReleaseDate(foreign, day(2024, time.March, 1))
	f.pool.Add([]*game.Record{r}, false)

	_, err := Build(f.pool.All(), f.catalog)
	if !errors.Is(err, ErrUnknownPlatform) {
		t.Fatalf("expected ErrUnknownPlatform, got %v", err)
	}
}

func TestMonthIndexOutOfRange(t *testing.T) {
	cal := newFixture(t).build(t)
	for _, index := range []int{-1, 12} {
		if _, err := cal.Month(index); !errors.Is(err, ErrMonthIndex) {
			t.Fatalf("Month(%d): expected ErrMonthIndex, got %v", index, err)
		}
		if _, err := cal.MonthDocument(index, time.Now()); !errors.Is(err, ErrMonthIndex) {
			t.Fatalf("MonthDocument(%d): expected ErrMonthIndex, got %v", index, err)
		}
	}
}

func TestDeterministicUIDStable(t *testing.T) {
	build := func() string {
		f := newFixture(t)
		f.add(t, "Astro Bot", day(2024, time.September, 6), "PS5")
		september, _ := f.build(t).Month(8)
		return september.Entries[0].UID
	}
	first, second := build(), build()
	if first == "" || first != second {
		t.Fatalf("uid not stable: %q vs %q", first, second)
	}
}

func TestWithUIDFunc(t *testing.T) {
	f := newFixture(t)
	f.add(t, "Astro Bot", day(2024, time.September, 6), "PS5")
	cal := f.build(t, WithUIDFunc(func(e Entry) string { return "id-" + e.Name }))
	september, _ := cal.Month(8)
	if september.Entries[0].UID != "id-Astro Bot" {
		t.Fatalf("uid = %q", september.Entries[0].UID)
	}
}

func TestMonthReturnsCopy(t *testing.T) {
	f := newFixture(t)
	f.add(t, "Astro Bot", day(2024, time.September, 6), "PS5")
	cal := f.build(t)
	september, _ := cal.Month(8)
	september.Entries[0].Name = "changed"
	again, _ := cal.Month(8)
	if again.Entries[0].Name != "Astro Bot" {
		t.Fatal("Month exposed internal state")
	}
}

func TestSectionsGroupByDay(t *testing.T) {
	f := newFixture(t)
	f.add(t, "Astro Bot", day(2024, time.September, 6), "PS5")
	f.add(t, "EA Sports FC 25", day(2024, time.September, 27), "PS5")
	f.add(t, "Zelda: Echoes of Wisdom", day(2024, time.September, 26), "Switch")
	f.add(t, "Ara: History Untold", day(2024, time.September, 26), "PC")

	sections, err := f.build(t).Sections(8)
	if err != nil {
		t.Fatalf("Sections: %v", err)
	}
	if len(sections) != 3 {
		t.Fatalf("expected 3 sections, got %d", len(sections))
	}
	if sections[1].ID != "day-26" || sections[1].Title != "26th" || len(sections[1].Entries) != 2 {
		t.Fatalf("unexpected section %+v", sections[1])
	}
	if sections[0].Title != "6th" || sections[2].Title != "27th" {
		t.Fatalf("titles = %q, %q", sections[0].Title, sections[2].Title)
	}
}

func TestOrdinal(t *testing.T) {
	cases := map[int]string{
		1: "1st", 2: "2nd", 3: "3rd", 4: "4th",
		11: "11th", 12: "12th", 13: "13th",
		21: "21st", 22: "22nd", 23: "23rd", 30: "30th", 31: "31st",
	}
	for n, want := range cases {
		if got := Ordinal(n); got != want {
			t.Errorf("Ordinal(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestWeeksMondayFirst(t *testing.T) {
	f := newFixture(t)
	f.add(t, "Astro Bot", day(2024, time.September, 6), "PS5")
	weeks, err := f.build(t).Weeks(8, 2024)
	if err != nil {
		t.Fatalf("Weeks: %v", err)
	}
	// 2024-09-01 is a Sunday, 2024-09-30 a Monday.
	if len(weeks) != 6 {
		t.Fatalf("expected 6 weeks, got %d", len(weeks))
	}
	first := weeks[0]
	if first[0].Date.Weekday() != time.Monday || first[0].InMonth {
		t.Fatalf("first cell = %+v", first[0])
	}
	if !first[6].InMonth || first[6].Date.Day() != 1 {
		t.Fatalf("first sunday = %+v", first[6])
	}
	if weeks[1][4].Date.Day() != 6 || weeks[1][4].Entries != 1 {
		t.Fatalf("release day cell = %+v", weeks[1][4])
	}
}

func TestParseMonth(t *testing.T) {
	cases := map[string]int{"september": 8, "Sep": 8, "9": 8, "1": 0, "DECEMBER": 11}
	for in, want := range cases {
		got, err := ParseMonth(in)
		if err != nil || got != want {
			t.Errorf("ParseMonth(%q) = %d, %v; want %d", in, got, err, want)
		}
	}
	for _, in := range []string{"", "0", "13", "ju", "smarch"} {
		if _, err := ParseMonth(in); !errors.Is(err, ErrMonthIndex) {
			t.Errorf("ParseMonth(%q): expected ErrMonthIndex, got %v", in, err)
		}
	}
}

func TestMonthDocumentJSON(t *testing.T) {
	f := newFixture(t)
	r := f.add(t, "Astro Bot", day(2024, time.September, 6), "PS5")
	r.AddDeveloper("Team Asobi")
	cal := f.build(t)

	now := time.Date(2024, time.August, 1, 12, 30, 0, 0, time.FixedZone("CEST", 2*3600))
	doc, err := cal.MonthDocument(8, now)
	if err != nil {
		t.Fatalf("MonthDocument: %v", err)
	}
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	text := string(data)
	for _, want := range []string{
		`"name":"September"`,
		`"index":8`,
		`"releaseDate":"2024-09-06T00:00:00.000Z"`,
		`"developer":"Team Asobi"`,
		`"publisher":""`,
		`"platforms":[{"name":"Playstation 5","shortName":"PS5"}]`,
		`"updatedAt":"2024-08-01T10:30:00.000Z"`,
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("document missing %s: %s", want, text)
		}
	}
	if strings.Contains(text, `"scores"`) {
		t.Fatalf("empty scores should be omitted: %s", text)
	}

	var decoded MonthDocument
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !decoded.Entries[0].ReleaseDate.Equal(day(2024, time.September, 6)) {
		t.Fatalf("decoded date = %v", decoded.Entries[0].ReleaseDate)
	}
}

func TestDocumentIncludesEmptyMonths(t *testing.T) {
	cal := newFixture(t).build(t)
	doc := cal.Document(time.Unix(0, 0))
	if len(doc.Months) != MonthCount {
		t.Fatalf("expected %d months, got %d", MonthCount, len(doc.Months))
	}
	data, _ := json.Marshal(doc.Months[0])
	if !strings.Contains(string(data), `"entries":[]`) {
		t.Fatalf("empty month should render entries as []: %s", data)
	}
}
