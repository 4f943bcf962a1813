package aggregate

import (
	"context"
	"errors"
	"slices"
	"sync/atomic"
	"testing"
	"time"

	"gamecal/internal/extract"
	"gamecal/internal/game"
	"gamecal/internal/ident"
	"gamecal/internal/platform"
)

type fakeExtractor struct {
	name       string
	delay      time.Duration
	fetchErr   error
	extractErr error
	build      func() []*game.Record
	fetched    atomic.Bool
}

func (f *fakeExtractor) Name() string { return f.name }

func (f *fakeExtractor) Fetch(ctx context.Context) error {
	select {
	case <-time.After(f.delay):
	case <-ctx.Done():
		return ctx.Err()
	}
	f.fetched.Store(true)
	return f.fetchErr
}

func (f *fakeExtractor) Extract() ([]*game.Record, error) {
	if f.extractErr != nil {
		return nil, f.extractErr
	}
	return f.build(), nil
}

type world struct {
	seq     *ident.Sequence
	catalog *platform.Catalog
}

func newWorld() *world {
	return &world{seq: ident.NewSequence(0), catalog: platform.NewDefaultCatalog(ident.NewSequence(1000))}
}

func (w *world) record(t *testing.T, name, platformName string, date time.Time) *game.Record {
	t.Helper()
	p, ok := w.catalog.ResolveByName(platformName)
	if !ok {
		t.Fatalf("platform %q missing", platformName)
	}
	r := game.NewRecord(w.seq, name)
	r.AddReleaseDate(p, date)
	return r
}

func day(m time.Month, d int) time.Time {
	return time.Date(2024, m, d, 0, 0, 0, 0, time.UTC)
}

func TestRunMergesAcrossSources(t *testing.T) {
	w := newWorld()
	wiki := &fakeExtractor{name: "wikipedia", build: func() []*game.Record {
		return []*game.Record{
			w.record(t, "Astro Bot", "PS5", day(time.September, 6)),
			w.record(t, "Hades II", "PC", day(time.September, 25)),
		}
	}}
	radar := &fakeExtractor{name: "gamesradar", build: func() []*game.Record {
		return []*game.Record{
			w.record(t, "Hades 2", "Switch", day(time.September, 25)),
			w.record(t, "Dragon Age: The Veilguard", "PC", day(time.October, 31)),
		}
	}}

	pool := game.NewPool()
	reports, err := Run(context.Background(), []extract.Extractor{wiki, radar}, pool, Options{Concurrency: 2, Merge: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if pool.Len() != 3 {
		t.Fatalf("pool has %d records, want 3", pool.Len())
	}
	if reports[0].Source != "wikipedia" || reports[0].Inserted != 2 {
		t.Fatalf("wikipedia report = %+v", reports[0])
	}
	if reports[1].Records != 2 || reports[1].Merged != 1 || reports[1].Inserted != 1 {
		t.Fatalf("gamesradar report = %+v", reports[1])
	}
	hades, ok := pool.FindByAlias("hades 2")
	if !ok || len(hades.PlatformIDs()) != 2 {
		t.Fatalf("expected merged Hades II on two platforms, got %v", hades)
	}
}

func TestRunOrderIndependentOfFetchTiming(t *testing.T) {
	build := func(slowFirst bool) []string {
		w := newWorld()
		first := &fakeExtractor{name: "first", build: func() []*game.Record {
			return []*game.Record{w.record(t, "Final Fantasy VII Rebirth", "PS5", day(time.February, 29))}
		}}
		second := &fakeExtractor{name: "second", build: func() []*game.Record {
			return []*game.Record{w.record(t, "Final Fantasy 7 Rebirth", "PS5", day(time.February, 29))}
		}}
		if slowFirst {
			first.delay = 30 * time.Millisecond
		} else {
			second.delay = 30 * time.Millisecond
		}
		pool := game.NewPool()
		if _, err := Run(context.Background(), []extract.Extractor{first, second}, pool, Options{Concurrency: 2, Merge: true}); err != nil {
			t.Fatalf("Run: %v", err)
		}
		var names []string
		for r := range pool.All() {
			names = append(names, r.ResolvedName())
		}
		return names
	}
	a, b := build(true), build(false)
	if !slices.Equal(a, b) || len(a) != 1 || a[0] != "Final Fantasy VII Rebirth" {
		t.Fatalf("results differ by fetch timing: %v vs %v", a, b)
	}
}

func TestRunSkipsFailedSources(t *testing.T) {
	w := newWorld()
	broken := &fakeExtractor{name: "techradar", fetchErr: errors.New("connection refused")}
	badParse := &fakeExtractor{name: "gameinformer", extractErr: errors.New("bad markup")}
	good := &fakeExtractor{name: "wikipedia", build: func() []*game.Record {
		return []*game.Record{w.record(t, "Astro Bot", "PS5", day(time.September, 6))}
	}}

	pool := game.NewPool()
	reports, err := Run(context.Background(), []extract.Extractor{broken, badParse, good}, pool, Options{Concurrency: 1, Merge: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !reports[0].Failed() || !reports[1].Failed() || reports[2].Failed() {
		t.Fatalf("unexpected failure flags: %+v", reports)
	}
	if pool.Len() != 1 {
		t.Fatalf("pool has %d records, want 1", pool.Len())
	}
}

func TestRunAllSourcesFailed(t *testing.T) {
	ex := &fakeExtractor{name: "metacritic", fetchErr: errors.New("503 service unavailable")}
	_, err := Run(context.Background(), []extract.Extractor{ex}, game.NewPool(), Options{})
	if !errors.Is(err, ErrAllSourcesFailed) {
		t.Fatalf("expected ErrAllSourcesFailed, got %v", err)
	}
}

func TestRunWithoutMerge(t *testing.T) {
	w := newWorld()
	a := &fakeExtractor{name: "a", build: func() []*game.Record {
		return []*game.Record{w.record(t, "Astro Bot", "PS5", day(time.September, 6))}
	}}
	b := &fakeExtractor{name: "b", build: func() []*game.Record {
		return []*game.Record{w.record(t, "Astro Bot", "PS5", day(time.September, 6))}
	}}
	pool := game.NewPool()
	if _, err := Run(context.Background(), []extract.Extractor{a, b}, pool, Options{Merge: false}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if pool.Len() != 2 {
		t.Fatalf("pool has %d records, want 2 without merging", pool.Len())
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ex := &fakeExtractor{name: "slow", delay: time.Second}
	if _, err := Run(ctx, []extract.Extractor{ex}, game.NewPool(), Options{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRunNoExtractors(t *testing.T) {
	reports, err := Run(context.Background(), nil, game.NewPool(), Options{})
	if err != nil || len(reports) != 0 {
		t.Fatalf("Run(nil) = %v, %v", reports, err)
	}
}
