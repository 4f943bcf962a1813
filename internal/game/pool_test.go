package game

import (
	"errors"
	"slices"
	"testing"
	"time"

	"gamecal/internal/ident"
)

func TestPoolMergesNearDuplicates(t *testing.T) {
	_, ps5, pc := testCatalog(t)
	seq := ident.NewSequence(0)

	a := NewRecord(seq, "Hades II")
	a.AddReleaseDate(pc, day(2025, time.September, 25))
	b := NewRecord(seq, "Hades 2")
	b.AddReleaseDate(ps5, day(2025, time.September, 25))

	pool := NewPool()
	decisions := pool.Add([]*Record{a, b}, true)

	if pool.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", pool.Len())
	}
	if decisions[0].Action != ActionInserted || decisions[1].Action != ActionMerged || decisions[1].TargetID != a.ID() {
		t.Fatalf("unexpected decisions: %+v", decisions)
	}
	if target, ok := pool.MergedInto(b.ID()); !ok || target != a.ID() {
		t.Fatalf("MergedInto(%d) = %d, %v", b.ID(), target, ok)
	}
	if _, ok := pool.Get(b.ID()); ok {
		t.Fatal("absorbed record must not be live")
	}
	entries := a.CalendarEntries()
	if len(entries) != 1 || !slices.Equal(entries[0].PlatformIDs, []int64{pc.ID, ps5.ID}) {
		t.Fatalf("expected one entry on both platforms, got %+v", entries)
	}
}

func TestPoolRomanNumeralVariantsMerge(t *testing.T) {
	seq := ident.NewSequence(0)
	pool := NewPool()
	pool.Add([]*Record{
		NewRecord(seq, "Final Fantasy VII Remake"),
		NewRecord(seq, "Final Fantasy 7 Remake"),
	}, true)
	if pool.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", pool.Len())
	}
}

func TestPoolKeepsDistinctGames(t *testing.T) {
	seq := ident.NewSequence(0)
	pool := NewPool()
	pool.Add([]*Record{NewRecord(seq, "Minecraft"), NewRecord(seq, "Terraria")}, true)
	if pool.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", pool.Len())
	}
}

func TestPoolMergeDisabledInsertsAll(t *testing.T) {
	seq := ident.NewSequence(0)
	pool := NewPool()
	decisions := pool.Add([]*Record{NewRecord(seq, "Hades II"), NewRecord(seq, "Hades II")}, false)
	if pool.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", pool.Len())
	}
	for _, d := range decisions {
		if d.Action != ActionInserted {
			t.Fatalf("unexpected decision %+v", d)
		}
	}
}

func TestPoolAddIsIdempotentPerRecord(t *testing.T) {
	_, _, pc := testCatalog(t)
	seq := ident.NewSequence(0)
	a := NewRecord(seq, "Astro Bot")
	a.AddReleaseDate(pc, day(2024, time.September, 6))
	b := NewRecord(seq, "ASTRO BOT")

	pool := NewPool()
	pool.Add([]*Record{a, b}, true)
	before := a.Names().Count("ASTRO BOT")

	decisions := pool.Add([]*Record{a, b}, true)
	for _, d := range decisions {
		if d.Action != ActionSkipped {
			t.Fatalf("expected skip on re-add, got %+v", d)
		}
	}
	if pool.Len() != 1 || a.Names().Count("ASTRO BOT") != before {
		t.Fatal("re-adding records changed pool state")
	}
}

func TestPoolFirstMatchWinsInDiscoveryOrder(t *testing.T) {
	seq := ident.NewSequence(0)
	first := NewRecord(seq, "Star Wars Outlaws")
	second := NewRecord(seq, "Star Wars: Outlaws Gold Edition")
	pool := NewPool()
	pool.Add([]*Record{first, second}, false)

	incoming := NewRecord(seq, "Star Wars Outlaws")
	decisions := pool.Add([]*Record{incoming}, true)
	if decisions[0].TargetID != first.ID() {
		t.Fatalf("expected merge into first record, got %+v", decisions[0])
	}
}

func TestPoolFindByAliasAfterMerge(t *testing.T) {
	seq := ident.NewSequence(0)
	a := NewRecord(seq, "The Legend of Zelda: Echoes of Wisdom")
	b := NewRecord(seq, "Legend of Zelda: Echoes of Wisdom", "Zelda: Echoes of Wisdom")

	pool := NewPool(WithThreshold(0.8))
	pool.Add([]*Record{a, b}, true)
	if pool.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", pool.Len())
	}

	for _, name := range []string{
		"The Legend of Zelda: Echoes of Wisdom",
		"zelda echoes of wisdom",
		"Legend of Zelda - Echoes of Wisdom",
	} {
		got, ok := pool.FindByAlias(name)
		if !ok || got.ID() != a.ID() {
			t.Fatalf("FindByAlias(%q) = %v, %v", name, got, ok)
		}
	}
	if _, ok := pool.FindByAlias("Zelda"); ok {
		t.Fatal("FindByAlias must not fuzzy match")
	}
}

func TestPoolUpdateReindexes(t *testing.T) {
	seq := ident.NewSequence(0)
	a := NewRecord(seq, "Marvel's Spider-Man 2")
	pool := NewPool()
	pool.Add([]*Record{a}, true)

	if err := pool.Update(a.ID(), func(r *Record) { r.AddAlias("Spider-Man 2") }); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got, ok := pool.FindByAlias("spider man 2"); !ok || got != a {
		t.Fatalf("expected new alias to be indexed, got %v %v", got, ok)
	}
	if err := pool.Update(9999, func(*Record) {}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPoolIterationOrderAndRestart(t *testing.T) {
	seq := ident.NewSequence(0)
	names := []string{"Minecraft", "Terraria", "Celeste"}
	records := make([]*Record, 0, len(names))
	for _, name := range names {
		records = append(records, NewRecord(seq, name))
	}
	pool := NewPool()
	pool.Add(records, true)

	collect := func() []string {
		var out []string
		for r := range pool.All() {
			out = append(out, r.ResolvedName())
		}
		return out
	}
	if got := collect(); !slices.Equal(got, names) {
		t.Fatalf("All() = %v, want %v", got, names)
	}
	if got := collect(); !slices.Equal(got, names) {
		t.Fatalf("second All() = %v, want %v", got, names)
	}
	if got := len(pool.Records()); got != 3 {
		t.Fatalf("Records() len = %d", got)
	}
}

func TestPoolThresholdOption(t *testing.T) {
	if got := NewPool(WithThreshold(2)).Threshold(); got != SimilarityThreshold {
		t.Fatalf("invalid threshold accepted: %v", got)
	}
	if got := NewPool(WithThreshold(0.5)).Threshold(); got != 0.5 {
		t.Fatalf("Threshold() = %v, want 0.5", got)
	}
}
