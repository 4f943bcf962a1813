// Package alias accumulates weighted observations of a value and resolves the
// most likely one.
//
// A Ledger counts how often each distinct string was reported. Counts only grow:
// re-reporting a value or merging another ledger adds to them. Insertion order
// is retained so that ties resolve to the value that was seen first, which keeps
// resolution deterministic across runs.
//
// Compare scores two ledgers by fuzzy title similarity. Both sides are reduced
// to their normalized alias set (see NormalizedSet) and every pair is scored
// with the Dice coefficient. A perfect pair short-circuits to 1; otherwise the
// mean over all pairs is returned.
package alias

import (
	"encoding/json"
	"slices"

	"gamecal/internal/textutil"
)

// Entry is a single value and how many times it was observed.
type Entry struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Ledger is a multiset of observed strings. The zero value is ready to use.
// A Ledger is not safe for concurrent mutation.
type Ledger struct {
	counts map[string]int
	order  []string
}

// New returns a ledger seeded with values, each counted once.
func New(values ...string) *Ledger {
	l := &Ledger{}
	l.AddAll(values)
	return l
}

// Add records one observation of value. Empty values are ignored.
func (l *Ledger) Add(value string) {
	l.AddCount(value, 1)
}

// AddCount records n observations of value. Empty values and non-positive
// counts are ignored.
func (l *Ledger) AddCount(value string, n int) {
	if value == "" || n <= 0 {
		return
	}
	if l.counts == nil {
		l.counts = make(map[string]int)
	}
	if _, ok := l.counts[value]; !ok {
		l.order = append(l.order, value)
	}
	l.counts[value] += n
}

// AddAll records one observation of each value.
func (l *Ledger) AddAll(values []string) {
	for _, value := range values {
		l.Add(value)
	}
}

// Merge adds every entry of other, with its count, to l. Other is not modified.
func (l *Ledger) Merge(other *Ledger) {
	for _, entry := range other.Entries() {
		l.AddCount(entry.Value, entry.Count)
	}
}

// Count returns how many times value was observed.
func (l *Ledger) Count(value string) int {
	if l == nil {
		return 0
	}
	return l.counts[value]
}

// Has reports whether value was observed at least once.
func (l *Ledger) Has(value string) bool {
	return l.Count(value) > 0
}

// Len returns the number of distinct values.
func (l *Ledger) Len() int {
	if l == nil {
		return 0
	}
	return len(l.order)
}

// Values returns each distinct value once, in insertion order.
func (l *Ledger) Values() []string {
	if l == nil {
		return nil
	}
	return slices.Clone(l.order)
}

// Entries returns a snapshot of the ledger in insertion order.
func (l *Ledger) Entries() []Entry {
	if l == nil {
		return nil
	}
	entries := make([]Entry, 0, len(l.order))
	for _, value := range l.order {
		entries = append(entries, Entry{Value: value, Count: l.counts[value]})
	}
	return entries
}

// Top returns the most observed value. Ties go to the value inserted first.
func (l *Ledger) Top() (string, bool) {
	if l.Len() == 0 {
		return "", false
	}
	best := l.order[0]
	bestCount := l.counts[best]
	for _, value := range l.order[1:] {
		if count := l.counts[value]; count > bestCount {
			best, bestCount = value, count
		}
	}
	return best, true
}

// Resolved returns the first value added unless another value has been
// observed more than once, in which case the top value wins.
func (l *Ledger) Resolved() (string, bool) {
	if l.Len() == 0 {
		return "", false
	}
	for _, value := range l.order {
		if l.counts[value] > 1 {
			return l.Top()
		}
	}
	return l.order[0], true
}

// Sorted returns entries ordered by descending count. Equal counts keep
// insertion order.
func (l *Ledger) Sorted() []Entry {
	entries := l.Entries()
	slices.SortStableFunc(entries, func(a, b Entry) int {
		return b.Count - a.Count
	})
	return entries
}

// NormalizedSet returns the distinct normalized titles of the ledger, most
// observed first. Values that normalize to the empty string are dropped.
func (l *Ledger) NormalizedSet() []string {
	sorted := l.Sorted()
	out := make([]string, 0, len(sorted))
	seen := make(map[string]struct{}, len(sorted))
	for _, entry := range sorted {
		normalized := textutil.NormalizeTitle(entry.Value)
		if normalized == "" {
			continue
		}
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		out = append(out, normalized)
	}
	return out
}

// Compare scores the similarity of two ledgers in [0, 1]. Any exact pair of
// normalized titles yields 1. Otherwise the result is the mean Dice
// coefficient over all pairs, or 0 when either side is empty.
func (l *Ledger) Compare(other *Ledger) float64 {
	left := l.NormalizedSet()
	right := other.NormalizedSet()
	if len(left) == 0 || len(right) == 0 {
		return 0
	}
	var sum float64
	for _, a := range left {
		for _, b := range right {
			score := textutil.DiceCoefficient(a, b)
			if score == 1 {
				return 1
			}
			sum += score
		}
	}
	return sum / float64(len(left)*len(right))
}

// Clone returns an independent copy of l.
func (l *Ledger) Clone() *Ledger {
	clone := &Ledger{}
	clone.Merge(l)
	return clone
}

// MarshalJSON encodes the ledger as an ordered list of entries.
func (l *Ledger) MarshalJSON() ([]byte, error) {
	entries := l.Entries()
	if entries == nil {
		entries = []Entry{}
	}
	return json.Marshal(entries)
}

// UnmarshalJSON restores a ledger from an ordered list of entries.
func (l *Ledger) UnmarshalJSON(data []byte) error {
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}
	*l = Ledger{}
	for _, entry := range entries {
		l.AddCount(entry.Value, entry.Count)
	}
	return nil
}
