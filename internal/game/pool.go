package game

import (
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"slices"

	"gamecal/internal/logging"
	"gamecal/internal/textutil"
)

// SimilarityThreshold is the default minimum title similarity for two records
// to be treated as the same game.
const SimilarityThreshold = 0.85

// ErrNotFound reports an identifier that is not a live pooled record.
var ErrNotFound = errors.New("record not found")

// Action describes what Pool.Add did with a record.
type Action string

const (
	ActionInserted Action = "inserted"
	ActionMerged   Action = "merged"
	ActionSkipped  Action = "skipped"
)

// Decision is the outcome of adding one record to a pool.
type Decision struct {
	RecordID int64
	Action   Action
	// TargetID is the pooled record that absorbed RecordID when merged, or
	// RecordID itself otherwise.
	TargetID int64
	Score    float64
}

// Option configures a Pool.
type Option func(*Pool)

// WithThreshold overrides the merge similarity threshold.
func WithThreshold(threshold float64) Option {
	return func(p *Pool) {
		if threshold > 0 && threshold <= 1 {
			p.threshold = threshold
		}
	}
}

// WithLogger sets the logger used for merge decisions.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pool) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// Pool holds the canonical records of one aggregation run. It is not safe for
// concurrent use; callers serialize Add.
type Pool struct {
	threshold  float64
	logger     *slog.Logger
	records    map[int64]*Record
	order      []int64
	aliasIndex map[string]int64
	retired    map[int64]int64
}

// NewPool returns an empty pool.
func NewPool(opts ...Option) *Pool {
	p := &Pool{
		threshold:  SimilarityThreshold,
		logger:     logging.NewNop(),
		records:    make(map[int64]*Record),
		aliasIndex: make(map[string]int64),
		retired:    make(map[int64]int64),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = logging.NewComponentLogger(p.logger, "resolver")
	return p
}

// Threshold returns the merge similarity threshold.
func (p *Pool) Threshold() float64 { return p.threshold }

// Add processes records in order. Records already pooled, or already merged
// into a pooled record, are skipped. With merge enabled each remaining record
// is folded into the first pooled record, in discovery order, whose title
// similarity reaches the threshold; otherwise it is inserted.
func (p *Pool) Add(records []*Record, merge bool) []Decision {
	decisions := make([]Decision, 0, len(records))
	for _, record := range records {
		if record == nil {
			continue
		}
		decisions = append(decisions, p.add(record, merge))
	}
	return decisions
}

func (p *Pool) add(record *Record, merge bool) Decision {
	id := record.ID()
	if _, ok := p.records[id]; ok {
		return Decision{RecordID: id, Action: ActionSkipped, TargetID: id}
	}
	if target, ok := p.retired[id]; ok {
		return Decision{RecordID: id, Action: ActionSkipped, TargetID: target}
	}

	var closestID int64
	var closest float64
	if merge {
		for _, existingID := range p.order {
			existing := p.records[existingID]
			score := existing.Compare(record)
			if score < p.threshold {
				if score > closest {
					closestID, closest = existingID, score
				}
				continue
			}
			existing.Merge(record)
			p.retired[id] = existingID
			p.index(existing)
			attrs := append(logging.PoolDecisionAttrs(logging.DecisionMerged, id, existingID, score, p.threshold),
				logging.String("name", record.ResolvedName()),
				logging.String("target_name", existing.ResolvedName()),
			)
			p.logger.Debug("record merged", logging.Args(attrs...)...)
			return Decision{RecordID: id, Action: ActionMerged, TargetID: existingID, Score: score}
		}
	}

	p.records[id] = record
	p.order = append(p.order, id)
	p.index(record)
	attrs := append(logging.PoolDecisionAttrs(logging.DecisionInserted, id, closestID, closest, p.threshold),
		logging.String("name", record.ResolvedName()),
	)
	p.logger.Debug("record inserted", logging.Args(attrs...)...)
	return Decision{RecordID: id, Action: ActionInserted, TargetID: id}
}

func (p *Pool) index(record *Record) {
	for _, name := range record.Names().Values() {
		key := textutil.Normalize(name)
		if key == "" {
			continue
		}
		p.aliasIndex[key] = record.ID()
	}
}

// Update applies fn to a pooled record and re-indexes its aliases.
func (p *Pool) Update(id int64, fn func(*Record)) error {
	record, ok := p.records[id]
	if !ok {
		return fmt.Errorf("update record %d: %w", id, ErrNotFound)
	}
	fn(record)
	p.index(record)
	return nil
}

// FindByAlias returns the pooled record indexed under the normalized form of
// name. It performs no fuzzy matching.
func (p *Pool) FindByAlias(name string) (*Record, bool) {
	id, ok := p.aliasIndex[textutil.Normalize(name)]
	if !ok {
		return nil, false
	}
	record, ok := p.records[id]
	return record, ok
}

// Get returns the live record with the given identifier.
func (p *Pool) Get(id int64) (*Record, bool) {
	record, ok := p.records[id]
	return record, ok
}

// MergedInto reports which pooled record absorbed id.
func (p *Pool) MergedInto(id int64) (int64, bool) {
	target, ok := p.retired[id]
	return target, ok
}

// Len returns the number of live records.
func (p *Pool) Len() int { return len(p.order) }

// Records returns the live records in discovery order.
func (p *Pool) Records() []*Record {
	out := make([]*Record, 0, len(p.order))
	for _, id := range p.order {
		out = append(out, p.records[id])
	}
	return out
}

// All yields the live records in discovery order. Each call starts afresh.
func (p *Pool) All() iter.Seq[*Record] {
	return func(yield func(*Record) bool) {
		for _, id := range slices.Clone(p.order) {
			if !yield(p.records[id]) {
				return
			}
		}
	}
}
