// Package ident hands out process-local numeric identifiers.
//
// A Sequence is owned by whoever builds a pool or catalog and is passed to the
// constructors that need fresh identifiers. Two sequences never coordinate, so
// identifiers are only unique within the sequence that produced them.
package ident

import "sync/atomic"

// Sequence is a monotonically increasing identifier source. The zero value is
// ready to use and yields 1 first. It is safe for concurrent use.
type Sequence struct {
	last atomic.Int64
}

// NewSequence returns a sequence whose first identifier is start+1.
func NewSequence(start int64) *Sequence {
	s := &Sequence{}
	s.last.Store(start)
	return s
}

// Next returns the next identifier.
func (s *Sequence) Next() int64 {
	return s.last.Add(1)
}

// Last returns the most recently issued identifier, or the start value when
// nothing has been issued.
func (s *Sequence) Last() int64 {
	return s.last.Load()
}
