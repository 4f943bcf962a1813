package ident

import (
	"sync"
	"testing"
)

func TestSequenceStartsAtOne(t *testing.T) {
	var seq Sequence
	if got := seq.Next(); got != 1 {
		t.Fatalf("Next() = %d, want 1", got)
	}
	if got := seq.Next(); got != 2 {
		t.Fatalf("Next() = %d, want 2", got)
	}
	if got := seq.Last(); got != 2 {
		t.Fatalf("Last() = %d, want 2", got)
	}
}

func TestSequencesAreIndependent(t *testing.T) {
	a := NewSequence(100)
	b := NewSequence(0)
	if got := a.Next(); got != 101 {
		t.Fatalf("a.Next() = %d, want 101", got)
	}
	if got := b.Next(); got != 1 {
		t.Fatalf("b.Next() = %d, want 1", got)
	}
}

func TestSequenceConcurrentUnique(t *testing.T) {
	seq := NewSequence(0)
	const workers, perWorker = 8, 250
	var mu sync.Mutex
	seen := make(map[int64]struct{}, workers*perWorker)
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]int64, 0, perWorker)
			for range perWorker {
				local = append(local, seq.Next())
			}
			mu.Lock()
			defer mu.Unlock()
			for _, id := range local {
				seen[id] = struct{}{}
			}
		}()
	}
	wg.Wait()
	if len(seen) != workers*perWorker {
		t.Fatalf("expected %d unique ids, got %d", workers*perWorker, len(seen))
	}
}
