// Package topk implements the bounded top-k selector used by IVFADC search
// to retain the k best-scoring candidates seen across an entry stream
// without sorting the whole candidate set.
package topk

import "container/heap"

// Candidate is one scored entry retained by a Selector. Priority is the
// ranking key (callers searching by ascending distance push -distance so
// that "largest priority" means "smallest distance").
type Candidate struct {
	Priority float64
	ID       uint64
}

// Selector is a fixed-capacity min-heap over Candidate.Priority: it keeps
// the k candidates with the largest priority seen so far, evicting the
// current minimum whenever a higher-priority candidate arrives at capacity.
//
// Grounded on the teacher's internal/util.MinHeap/MaxHeap pair (a thin
// container/heap.Interface wrapper around a []*Candidate slice); this
// consolidates both into a single "keep-largest" selector instead of
// exposing two heap flavors.
type Selector struct {
	items    []Candidate
	capacity int
}

// New creates a Selector retaining at most capacity candidates. Panics if
// capacity < 1: a selector that keeps zero candidates is never useful.
func New(capacity int) *Selector {
	if capacity < 1 {
		panic("topk: capacity must be at least 1")
	}
	return &Selector{
		items:    make([]Candidate, 0, capacity),
		capacity: capacity,
	}
}

// Len implements heap.Interface.
func (s *Selector) Len() int { return len(s.items) }

// Less implements heap.Interface: index 0 is always the current minimum.
func (s *Selector) Less(i, j int) bool { return s.items[i].Priority < s.items[j].Priority }

// Swap implements heap.Interface.
func (s *Selector) Swap(i, j int) { s.items[i], s.items[j] = s.items[j], s.items[i] }

// Push implements heap.Interface; use Add, not this, from outside the package.
func (s *Selector) Push(x any) { s.items = append(s.items, x.(Candidate)) }

// Pop implements heap.Interface; use Add, not this, from outside the package.
func (s *Selector) Pop() any {
	old := s.items
	n := len(old)
	item := old[n-1]
	s.items = old[:n-1]
	return item
}

// Add offers a candidate to the selector. If the selector has not reached
// capacity, c is retained unconditionally. Otherwise c replaces the current
// minimum-priority candidate only if c.Priority is strictly greater;
// otherwise c is discarded. O(log k).
func (s *Selector) Add(c Candidate) {
	if s.Len() < s.capacity {
		heap.Push(s, c)
		return
	}
	if c.Priority > s.items[0].Priority {
		s.items[0] = c
		heap.Fix(s, 0)
	}
}

// DrainDescending empties the selector and returns its contents ordered by
// strictly decreasing priority. The selector is empty (Len() == 0) and
// ready for reuse after this call returns.
func (s *Selector) DrainDescending() []Candidate {
	out := make([]Candidate, len(s.items))
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = heap.Pop(s).(Candidate)
	}
	return out
}
