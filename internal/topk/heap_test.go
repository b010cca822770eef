package topk

import (
	"math/rand"
	"reflect"
	"sort"
	"testing"
)

func priorities(cands []Candidate) []float64 {
	out := make([]float64, len(cands))
	for i, c := range cands {
		out[i] = c.Priority
	}
	return out
}

func TestSelectorDrainKeepsLargestPrioritiesDescending(t *testing.T) {
	s := New(4)
	for _, p := range []float64{-1, -5, -2, -4, -3, -6} {
		s.Add(Candidate{Priority: p})
	}

	got := priorities(s.DrainDescending())
	want := []float64{-1, -2, -3, -4}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("drain = %v, want %v", got, want)
	}
}

func TestSelectorSizeNeverExceedsCapacity(t *testing.T) {
	s := New(3)
	for i := 0; i < 100; i++ {
		s.Add(Candidate{Priority: float64(i), ID: uint64(i)})
		if s.Len() > 3 {
			t.Fatalf("selector grew past capacity: len=%d", s.Len())
		}
	}
}

// Property 8: for any stream of size n, drained output equals the k-largest
// elements in strictly decreasing order, for both n >= k and n < k.
func TestSelectorTopKProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for _, n := range []int{0, 1, 3, 5, 50} {
		for _, k := range []int{1, 4, 10} {
			stream := make([]float64, n)
			for i := range stream {
				stream[i] = rng.Float64()*200 - 100
			}

			s := New(k)
			for i, p := range stream {
				s.Add(Candidate{Priority: p, ID: uint64(i)})
			}
			got := priorities(s.DrainDescending())

			sorted := append([]float64(nil), stream...)
			sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))
			want := sorted
			if len(want) > k {
				want = want[:k]
			}

			if len(got) != len(want) {
				t.Fatalf("n=%d k=%d: len(got)=%d, want %d", n, k, len(got), len(want))
			}
			for i := range got {
				if got[i] != want[i] {
					t.Fatalf("n=%d k=%d: got[%d]=%v, want %v (got=%v want=%v)", n, k, i, got[i], want[i], got, want)
				}
			}
			for i := 1; i < len(got); i++ {
				if got[i] > got[i-1] {
					t.Fatalf("drain not descending at %d: %v", i, got)
				}
			}
		}
	}
}

func TestSelectorDrainEmptiesAndIsReusable(t *testing.T) {
	s := New(2)
	s.Add(Candidate{Priority: 1})
	s.Add(Candidate{Priority: 2})
	_ = s.DrainDescending()
	if s.Len() != 0 {
		t.Fatalf("expected empty selector after drain, got len=%d", s.Len())
	}
	s.Add(Candidate{Priority: 5})
	got := s.DrainDescending()
	if len(got) != 1 || got[0].Priority != 5 {
		t.Fatalf("reuse after drain failed: %v", got)
	}
}

func TestSelectorTiesDoNotPanic(t *testing.T) {
	s := New(3)
	for i := 0; i < 10; i++ {
		s.Add(Candidate{Priority: 1.0, ID: uint64(i)})
	}
	got := s.DrainDescending()
	if len(got) != 3 {
		t.Fatalf("expected 3 tied candidates retained, got %d", len(got))
	}
}
