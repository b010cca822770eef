package ivfadc

import (
	"bytes"
	"errors"
	"testing"
)

func fourCorners4D() [][]float32 {
	return [][]float32{
		{1, 1, 0, 0},
		{1, -1, 0, 0},
		{-1, -1, 0, 0},
		{-1, 1, 0, 0},
	}
}

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := New(
		WithProbes(2),
		WithCoarseQuantizer(4, 50, 0),
		WithProductQuantizer(2, 2, 25, 0),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return idx
}

func TestTrainInsertSearchEndToEnd(t *testing.T) {
	idx := newTestIndex(t)
	if err := idx.Train(fourCorners4D()); err != nil {
		t.Fatalf("Train: %v", err)
	}
	if !idx.IsTrained() {
		t.Fatal("expected IsTrained() to be true after Train")
	}
	if idx.Dim() != 4 {
		t.Fatalf("Dim() = %d, want 4", idx.Dim())
	}

	for i, v := range fourCorners4D() {
		if err := idx.Insert(uint64(i), v); err != nil {
			t.Fatalf("Insert(%d): %v", i, err)
		}
	}

	got, err := idx.Search([]float32{1, 1, 0, 0}, 1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 || got[0] != 0 {
		t.Fatalf("Search((1,1,0,0), 1) = %v, want [0]", got)
	}
}

func TestSaveLoadEndToEnd(t *testing.T) {
	idx := newTestIndex(t)
	if err := idx.Train(fourCorners4D()); err != nil {
		t.Fatalf("Train: %v", err)
	}
	for i, v := range fourCorners4D() {
		if err := idx.Insert(uint64(i), v); err != nil {
			t.Fatalf("Insert(%d): %v", i, err)
		}
	}

	var buf bytes.Buffer
	if err := idx.Save(&buf); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(&buf)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	want, err := idx.Search([]float32{-1, -1, 0, 0}, 2)
	if err != nil {
		t.Fatalf("Search original: %v", err)
	}
	got, err := loaded.Search([]float32{-1, -1, 0, 0}, 2)
	if err != nil {
		t.Fatalf("Search loaded: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("Search after round-trip = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Search after round-trip = %v, want %v", got, want)
		}
	}
}

func TestUntrainedIndexRejectsOperations(t *testing.T) {
	idx := newTestIndex(t)
	if err := idx.Insert(0, []float32{1, 2, 3, 4}); !errors.Is(err, ErrNotTrained) {
		t.Errorf("Insert before Train: got %v, want ErrNotTrained", err)
	}
	if _, err := idx.Search([]float32{1, 2, 3, 4}, 1); !errors.Is(err, ErrNotTrained) {
		t.Errorf("Search before Train: got %v, want ErrNotTrained", err)
	}
}

func TestOptionsRejectInvalidParams(t *testing.T) {
	if _, err := New(WithProbes(0)); !errors.Is(err, ErrInvalidParam) {
		t.Errorf("WithProbes(0): got %v, want ErrInvalidParam", err)
	}
	if _, err := New(WithCoarseQuantizer(0, 10, 0)); !errors.Is(err, ErrInvalidParam) {
		t.Errorf("WithCoarseQuantizer(0,...): got %v, want ErrInvalidParam", err)
	}
}

func TestDefaultConfigDividesDimension(t *testing.T) {
	cfg := DefaultConfig(100)
	if 100%cfg.M != 0 {
		t.Fatalf("DefaultConfig(100).M = %d does not divide 100", cfg.M)
	}
}
