package kmeans

import (
	"errors"
	"math"
	"math/rand"
	"reflect"
	"sort"
	"testing"

	"github.com/lborges/ivfadc/internal/errs"
)

func fourCorners() [][]float32 {
	return [][]float32{
		{1, 1},
		{1, -1},
		{-1, -1},
		{-1, 1},
	}
}

func TestFourCornerClusterAssignment(t *testing.T) {
	q := New(4, 50, 1e-4, 0)
	if err := q.Fit(fourCorners()); err != nil {
		t.Fatalf("Fit: %v", err)
	}

	centroids, err := q.Centroids()
	if err != nil {
		t.Fatalf("Centroids: %v", err)
	}

	want := [][]float32{{-1, -1}, {1, 1}, {-1, 1}, {1, -1}}
	for i, c := range want {
		if !reflect.DeepEqual(centroids[i], c) {
			t.Fatalf("centroid %d = %v, want %v (all=%v)", i, centroids[i], c, centroids)
		}
	}

	cases := []struct {
		point []float32
		want  int
	}{
		{[]float32{2, 2}, 1},
		{[]float32{2, -2}, 3},
		{[]float32{-2, -2}, 0},
		{[]float32{-2, 2}, 2},
		{[]float32{1, 1}, 1},
	}
	for _, c := range cases {
		got, err := q.Predict(c.point)
		if err != nil {
			t.Fatalf("Predict(%v): %v", c.point, err)
		}
		if got != c.want {
			t.Errorf("Predict(%v) = %d, want %d", c.point, got, c.want)
		}
	}

	batch := [][]float32{{2, 2}, {2, -2}, {-2, 2}}
	labels, err := q.PredictBatch(batch)
	if err != nil {
		t.Fatalf("PredictBatch: %v", err)
	}
	if !reflect.DeepEqual(labels, []int{1, 3, 2}) {
		t.Fatalf("PredictBatch = %v, want [1 3 2]", labels)
	}
}

func TestNClosestCentroidsMatchesBruteForceSet(t *testing.T) {
	q := New(4, 50, 1e-4, 0)
	if err := q.Fit(fourCorners()); err != nil {
		t.Fatalf("Fit: %v", err)
	}

	check := func(point []float32, n int, want []int) {
		t.Helper()
		got, err := q.PredictNClosest(point, n)
		if err != nil {
			t.Fatalf("PredictNClosest(%v, %d): %v", point, n, err)
		}
		sort.Ints(got)
		sort.Ints(want)
		if !reflect.DeepEqual(got, want) {
			t.Errorf("PredictNClosest(%v, %d) = %v, want set %v", point, n, got, want)
		}
	}

	check([]float32{2, 0}, 2, []int{0, 3})
	check([]float32{0, -2}, 2, []int{1, 3})
	check([]float32{2, 2}, 3, []int{0, 2, 3})
}

func TestFitDeterminism(t *testing.T) {
	data := make([][]float32, 40)
	rng := rand.New(rand.NewSource(7))
	for i := range data {
		data[i] = []float32{rng.Float32() * 10, rng.Float32() * 10, rng.Float32() * 10}
	}

	q1 := New(5, 30, 1e-4, 123)
	if err := q1.Fit(data); err != nil {
		t.Fatalf("Fit q1: %v", err)
	}
	q2 := New(5, 30, 1e-4, 123)
	if err := q2.Fit(data); err != nil {
		t.Fatalf("Fit q2: %v", err)
	}

	c1, _ := q1.Centroids()
	c2, _ := q2.Centroids()
	if !reflect.DeepEqual(c1, c2) {
		t.Fatalf("centroids differ between identical seeded runs:\n%v\n%v", c1, c2)
	}
	l1, _ := q1.Labels()
	l2, _ := q2.Labels()
	if !reflect.DeepEqual(l1, l2) {
		t.Fatalf("labels differ between identical seeded runs")
	}
}

func TestUntrainedAccessFails(t *testing.T) {
	q := New(4, 10, 1e-4, 0)

	if _, err := q.Centroids(); !errors.Is(err, errs.ErrNotTrained) {
		t.Errorf("Centroids before fit: got %v, want ErrNotTrained", err)
	}
	if _, err := q.Predict([]float32{1, 2}); !errors.Is(err, errs.ErrNotTrained) {
		t.Errorf("Predict before fit: got %v, want ErrNotTrained", err)
	}
	if _, err := q.PredictNClosest([]float32{1, 2}, 1); !errors.Is(err, errs.ErrNotTrained) {
		t.Errorf("PredictNClosest before fit: got %v, want ErrNotTrained", err)
	}
	if _, err := q.Labels(); !errors.Is(err, errs.ErrNotTrained) {
		t.Errorf("Labels before fit: got %v, want ErrNotTrained", err)
	}
}

func TestFitRejectsInsufficientData(t *testing.T) {
	q := New(10, 10, 1e-4, 0)
	if err := q.Fit(fourCorners()); !errors.Is(err, errs.ErrInsufficientData) {
		t.Fatalf("Fit with too few samples: got %v, want ErrInsufficientData", err)
	}
}

func TestFitRejectsInvalidParams(t *testing.T) {
	q := New(0, 10, 1e-4, 0)
	if err := q.Fit(fourCorners()); !errors.Is(err, errs.ErrInvalidParam) {
		t.Fatalf("Fit with k=0: got %v, want ErrInvalidParam", err)
	}
}

func TestFitRejectsRaggedRows(t *testing.T) {
	q := New(2, 10, 1e-4, 0)
	ragged := [][]float32{{1, 2}, {1, 2, 3}}
	if err := q.Fit(ragged); !errors.Is(err, errs.ErrInvalidShape) {
		t.Fatalf("Fit with ragged rows: got %v, want ErrInvalidShape", err)
	}
}

// Property 10 — k-means++ seeding statistics: 4 well-separated Gaussians
// recover their true centers to within sigma.
func TestKMeansPlusPlusFourGaussians(t *testing.T) {
	const sigma = 0.2
	trueCenters := [][]float32{{2, 2}, {2, -2}, {-2, 2}, {-2, -2}}

	gen := rand.New(rand.NewSource(99))
	var data [][]float32
	for _, c := range trueCenters {
		for i := 0; i < 1000; i++ {
			data = append(data, []float32{
				c[0] + float32(gen.NormFloat64())*sigma,
				c[1] + float32(gen.NormFloat64())*sigma,
			})
		}
	}

	q := New(4, 50, 1e-4, 0)
	if err := q.Fit(data); err != nil {
		t.Fatalf("Fit: %v", err)
	}
	centroids, _ := q.Centroids()

	for _, tc := range trueCenters {
		best := math.Inf(1)
		for _, c := range centroids {
			dx := float64(c[0] - tc[0])
			dy := float64(c[1] - tc[1])
			d := math.Sqrt(dx*dx + dy*dy)
			if d < best {
				best = d
			}
		}
		if best > 10*sigma {
			t.Errorf("no recovered centroid within 10*sigma of true center %v (closest=%v)", tc, best)
		}
	}
}
