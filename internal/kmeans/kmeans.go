// Package kmeans implements the Lloyd k-means quantizer used both as the
// coarse partitioner and as each product-quantizer sub-quantizer: k-means++
// seeding, a single Lloyd initialization, a relative-shift tolerance, and a
// max-iteration cap, all over squared Euclidean distance.
//
// Grounded on the teacher's internal/index/ivfpq.Index.trainCoarseQuantizer/
// initializeCentroids/updateCentroids trio (xDarkicex/libravdb), generalized
// out of the IVF-PQ index into a standalone, reusable component so the same
// k-means machinery can serve both the coarse quantizer and each of the
// product quantizer's m sub-quantizers.
package kmeans

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/lborges/ivfadc/internal/errs"
	"github.com/lborges/ivfadc/internal/vecmath"
)

// Quantizer partitions D-dimensional vectors into K Voronoi cells.
type Quantizer struct {
	k       int
	maxIter int
	tol     float64
	rng     *rand.Rand

	trained   bool
	dim       int
	centroids [][]float32
	labels    []int
}

// New creates an untrained quantizer targeting k clusters, at most maxIter
// Lloyd iterations, relative-shift tolerance tol, seeded by seed. The
// constructor itself never fails; invalid k or maxIter surface as
// ErrInvalidParam from Fit instead, once there is data to report against.
func New(k, maxIter int, tol float64, seed int64) *Quantizer {
	return &Quantizer{
		k:       k,
		maxIter: maxIter,
		tol:     tol,
		rng:     rand.New(rand.NewSource(seed)),
	}
}

// K returns the configured cluster count.
func (q *Quantizer) K() int { return q.k }

// Fit trains the quantizer on X (N rows of dimension D). Requires N >= K and
// D >= 1. Populates centroids and per-row labels.
func (q *Quantizer) Fit(x [][]float32) error {
	if q.k <= 0 || q.maxIter <= 0 {
		return fmt.Errorf("kmeans: k=%d maxIter=%d: %w", q.k, q.maxIter, errs.ErrInvalidParam)
	}
	if len(x) == 0 {
		return fmt.Errorf("kmeans: empty training set: %w", errs.ErrInvalidShape)
	}
	dim := len(x[0])
	if dim == 0 {
		return fmt.Errorf("kmeans: zero-dimensional vectors: %w", errs.ErrInvalidShape)
	}
	for i, row := range x {
		if len(row) != dim {
			return fmt.Errorf("kmeans: row %d has dimension %d, want %d: %w", i, len(row), dim, errs.ErrInvalidShape)
		}
	}
	if len(x) < q.k {
		return fmt.Errorf("kmeans: %d samples for %d clusters: %w", len(x), q.k, errs.ErrInsufficientData)
	}

	q.dim = dim
	q.initializeCentroids(x)

	scale := vecmath.FrobeniusNormSquared(x) / float64(len(x))
	threshold := q.tol * scale

	labels := make([]int, len(x))
	for iter := 0; iter < q.maxIter; iter++ {
		q.assign(x, labels)
		movement := q.updateCentroids(x, labels)
		if movement < threshold {
			break
		}
	}
	// Ensure labels reflect the final centroid positions.
	q.assign(x, labels)

	q.labels = labels
	q.trained = true
	return nil
}

// initializeCentroids seeds q.centroids via k-means++: the first center is
// drawn uniformly, each subsequent center is drawn with probability
// proportional to its squared distance to the nearest already-chosen
// center.
func (q *Quantizer) initializeCentroids(x [][]float32) {
	q.centroids = make([][]float32, q.k)

	first := x[q.rng.Intn(len(x))]
	q.centroids[0] = append([]float32(nil), first...)

	minDist := make([]float64, len(x))
	for k := 1; k < q.k; k++ {
		var total float64
		for i, row := range x {
			d := float64(vecmath.SquaredL2(row, q.centroids[k-1]))
			if k == 1 || d < minDist[i] {
				minDist[i] = d
			}
			total += minDist[i]
		}

		target := q.rng.Float64() * total
		var cumulative float64
		chosen := len(x) - 1
		for i, d := range minDist {
			cumulative += d
			if cumulative >= target {
				chosen = i
				break
			}
		}
		q.centroids[k] = append([]float32(nil), x[chosen]...)
	}
}

// assign maps every row of x to the index of its nearest centroid, ties
// broken by lowest index, writing results into labels.
func (q *Quantizer) assign(x [][]float32, labels []int) {
	for i, row := range x {
		labels[i] = q.nearest(row)
	}
}

func (q *Quantizer) nearest(v []float32) int {
	best := 0
	bestDist := float32(math.Inf(1))
	for c, centroid := range q.centroids {
		d := vecmath.SquaredL2(v, centroid)
		if d < bestDist {
			bestDist = d
			best = c
		}
	}
	return best
}

// updateCentroids recomputes each centroid as the mean of its assigned rows,
// retaining the previous centroid for any cell that received no points, so
// that Lloyd iteration never has to reseed mid-run and stays deterministic
// (the teacher instead reseeds empty cells at random). Returns the total
// squared shift summed over all centroids.
func (q *Quantizer) updateCentroids(x [][]float32, labels []int) float64 {
	sums := make([][]float32, q.k)
	counts := make([]int, q.k)
	for k := range sums {
		sums[k] = make([]float32, q.dim)
	}

	for i, row := range x {
		c := labels[i]
		counts[c]++
		for d, v := range row {
			sums[c][d] += v
		}
	}

	var totalMovement float64
	for k := 0; k < q.k; k++ {
		if counts[k] == 0 {
			continue
		}
		newCentroid := sums[k]
		for d := range newCentroid {
			newCentroid[d] /= float32(counts[k])
		}
		totalMovement += float64(vecmath.SquaredL2(newCentroid, q.centroids[k]))
		q.centroids[k] = newCentroid
	}
	return totalMovement
}

// Centroids returns the K x D centroid table. Fails with ErrNotTrained
// before Fit.
func (q *Quantizer) Centroids() ([][]float32, error) {
	if !q.trained {
		return nil, errs.ErrNotTrained
	}
	return q.centroids, nil
}

// Labels returns the per-row cluster assignment produced by the most recent
// Fit call.
func (q *Quantizer) Labels() ([]int, error) {
	if !q.trained {
		return nil, errs.ErrNotTrained
	}
	return q.labels, nil
}

// Predict returns the index of the centroid nearest to x, ties broken by
// lowest index.
func (q *Quantizer) Predict(x []float32) (int, error) {
	if !q.trained {
		return 0, errs.ErrNotTrained
	}
	if len(x) != q.dim {
		return 0, fmt.Errorf("kmeans: vector has dimension %d, want %d: %w", len(x), q.dim, errs.ErrDimensionMismatch)
	}
	return q.nearest(x), nil
}

// PredictBatch applies Predict to every row of x.
func (q *Quantizer) PredictBatch(x [][]float32) ([]int, error) {
	if !q.trained {
		return nil, errs.ErrNotTrained
	}
	out := make([]int, len(x))
	for i, row := range x {
		label, err := q.Predict(row)
		if err != nil {
			return nil, err
		}
		out[i] = label
	}
	return out, nil
}

// PredictNClosest returns the indices of the n centroids nearest to x. The
// set equals the true top-n by squared distance; the order within the
// returned slice is unspecified (callers use it as an unordered probe set).
func (q *Quantizer) PredictNClosest(x []float32, n int) ([]int, error) {
	if !q.trained {
		return nil, errs.ErrNotTrained
	}
	if len(x) != q.dim {
		return nil, fmt.Errorf("kmeans: vector has dimension %d, want %d: %w", len(x), q.dim, errs.ErrDimensionMismatch)
	}
	if n <= 0 || n > q.k {
		return nil, fmt.Errorf("kmeans: n=%d outside [1,%d]: %w", n, q.k, errs.ErrInvalidParam)
	}

	type scored struct {
		idx  int
		dist float32
	}
	all := make([]scored, q.k)
	for c, centroid := range q.centroids {
		all[c] = scored{idx: c, dist: vecmath.SquaredL2(x, centroid)}
	}

	// Partial selection: n is small relative to k in practice (probe
	// counts), so a simple partial selection sort keeps this allocation-
	// free beyond the scratch slice above.
	for i := 0; i < n; i++ {
		minIdx := i
		for j := i + 1; j < len(all); j++ {
			if all[j].dist < all[minIdx].dist {
				minIdx = j
			}
		}
		all[i], all[minIdx] = all[minIdx], all[i]
	}

	out := make([]int, n)
	for i := 0; i < n; i++ {
		out[i] = all[i].idx
	}
	return out, nil
}

// Dim returns the trained data dimension.
func (q *Quantizer) Dim() int { return q.dim }

// IsTrained reports whether Fit has completed successfully.
func (q *Quantizer) IsTrained() bool { return q.trained }

// FromCentroids constructs an already-trained quantizer directly from a
// centroid table, bypassing Fit. Used by tests that wire a hand-picked
// codebook without running k-means.
func FromCentroids(centroids [][]float32) *Quantizer {
	dim := 0
	if len(centroids) > 0 {
		dim = len(centroids[0])
	}
	cp := make([][]float32, len(centroids))
	for i, c := range centroids {
		cp[i] = append([]float32(nil), c...)
	}
	return &Quantizer{
		k:         len(centroids),
		trained:   true,
		dim:       dim,
		centroids: cp,
	}
}
