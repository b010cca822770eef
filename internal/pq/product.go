// Package pq implements the product quantizer: it splits a vector into m
// equal contiguous sub-spaces, trains one Lloyd k-means per sub-space, and
// encodes a vector as an m-tuple of centroid indices.
//
// Grounded on the teacher's internal/quant.ProductQuantizer
// (xDarkicex/libravdb) and on original_source/src/quantizers/
// productQuantizer.py for the exact slicing/stacking semantics. Diverges
// from both in two ways: (1) each sub-space is trained by the standalone
// internal/kmeans.Quantizer rather than an inlined k-means loop, and (2)
// distance tables and asymmetric distance store and sum squared
// per-subspace distances, never taking a final square root, since only the
// relative ordering of candidates matters for top-k search.
package pq

import (
	"fmt"
	"math/bits"

	"github.com/lborges/ivfadc/internal/errs"
	"github.com/lborges/ivfadc/internal/kmeans"
	"github.com/lborges/ivfadc/internal/vecmath"
)

// Quantizer is a product quantizer over m sub-spaces of Kstar centroids
// each.
type Quantizer struct {
	m       int
	kstar   int
	maxIter int
	seed    int64

	keepSubquantizers bool
	subquantizers     []*kmeans.Quantizer

	trained   bool
	dim       int
	subDim    int
	centroids [][][]float32 // [subspace][centroid][subDim]
}

// New creates an untrained product quantizer: m sub-spaces, kstar centroids
// per sub-space (must be a power of two, checked at Fit time since the
// dimension split is only known once X arrives), at most maxIter Lloyd
// iterations per sub-quantizer, all sharing seed (sub-quantizer seeds are
// not diversified). If keepSubquantizers is true the
// trained internal/kmeans.Quantizer instances are retained after Fit
// instead of being discarded once their centroids are stacked into the
// codebook.
func New(m, kstar, maxIter int, seed int64, keepSubquantizers bool) *Quantizer {
	return &Quantizer{
		m:                 m,
		kstar:             kstar,
		maxIter:           maxIter,
		seed:              seed,
		keepSubquantizers: keepSubquantizers,
	}
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// Fit trains m independent k-means quantizers, one per contiguous slice of
// width D/m, and stacks their centroids into the (m, Kstar, D/m) codebook.
func (pq *Quantizer) Fit(x [][]float32) error {
	if len(x) == 0 {
		return fmt.Errorf("pq: empty training set: %w", errs.ErrInvalidShape)
	}
	dim := len(x[0])
	if pq.m <= 0 || dim%pq.m != 0 {
		return fmt.Errorf("pq: dimension %d not divisible by m=%d: %w", dim, pq.m, errs.ErrDimensionMismatch)
	}
	if !isPowerOfTwo(pq.kstar) {
		return fmt.Errorf("pq: Kstar=%d is not a power of two: %w", pq.kstar, errs.ErrInvalidParam)
	}

	pq.dim = dim
	pq.subDim = dim / pq.m
	pq.centroids = make([][][]float32, pq.m)
	subquantizers := make([]*kmeans.Quantizer, pq.m)

	for s := 0; s < pq.m; s++ {
		start := s * pq.subDim
		end := start + pq.subDim
		slice := make([][]float32, len(x))
		for i, row := range x {
			if len(row) != dim {
				return fmt.Errorf("pq: row %d has dimension %d, want %d: %w", i, len(row), dim, errs.ErrInvalidShape)
			}
			slice[i] = row[start:end]
		}

		sub := kmeans.New(pq.kstar, pq.maxIter, 1e-4, pq.seed)
		if err := sub.Fit(slice); err != nil {
			return fmt.Errorf("pq: training sub-quantizer %d: %w", s, err)
		}
		centroids, err := sub.Centroids()
		if err != nil {
			return err
		}
		pq.centroids[s] = centroids
		subquantizers[s] = sub
	}

	if pq.keepSubquantizers {
		pq.subquantizers = subquantizers
	}
	pq.trained = true
	return nil
}

// Centroids returns the (m, Kstar, D/m) codebook. Fails with ErrNotTrained
// before Fit.
func (pq *Quantizer) Centroids() ([][][]float32, error) {
	if !pq.trained {
		return nil, errs.ErrNotTrained
	}
	return pq.centroids, nil
}

// Encode maps x to an m-length product code, one nearest-centroid index per
// sub-space, ties broken by lowest index.
func (pq *Quantizer) Encode(x []float32) ([]int, error) {
	if !pq.trained {
		return nil, errs.ErrNotTrained
	}
	if len(x) != pq.dim {
		return nil, fmt.Errorf("pq: vector has dimension %d, want %d: %w", len(x), pq.dim, errs.ErrDimensionMismatch)
	}

	code := make([]int, pq.m)
	for s := 0; s < pq.m; s++ {
		start := s * pq.subDim
		sub := x[start : start+pq.subDim]
		code[s] = nearestCentroid(sub, pq.centroids[s])
	}
	return code, nil
}

// EncodeBatch applies Encode to every row of x, returning an N x m code
// matrix.
func (pq *Quantizer) EncodeBatch(x [][]float32) ([][]int, error) {
	if !pq.trained {
		return nil, errs.ErrNotTrained
	}
	out := make([][]int, len(x))
	for i, row := range x {
		code, err := pq.Encode(row)
		if err != nil {
			return nil, err
		}
		out[i] = code
	}
	return out, nil
}

// DistanceTables computes the (m, Kstar) table of squared Euclidean
// distances between each slice of x and every centroid of the
// corresponding sub-codebook — precomputed once per query (or, in IVFADC,
// once per probed coarse cell) so the search loop never recomputes a
// sub-distance per candidate entry.
func (pq *Quantizer) DistanceTables(x []float32) ([][]float32, error) {
	if !pq.trained {
		return nil, errs.ErrNotTrained
	}
	if len(x) != pq.dim {
		return nil, fmt.Errorf("pq: vector has dimension %d, want %d: %w", len(x), pq.dim, errs.ErrDimensionMismatch)
	}

	tables := make([][]float32, pq.m)
	for s := 0; s < pq.m; s++ {
		start := s * pq.subDim
		sub := x[start : start+pq.subDim]
		table := make([]float32, len(pq.centroids[s]))
		for c, centroid := range pq.centroids[s] {
			table[c] = vecmath.SquaredL2(sub, centroid)
		}
		tables[s] = table
	}
	return tables, nil
}

// CodeBitLength returns m * ceil(log2(Kstar)), the reported bit length of
// one product code (not a constraint on the in-memory []int representation).
func (pq *Quantizer) CodeBitLength() int {
	if pq.kstar <= 1 {
		return 0
	}
	return pq.m * bits.Len(uint(pq.kstar-1))
}

// Dim returns the trained data dimension.
func (pq *Quantizer) Dim() int { return pq.dim }

// SubDim returns D/m, the width of one sub-space.
func (pq *Quantizer) SubDim() int { return pq.subDim }

// M returns the number of sub-quantizers.
func (pq *Quantizer) M() int { return pq.m }

// Kstar returns the centroid count per sub-quantizer.
func (pq *Quantizer) Kstar() int { return pq.kstar }

// IsTrained reports whether Fit has completed successfully.
func (pq *Quantizer) IsTrained() bool { return pq.trained }

func nearestCentroid(v []float32, centroids [][]float32) int {
	best := 0
	bestDist := vecmath.SquaredL2(v, centroids[0])
	for c := 1; c < len(centroids); c++ {
		d := vecmath.SquaredL2(v, centroids[c])
		if d < bestDist {
			bestDist = d
			best = c
		}
	}
	return best
}

// FromCodebook constructs an already-trained product quantizer directly
// from a hand-wired (m, Kstar, D/m) codebook, bypassing Fit. Used by tests
// that need a specific codebook without running k-means.
func FromCodebook(codebook [][][]float32) *Quantizer {
	m := len(codebook)
	kstar := 0
	subDim := 0
	if m > 0 {
		kstar = len(codebook[0])
		if kstar > 0 {
			subDim = len(codebook[0][0])
		}
	}
	return &Quantizer{
		m:         m,
		kstar:     kstar,
		subDim:    subDim,
		dim:       m * subDim,
		centroids: codebook,
		trained:   true,
	}
}
