// Package ivfadc implements an IVFADC (inverted file with asymmetric
// distance computation) approximate nearest-neighbor index: a coarse
// k-means quantizer partitions the vector space, a product quantizer
// compresses residuals, and multi-probe search ranks candidates by a
// table-lookup asymmetric distance.
//
// Grounded on the teacher's top-level libravdb package (xDarkicex/libravdb)
// for the public facade shape (New/Train/Insert/Search plus functional
// options), generalized onto internal/index/ivfpq.Index.
package ivfadc

import (
	"fmt"
	"io"

	"github.com/lborges/ivfadc/internal/index/ivfpq"
)

// Index is the public IVFADC facade wrapping internal/index/ivfpq.Index.
type Index struct {
	inner *ivfpq.Index
}

// New builds an untrained Index from zero or more Options applied over a
// zero-valued Config — callers are expected to always pass WithProbes,
// WithCoarseQuantizer and WithProductQuantizer; a zero probe count or
// coarse cluster count fails with ErrInvalidParam.
func New(opts ...Option) (*Index, error) {
	var cfg Config
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	inner, err := ivfpq.New(ivfpq.Config{
		Probes:        cfg.Probes,
		CoarseK:       cfg.CoarseK,
		CoarseMaxIter: cfg.CoarseMaxIter,
		CoarseSeed:    cfg.CoarseSeed,
		M:             cfg.M,
		Kstar:         cfg.Kstar,
		PQMaxIter:     cfg.PQMaxIter,
		PQSeed:        cfg.PQSeed,
	})
	if err != nil {
		return nil, err
	}
	return &Index{inner: inner}, nil
}

// Train fits the coarse and product quantizers on vectors. One-shot;
// calling Train twice returns ErrAlreadyTrained.
func (idx *Index) Train(vectors [][]float32) error {
	return idx.inner.Train(vectors)
}

// Insert assigns id to x's nearest coarse cell and appends its encoded
// residual to that cell's inverted list.
func (idx *Index) Insert(id uint64, x []float32) error {
	return idx.inner.Insert(id, x)
}

// Search returns up to k ids nearest to q by asymmetric distance, nearest
// first.
func (idx *Index) Search(q []float32, k int) ([]uint64, error) {
	return idx.inner.Search(q, k)
}

// IsTrained reports whether Train has completed successfully.
func (idx *Index) IsTrained() bool {
	return idx.inner.IsTrained()
}

// Dim returns the data dimension fixed at training time.
func (idx *Index) Dim() int {
	return idx.inner.Dim()
}

// Save writes a gob-encoded snapshot of the trained index to w.
func (idx *Index) Save(w io.Writer) error {
	return idx.inner.Save(w)
}

// Load reconstructs a trained Index from a snapshot written by Save.
func Load(r io.Reader) (*Index, error) {
	inner, err := ivfpq.Load(r)
	if err != nil {
		return nil, fmt.Errorf("ivfadc: loading snapshot: %w", err)
	}
	return &Index{inner: inner}, nil
}
