// Package ivfpq implements the IVFADC index: a coarse k-means quantizer
// plus a product quantizer trained on residuals, composed into an inverted
// file with multi-probe asymmetric-distance search.
//
// Grounded on the teacher's internal/index/ivfpq.Index (xDarkicex/libravdb),
// which composes a coarse quantizer and internal/quant.Quantizer over
// Cluster buckets in the same shape. Generalized per three required
// behavior changes: (1) the product quantizer trains on residuals, not raw
// vectors, matching original_source/src/IVFADC.py::train; (2) insert
// eagerly encodes the coarse residual rather than storing a full vector
// plus a lazily-computed code; (3) Save/Load are a real encoding/gob
// round-trip, replacing the teacher's always-erroring placeholder stubs,
// grounded on _examples/other_examples/023a9c77_patrikhermansson-hann__
// pqivf-index.go.go's gob-based persistence.
package ivfpq

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"io"
	"sync"

	"github.com/lborges/ivfadc/internal/errs"
	"github.com/lborges/ivfadc/internal/kmeans"
	"github.com/lborges/ivfadc/internal/pq"
	"github.com/lborges/ivfadc/internal/topk"
	"github.com/lborges/ivfadc/internal/vecmath"
)

// Entry is one (id, code) pair stored in an inverted list.
type Entry struct {
	ID   uint64
	Code []int
}

// Config holds the constructor parameters for an IVFADC index.
type Config struct {
	// Probes is w, the number of coarse cells examined per query.
	Probes int

	// CoarseK, CoarseMaxIter, CoarseSeed parameterize the coarse
	// quantizer (component B).
	CoarseK       int
	CoarseMaxIter int
	CoarseSeed    int64

	// M, Kstar, PQMaxIter, PQSeed parameterize the product quantizer
	// (component C), trained on residuals.
	M         int
	Kstar     int
	PQMaxIter int
	PQSeed    int64
}

// Index composes a coarse quantizer and a product quantizer into an
// inverted file with asymmetric-distance search.
//
// The core is single-threaded per the reader/writer contract: Insert must
// be serialized against every other operation by the caller; Search calls
// may run concurrently with one another once trained. mutex here guards
// only the trained flag and the IVF's slice headers against that
// documented contract — it does not make concurrent training or
// concurrent inserts safe, which remain undefined.
type Index struct {
	cfg Config

	mutex   sync.RWMutex
	trained bool
	dim     int

	coarse *kmeans.Quantizer
	prod   *pq.Quantizer
	ivf    [][]Entry
}

// New constructs an untrained IVFADC index. Fails with ErrInvalidParam if
// w is outside [1, K_coarse] once K_coarse is known — since K_coarse is a
// constructor argument here, the check happens immediately.
func New(cfg Config) (*Index, error) {
	if cfg.CoarseK <= 0 {
		return nil, fmt.Errorf("ivfpq: CoarseK=%d: %w", cfg.CoarseK, errs.ErrInvalidParam)
	}
	if cfg.Probes < 1 || cfg.Probes > cfg.CoarseK {
		return nil, fmt.Errorf("ivfpq: probes w=%d outside [1,%d]: %w", cfg.Probes, cfg.CoarseK, errs.ErrInvalidParam)
	}

	return &Index{
		cfg:    cfg,
		coarse: kmeans.New(cfg.CoarseK, cfg.CoarseMaxIter, 1e-4, cfg.CoarseSeed),
	}, nil
}

// IsTrained reports whether Train has completed successfully.
func (idx *Index) IsTrained() bool {
	idx.mutex.RLock()
	defer idx.mutex.RUnlock()
	return idx.trained
}

// Dim returns the data dimension fixed at training time.
func (idx *Index) Dim() int {
	idx.mutex.RLock()
	defer idx.mutex.RUnlock()
	return idx.dim
}

// Train fits the coarse quantizer on x, computes residuals, fits the
// product quantizer on those residuals, and allocates K_coarse empty
// inverted lists. Re-training an already-trained index is rejected.
func (idx *Index) Train(x [][]float32) error {
	idx.mutex.Lock()
	defer idx.mutex.Unlock()

	if idx.trained {
		return errs.ErrAlreadyTrained
	}
	if len(x) == 0 {
		return fmt.Errorf("ivfpq: empty training set: %w", errs.ErrInvalidShape)
	}
	dim := len(x[0])
	for i, row := range x {
		if len(row) != dim {
			return fmt.Errorf("ivfpq: row %d has dimension %d, want %d: %w", i, len(row), dim, errs.ErrInvalidShape)
		}
	}

	if err := idx.coarse.Fit(x); err != nil {
		return fmt.Errorf("ivfpq: training coarse quantizer: %w", err)
	}
	coarseCentroids, err := idx.coarse.Centroids()
	if err != nil {
		return fmt.Errorf("ivfpq: reading coarse centroids: %w", err)
	}
	labels, err := idx.coarse.Labels()
	if err != nil {
		return fmt.Errorf("ivfpq: reading coarse labels: %w", err)
	}

	residuals := make([][]float32, len(x))
	for i, row := range x {
		r := make([]float32, dim)
		vecmath.Sub(r, row, coarseCentroids[labels[i]])
		residuals[i] = r
	}

	prod := pq.New(idx.cfg.M, idx.cfg.Kstar, idx.cfg.PQMaxIter, idx.cfg.PQSeed, false)
	if err := prod.Fit(residuals); err != nil {
		return fmt.Errorf("ivfpq: training product quantizer: %w", err)
	}

	idx.dim = dim
	idx.prod = prod
	idx.ivf = make([][]Entry, idx.cfg.CoarseK)
	idx.trained = true
	return nil
}

// Insert assigns x to its nearest coarse cell, encodes its residual, and
// appends (id, code) to that cell's list. No id uniqueness check.
func (idx *Index) Insert(id uint64, x []float32) error {
	idx.mutex.Lock()
	defer idx.mutex.Unlock()

	if !idx.trained {
		return errs.ErrNotTrained
	}
	if len(x) != idx.dim {
		return fmt.Errorf("ivfpq: vector has dimension %d, want %d: %w", len(x), idx.dim, errs.ErrDimensionMismatch)
	}

	c, err := idx.coarse.Predict(x)
	if err != nil {
		return fmt.Errorf("ivfpq: assigning coarse cell: %w", err)
	}
	coarseCentroids, err := idx.coarse.Centroids()
	if err != nil {
		return fmt.Errorf("ivfpq: reading coarse centroids: %w", err)
	}

	r := make([]float32, idx.dim)
	vecmath.Sub(r, x, coarseCentroids[c])

	code, err := idx.prod.Encode(r)
	if err != nil {
		return fmt.Errorf("ivfpq: encoding residual: %w", err)
	}

	idx.ivf[c] = append(idx.ivf[c], Entry{ID: id, Code: code})
	return nil
}

// Search returns up to k ids nearest to q by asymmetric distance, nearest
// first. Probes the w nearest coarse cells, computes per-probe distance
// tables once, and keeps the k best candidates in a bounded selector.
func (idx *Index) Search(q []float32, k int) ([]uint64, error) {
	idx.mutex.RLock()
	defer idx.mutex.RUnlock()

	if !idx.trained {
		return nil, errs.ErrNotTrained
	}
	if len(q) != idx.dim {
		return nil, fmt.Errorf("ivfpq: query has dimension %d, want %d: %w", len(q), idx.dim, errs.ErrDimensionMismatch)
	}
	if k < 1 {
		return nil, fmt.Errorf("ivfpq: k=%d: %w", k, errs.ErrInvalidParam)
	}

	probes, err := idx.coarse.PredictNClosest(q, idx.cfg.Probes)
	if err != nil {
		return nil, fmt.Errorf("ivfpq: selecting probe cells: %w", err)
	}
	coarseCentroids, err := idx.coarse.Centroids()
	if err != nil {
		return nil, fmt.Errorf("ivfpq: reading coarse centroids: %w", err)
	}

	selector := topk.New(k)
	r := make([]float32, idx.dim)
	for _, c := range probes {
		vecmath.Sub(r, q, coarseCentroids[c])
		tables, err := idx.prod.DistanceTables(r)
		if err != nil {
			return nil, fmt.Errorf("ivfpq: computing distance tables: %w", err)
		}

		for _, entry := range idx.ivf[c] {
			var d float32
			for j, code := range entry.Code {
				d += tables[j][code]
			}
			selector.Add(topk.Candidate{Priority: -float64(d), ID: entry.ID})
		}
	}

	drained := selector.DrainDescending()
	ids := make([]uint64, len(drained))
	for i, cand := range drained {
		ids[i] = cand.ID
	}
	return ids, nil
}

// snapshot is the gob-serializable form of a trained Index.
type snapshot struct {
	Cfg             Config
	Dim             int
	CoarseCentroids [][]float32
	PQCodebook      [][][]float32
	IVF             [][]Entry
}

// Save writes a gob-encoded snapshot of the trained index to w: the
// constructor parameters, coarse centroids, product-quantizer codebook,
// and every inverted list's contents.
func (idx *Index) Save(w io.Writer) error {
	idx.mutex.RLock()
	defer idx.mutex.RUnlock()

	if !idx.trained {
		return errs.ErrNotTrained
	}

	coarseCentroids, err := idx.coarse.Centroids()
	if err != nil {
		return fmt.Errorf("ivfpq: reading coarse centroids: %w", err)
	}
	codebook, err := idx.prod.Centroids()
	if err != nil {
		return fmt.Errorf("ivfpq: reading product codebook: %w", err)
	}

	snap := snapshot{
		Cfg:             idx.cfg,
		Dim:             idx.dim,
		CoarseCentroids: coarseCentroids,
		PQCodebook:      codebook,
		IVF:             idx.ivf,
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&snap); err != nil {
		return fmt.Errorf("ivfpq: encoding snapshot: %w", errs.ErrIoError)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("ivfpq: writing snapshot: %w", errs.ErrIoError)
	}
	return nil
}

// Load reconstructs a trained Index from a snapshot written by Save,
// directly wiring the decoded coarse centroids and PQ codebook rather than
// re-running Lloyd's algorithm.
func Load(r io.Reader) (*Index, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("ivfpq: reading snapshot: %w", errs.ErrIoError)
	}

	var snap snapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&snap); err != nil {
		return nil, fmt.Errorf("ivfpq: decoding snapshot: %w", errs.ErrIoError)
	}

	return fromComponents(snap.Cfg, snap.Dim, kmeans.FromCentroids(snap.CoarseCentroids), pq.FromCodebook(snap.PQCodebook), snap.IVF), nil
}

// fromComponents builds an already-trained Index directly from its
// components, bypassing Train. Used by Load and by tests that wire a
// hand-picked coarse quantizer and product codebook without running
// k-means.
func fromComponents(cfg Config, dim int, coarse *kmeans.Quantizer, prod *pq.Quantizer, ivf [][]Entry) *Index {
	if ivf == nil {
		ivf = make([][]Entry, cfg.CoarseK)
	}
	return &Index{
		cfg:     cfg,
		dim:     dim,
		coarse:  coarse,
		prod:    prod,
		ivf:     ivf,
		trained: true,
	}
}
