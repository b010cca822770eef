package ivfadc

// Config holds the constructor parameters for an IVFADC index: the number
// of coarse cells probed per query (w), the coarse quantizer's parameters,
// and the product quantizer's parameters. Built via New with functional
// Options, grounded on libravdb/types.go's plain configuration struct
// paired with options.go.
type Config struct {
	Probes int

	CoarseK       int
	CoarseMaxIter int
	CoarseSeed    int64

	M         int
	Kstar     int
	PQMaxIter int
	PQSeed    int64
}

// DefaultConfig returns reasonable defaults for an index trained on
// dimension-dim vectors: 256 coarse cells, 8 probes, and a product
// quantizer with 256 centroids per sub-space whose sub-space count M is
// the largest of 8, 4, 2 and 1 that divides dim evenly.
func DefaultConfig(dim int) Config {
	m := 8
	for m > 1 && dim%m != 0 {
		m /= 2
	}
	return Config{
		Probes:        8,
		CoarseK:       256,
		CoarseMaxIter: 25,
		CoarseSeed:    0,
		M:             m,
		Kstar:         256,
		PQMaxIter:     25,
		PQSeed:        0,
	}
}
