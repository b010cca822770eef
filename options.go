package ivfadc

import "fmt"

// Option configures a Config before New builds an Index, following the
// functional-options pattern grounded on libravdb/options.go's
// Option func(*Config) error.
type Option func(*Config) error

// WithProbes sets w, the number of coarse cells examined per query.
func WithProbes(w int) Option {
	return func(c *Config) error {
		if w <= 0 {
			return fmt.Errorf("ivfadc: probes must be positive: %w", ErrInvalidParam)
		}
		c.Probes = w
		return nil
	}
}

// WithCoarseQuantizer sets the coarse quantizer's cluster count, max Lloyd
// iterations, and random seed.
func WithCoarseQuantizer(nClusters, maxIter int, seed int64) Option {
	return func(c *Config) error {
		if nClusters <= 0 || maxIter <= 0 {
			return fmt.Errorf("ivfadc: coarse quantizer parameters must be positive: %w", ErrInvalidParam)
		}
		c.CoarseK = nClusters
		c.CoarseMaxIter = maxIter
		c.CoarseSeed = seed
		return nil
	}
}

// WithProductQuantizer sets the product quantizer's sub-space count,
// per-subspace centroid count (must end up a power of two, checked at
// Train time), max Lloyd iterations, and random seed.
func WithProductQuantizer(m, kstar, maxIter int, seed int64) Option {
	return func(c *Config) error {
		if m <= 0 || kstar <= 0 || maxIter <= 0 {
			return fmt.Errorf("ivfadc: product quantizer parameters must be positive: %w", ErrInvalidParam)
		}
		c.M = m
		c.Kstar = kstar
		c.PQMaxIter = maxIter
		c.PQSeed = seed
		return nil
	}
}
