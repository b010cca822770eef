// Package errs defines the sentinel error taxonomy shared by every layer of
// the index (kmeans, pq, ivfpq, dataset) so that callers can use errors.Is
// regardless of which layer detected the failure. The root package re-
// exports these under the same names for library consumers.
package errs

import "errors"

var (
	// ErrNotTrained is returned when an operation that requires a trained
	// model (predict, encode, insert, search, centroids) is called before
	// Fit/Train.
	ErrNotTrained = errors.New("ivfadc: not trained")

	// ErrAlreadyTrained is returned by a second Train call on an index that
	// already completed training once. Re-training is not supported.
	ErrAlreadyTrained = errors.New("ivfadc: already trained")

	// ErrInvalidShape is returned when an input matrix is not 2-D, or a
	// vector is given where a matrix was expected.
	ErrInvalidShape = errors.New("ivfadc: invalid input shape")

	// ErrDimensionMismatch is returned when a vector's length does not
	// match the dimension fixed at training time, or when D is not evenly
	// divisible by the number of product-quantizer subspaces.
	ErrDimensionMismatch = errors.New("ivfadc: dimension mismatch")

	// ErrInvalidParam is returned for invalid constructor parameters: K <=
	// 0, maxIter <= 0, a sub-quantizer centroid count that is not a power
	// of two, w outside [1, nClusters], or k <= 0 at search time.
	ErrInvalidParam = errors.New("ivfadc: invalid parameter")

	// ErrInsufficientData is returned when fewer training samples than
	// clusters are supplied to Fit.
	ErrInsufficientData = errors.New("ivfadc: insufficient training data")

	// ErrMalformedFile is returned by dataset readers, never by the core.
	ErrMalformedFile = errors.New("ivfadc: malformed dataset file")

	// ErrIoError is returned by Save/Load on a read/write/codec failure.
	ErrIoError = errors.New("ivfadc: snapshot I/O error")
)
