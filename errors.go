package ivfadc

import "github.com/lborges/ivfadc/internal/errs"

// Sentinel errors re-exported from internal/errs so library consumers can
// use errors.Is against the public package without importing internal/errs
// directly.
var (
	ErrNotTrained        = errs.ErrNotTrained
	ErrAlreadyTrained    = errs.ErrAlreadyTrained
	ErrInvalidShape      = errs.ErrInvalidShape
	ErrDimensionMismatch = errs.ErrDimensionMismatch
	ErrInvalidParam      = errs.ErrInvalidParam
	ErrInsufficientData  = errs.ErrInsufficientData
	ErrMalformedFile     = errs.ErrMalformedFile
	ErrIoError           = errs.ErrIoError
)
