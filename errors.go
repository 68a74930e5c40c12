package descgo

import (
	"errors"
	"fmt"
)

var (
	// ErrTargetDimRequired is returned when no target dimensionality is configured.
	ErrTargetDimRequired = errors.New("target dimensionality must be positive")
	// ErrOutputDirRequired is returned when no output directory is configured.
	ErrOutputDirRequired = errors.New("output directory must be set")
)

// ErrDimensionExceedsColumns indicates a target dimensionality larger
// than the number of descriptors surviving preprocessing.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrDimensionExceedsColumns struct {
	TargetDim uint
	Columns   int
	cause     error
}

func (e *ErrDimensionExceedsColumns) Error() string {
	return fmt.Sprintf("target dimensionality %d exceeds %d surviving descriptors", e.TargetDim, e.Columns)
}

func (e *ErrDimensionExceedsColumns) Unwrap() error { return e.cause }
