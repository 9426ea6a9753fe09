package store

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidArgument is returned for an empty id, an empty vector or a non-positive k.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrDimensionMismatch is matched by every *DimensionMismatchError.
	ErrDimensionMismatch = errors.New("dimension mismatch")
	// ErrNotFound is returned by Fetch when no record exists for the id.
	ErrNotFound = errors.New("vector not found")
)

// DimensionMismatchError reports a vector whose length disagrees with the
// dimension a shard locked in on its first insert.
type DimensionMismatchError struct {
	Expected int
	Actual   int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// Is makes errors.Is(err, ErrDimensionMismatch) true.
func (e *DimensionMismatchError) Is(target error) bool {
	return target == ErrDimensionMismatch
}

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// validateVector rejects empty vectors and non-finite components. NaN and Inf
// make every similarity against the vector undefined.
func validateVector(what string, v []float32) error {
	if len(v) == 0 {
		return invalidArgument("%s cannot be empty", what)
	}
	for i, x := range v {
		if math.IsNaN(float64(x)) || math.IsInf(float64(x), 0) {
			return invalidArgument("%s component %d is not finite", what, i)
		}
	}
	return nil
}
