package chartdata

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is the class of caller errors returned by this package.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrLengthMismatch is returned by Zip when xs and ys differ in length.
	ErrLengthMismatch = fmt.Errorf("%w: coordinate arrays differ in length", ErrInvalidArgument)
)

// Pair is one point of a point series.
type Pair[X, Y any] struct {
	X X `json:"x"`
	Y Y `json:"y"`
}

// Zip pairs xs[i] with ys[i]. Both slices must have the same length; there is
// no truncation to the shorter one.
func Zip[X, Y any](xs []X, ys []Y) ([]Pair[X, Y], error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("%w (%d x values, %d y values)", ErrLengthMismatch, len(xs), len(ys))
	}
	pairs := make([]Pair[X, Y], len(xs))
	for i := range xs {
		pairs[i] = Pair[X, Y]{X: xs[i], Y: ys[i]}
	}
	return pairs, nil
}
