package chartdata

import (
	"cmp"
	"math"
	"slices"
)

// Fielder exposes numeric fields by name.
type Fielder interface {
	Field(name string) (float64, bool)
}

// SortByNumeric stably sorts records in place, ascending by the named field.
// Records missing the field, or holding NaN, sort before every number.
func SortByNumeric[T Fielder](records []T, field string) {
	slices.SortStableFunc(records, func(a, b T) int {
		return cmp.Compare(numericKey(a, field), numericKey(b, field))
	})
}

func numericKey[T Fielder](r T, field string) float64 {
	v, ok := r.Field(field)
	if !ok {
		return math.NaN()
	}
	return v
}
