package chartdata

import (
	"fmt"
	"math"
)

// BinLabel formats the half-open interval (lo, hi] the way the backend labels bins.
func BinLabel(lo, hi float64) string {
	return fmt.Sprintf("(%.1f, %.1f]", lo, hi)
}

// BinCounts counts the values of field in records per interval (edges[i], edges[i+1]].
// It needs at least two ascending edges. Values outside every interval are not counted.
func BinCounts[T Fielder](records []T, field string, edges []float64) ([]string, []float64, error) {
	if len(edges) < 2 {
		return nil, nil, fmt.Errorf("%w: need at least two bin edges, got %d", ErrInvalidArgument, len(edges))
	}
	for i := 1; i < len(edges); i++ {
		if edges[i] <= edges[i-1] {
			return nil, nil, fmt.Errorf("%w: bin edges must ascend (%v)", ErrInvalidArgument, edges)
		}
	}
	labels := make([]string, len(edges)-1)
	counts := make([]float64, len(edges)-1)
	for i := range labels {
		labels[i] = BinLabel(edges[i], edges[i+1])
	}
	for _, r := range records {
		v, ok := r.Field(field)
		if !ok || math.IsNaN(v) {
			continue
		}
		for i := range counts {
			if v > edges[i] && v <= edges[i+1] {
				counts[i]++
				break
			}
		}
	}
	return labels, counts, nil
}
