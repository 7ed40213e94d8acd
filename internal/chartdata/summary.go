package chartdata

import (
	"math"
	"sort"
)

// Summary holds descriptive statistics of one field of a series.
type Summary struct {
	Count float64  `json:"count"`
	Mean  float64  `json:"mean"`
	Std   *float64 `json:"std"` // nil for a single value
	Min   float64  `json:"min"`
	Q25   float64  `json:"25%"`
	Q50   float64  `json:"50%"`
	Q75   float64  `json:"75%"`
	Max   float64  `json:"max"`
}

// Describe computes count, mean, sample standard deviation, extremes and
// linearly interpolated quartiles. NaN values are ignored. ok is false for no data.
func Describe(values []float64) (Summary, bool) {
	clean := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			clean = append(clean, v)
		}
	}
	if len(clean) == 0 {
		return Summary{}, false
	}
	sort.Float64s(clean)

	n := float64(len(clean))
	var sum float64
	for _, v := range clean {
		sum += v
	}
	mean := sum / n

	var std *float64
	if len(clean) > 1 {
		var sq float64
		for _, v := range clean {
			sq += (v - mean) * (v - mean)
		}
		sd := math.Sqrt(sq / (n - 1))
		std = &sd
	}

	return Summary{
		Count: n,
		Mean:  mean,
		Std:   std,
		Min:   clean[0],
		Q25:   quantile(clean, 0.25),
		Q50:   quantile(clean, 0.5),
		Q75:   quantile(clean, 0.75),
		Max:   clean[len(clean)-1],
	}, true
}

func quantile(sorted []float64, q float64) float64 {
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	return sorted[lo] + (sorted[hi]-sorted[lo])*(pos-float64(lo))
}
