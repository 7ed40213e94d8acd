package chartdata

import "math"

// Limits are the suggested bounds of a value axis.
type Limits struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// AxisLimits reduces field over every record of every group. Missing and NaN
// values are skipped; ok is false when no value was seen.
func AxisLimits[K comparable, S ~[]T, T Fielder](groups map[K]S, field string) (limits Limits, ok bool) {
	limits = Limits{Min: math.Inf(1), Max: math.Inf(-1)}
	for _, records := range groups {
		for _, r := range records {
			v, present := r.Field(field)
			if !present || math.IsNaN(v) {
				continue
			}
			limits.Min = math.Min(limits.Min, v)
			limits.Max = math.Max(limits.Max, v)
			ok = true
		}
	}
	if !ok {
		return Limits{}, false
	}
	return limits, true
}

// Values extracts field from each record, skipping records without it.
func Values[T Fielder](records []T, field string) []float64 {
	out := make([]float64, 0, len(records))
	for _, r := range records {
		if v, ok := r.Field(field); ok {
			out = append(out, v)
		}
	}
	return out
}
