package chartdata

import (
	"sort"
	"time"

	"cropdash/internal/models"
)

// MeanWindow is the rolling window applied to the cross-sensor mean. Sensors
// report every ten minutes but out of phase with each other.
const MeanWindow = 10 * time.Minute

// MeanSeries averages fields across all groups per timestamp, then smooths each
// field with a trailing rolling mean over window, covering (t-window, t].
func MeanSeries(groups models.GroupedSeries, fields []string, window time.Duration) models.Series {
	type acc struct {
		sum   map[string]float64
		count map[string]int
	}
	byTime := map[time.Time]*acc{}
	for _, series := range groups {
		for _, s := range series {
			a, ok := byTime[s.Timestamp.Time]
			if !ok {
				a = &acc{sum: map[string]float64{}, count: map[string]int{}}
				byTime[s.Timestamp.Time] = a
			}
			for _, f := range fields {
				if v, ok := s.Field(f); ok {
					a.sum[f] += v
					a.count[f]++
				}
			}
		}
	}

	times := make([]time.Time, 0, len(byTime))
	for ts := range byTime {
		times = append(times, ts)
	}
	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })

	means := make(models.Series, len(times))
	for i, ts := range times {
		means[i].Timestamp = models.NewTimestamp(ts)
		a := byTime[ts]
		for _, f := range fields {
			if a.count[f] > 0 {
				means[i].Set(f, a.sum[f]/float64(a.count[f]))
			}
		}
	}

	out := make(models.Series, len(means))
	for i := range means {
		out[i].Timestamp = means[i].Timestamp
		for _, f := range fields {
			var sum float64
			var n int
			for j := i; j >= 0 && means[i].Timestamp.Sub(means[j].Timestamp.Time) < window; j-- {
				if v, ok := means[j].Field(f); ok {
					sum += v
					n++
				}
			}
			if n > 0 {
				out[i].Set(f, sum/float64(n))
			}
		}
	}
	return out
}
