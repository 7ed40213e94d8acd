package chartdata

import (
	"math"
	"testing"
	"time"

	"cropdash/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func trh(ts time.Time, temp float64) models.Sample {
	s := models.Sample{Timestamp: models.NewTimestamp(ts)}
	s.Set(models.FieldTemperature, temp)
	return s
}

func TestMeanSeries(t *testing.T) {
	t0 := time.Date(2021, 6, 1, 10, 0, 0, 0, time.UTC)
	groups := models.GroupedSeries{
		"18": {trh(t0, 20), trh(t0.Add(10*time.Minute), 22)},
		"21": {trh(t0, 22), trh(t0.Add(5*time.Minute), 30)},
	}

	mean := MeanSeries(groups, []string{models.FieldTemperature}, MeanWindow)

	require.Len(t, mean, 3)
	got := Values(mean, models.FieldTemperature)
	// t0: (20+22)/2 = 21; t0+5: rolling over 21 and 30; t0+10: rolling over 30 and 22.
	assert.Equal(t, []float64{21, 25.5, 26}, got)
	assert.True(t, mean[0].Timestamp.Equal(t0))

	_, ok := mean[0].Field(models.FieldHumidity)
	assert.False(t, ok)
}

func TestDescribe(t *testing.T) {
	s, ok := Describe([]float64{1, 2, 3, 4, math.NaN()})
	require.True(t, ok)
	assert.Equal(t, 4.0, s.Count)
	assert.Equal(t, 2.5, s.Mean)
	require.NotNil(t, s.Std)
	assert.InDelta(t, 1.290994, *s.Std, 1e-6)
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 1.75, s.Q25)
	assert.Equal(t, 2.5, s.Q50)
	assert.Equal(t, 3.25, s.Q75)
	assert.Equal(t, 4.0, s.Max)

	s, ok = Describe([]float64{7})
	require.True(t, ok)
	assert.Nil(t, s.Std)

	_, ok = Describe(nil)
	assert.False(t, ok)
}
