package chartdata

import (
	"math"
	"testing"
	"time"

	"cropdash/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rec is a loosely shaped record keyed by field name.
type rec struct {
	tag    string
	fields map[string]float64
}

func (r rec) Field(name string) (float64, bool) {
	v, ok := r.fields[name]
	return v, ok
}

func r(tag string, kv ...any) rec {
	out := rec{tag: tag, fields: map[string]float64{}}
	for i := 0; i+1 < len(kv); i += 2 {
		out.fields[kv[i].(string)] = kv[i+1].(float64)
	}
	return out
}

func tags(records []rec) []string {
	out := make([]string, len(records))
	for i, rc := range records {
		out[i] = rc.tag
	}
	return out
}

func TestZip(t *testing.T) {
	t1 := time.Date(2021, 6, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)

	pairs, err := Zip([]time.Time{t1, t2}, []float64{5, 7})
	require.NoError(t, err)
	assert.Equal(t, []Pair[time.Time, float64]{{X: t1, Y: 5}, {X: t2, Y: 7}}, pairs)
}

func TestZipPreservesIndexAndLength(t *testing.T) {
	xs := []float64{3, 1, 4, 1, 5, 9, 2, 6}
	ys := []float64{2, 7, 1, 8, 2, 8, 1, 8}

	pairs, err := Zip(xs, ys)
	require.NoError(t, err)
	require.Len(t, pairs, len(xs))
	for i := range xs {
		assert.Equal(t, xs[i], pairs[i].X)
		assert.Equal(t, ys[i], pairs[i].Y)
	}
}

func TestZipEmpty(t *testing.T) {
	pairs, err := Zip([]int{}, []int{})
	require.NoError(t, err)
	assert.Empty(t, pairs)
}

func TestZipLengthMismatch(t *testing.T) {
	_, err := Zip([]int{1, 2, 3}, []int{1})
	assert.ErrorIs(t, err, ErrLengthMismatch)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestSortByNumeric(t *testing.T) {
	records := []rec{r("c", "i", 3.0), r("a", "i", 1.0), r("b", "i", 2.0)}

	SortByNumeric(records, "i")

	assert.Equal(t, []string{"a", "b", "c"}, tags(records))
}

func TestSortByNumericIsStable(t *testing.T) {
	records := []rec{
		r("x1", "i", 2.0), r("y1", "i", 1.0), r("x2", "i", 2.0),
		r("y2", "i", 1.0), r("x3", "i", 2.0), r("z", "i", 0.5),
	}

	SortByNumeric(records, "i")

	assert.Equal(t, []string{"z", "y1", "y2", "x1", "x2", "x3"}, tags(records))
	for k := 1; k < len(records); k++ {
		prev, _ := records[k-1].Field("i")
		cur, _ := records[k].Field("i")
		assert.LessOrEqual(t, prev, cur)
	}
}

func TestSortByNumericPlacesMissingAndNaNFirst(t *testing.T) {
	records := []rec{r("two", "i", 2.0), r("missing"), r("nan", "i", math.NaN()), r("one", "i", 1.0)}

	SortByNumeric(records, "i")

	assert.Equal(t, []string{"missing", "nan", "one", "two"}, tags(records))
	assert.Len(t, records, 4)
}

func TestSortByNumericSamples(t *testing.T) {
	series := models.Series{sample(3, 30), sample(1, 10), sample(2, 20)}

	SortByNumeric(series, models.FieldPredictionIndex)

	assert.Equal(t, []float64{10, 20, 30}, Values(series, models.FieldPredictionValue))
}

func TestAxisLimits(t *testing.T) {
	groups := map[string][]rec{
		"18": {r("", "temperature", 10.0), r("", "temperature", 12.0), r("", "temperature", 9.0)},
		"23": {r("", "temperature", 8.0), r("", "temperature", 20.0), r("", "humidity", 99.0)},
	}

	limits, ok := AxisLimits(groups, "temperature")

	require.True(t, ok)
	assert.Equal(t, Limits{Min: 8, Max: 20}, limits)
}

func TestAxisLimitsGroupedSeries(t *testing.T) {
	groups := models.GroupedSeries{
		"a": {sample(0, 4), sample(1, -2)},
		"b": {sample(2, math.NaN())},
	}

	limits, ok := AxisLimits(groups, models.FieldPredictionValue)

	require.True(t, ok)
	assert.Equal(t, Limits{Min: -2, Max: 4}, limits)
}

func TestAxisLimitsNothingSeen(t *testing.T) {
	_, ok := AxisLimits(map[string][]rec{"a": {r("")}}, "temperature")
	assert.False(t, ok)
}

func TestBinCounts(t *testing.T) {
	records := []rec{
		r("", "temperature", 17.0), r("", "temperature", 18.0), r("", "temperature", 19.5),
		r("", "temperature", 30.0), r("", "temperature", 200.0), r(""),
	}

	labels, counts, err := BinCounts(records, "temperature", []float64{0, 18, 21, 25, 144})

	require.NoError(t, err)
	assert.Equal(t, []string{"(0.0, 18.0]", "(18.0, 21.0]", "(21.0, 25.0]", "(25.0, 144.0]"}, labels)
	assert.Equal(t, []float64{2, 1, 0, 1}, counts)
}

func TestBinCountsRejectsBadEdges(t *testing.T) {
	_, _, err := BinCounts([]rec{}, "temperature", []float64{1})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, _, err = BinCounts([]rec{}, "temperature", []float64{1, 1})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestFindRun(t *testing.T) {
	runs := []models.PredictionRun{
		{RunID: 1, MeasureName: models.MeasureMeanTemperature, ScenarioType: models.ScenarioBAU, VentilationRate: 2, NumDehumidifiers: 2},
		{RunID: 2, MeasureName: models.MeasureMeanTemperature, ScenarioType: models.ScenarioTest, VentilationRate: 4, NumDehumidifiers: 1, LightingShift: -3},
		{RunID: 3, MeasureName: models.MeasureMeanHumidity, ScenarioType: models.ScenarioTest, VentilationRate: 4, NumDehumidifiers: 1, LightingShift: -3},
	}

	run, ok := FindRun(runs, models.ScenarioQuery{
		MeasureName: models.MeasureMeanTemperature, ScenarioType: models.ScenarioTest,
		VentilationRate: 4, NumDehumidifiers: 1, LightingShift: -3,
	})
	require.True(t, ok)
	assert.Equal(t, int64(2), run.RunID)

	_, ok = FindRun(runs, models.ScenarioQuery{
		MeasureName: models.MeasureMeanTemperature, ScenarioType: models.ScenarioTest,
		VentilationRate: 6, NumDehumidifiers: 1, LightingShift: -3,
	})
	assert.False(t, ok)
}

func TestRampColour(t *testing.T) {
	assert.Equal(t, RampRedBlue[0], RampColour(RampRedBlue, 0, 3))
	assert.Equal(t, RampRedBlue[1], RampColour(RampRedBlue, 5, 2))
	assert.Equal(t, RampRedBlue[3], RampColour(RampRedBlue, 7, 10))
	assert.Equal(t, "rgba(200,200,200,1)", RampColour(RampBlueGrey, 4, 5))
	assert.Equal(t, "", RampColour(nil, 0, 1))
}

func sample(index, value float64) models.Sample {
	var s models.Sample
	s.Set(models.FieldPredictionIndex, index)
	s.Set(models.FieldPredictionValue, value)
	return s
}
