package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"net/http"
	"testing"
	"time"

	"cropdash/internal/config"
	"cropdash/internal/models"
	"cropdash/internal/navigation"
	"cropdash/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var t0 = time.Date(2021, 5, 3, 10, 0, 0, 0, time.UTC)

func trh(minutes int, temperature, humidity float64) models.Sample {
	s := models.Sample{Timestamp: models.NewTimestamp(t0.Add(time.Duration(minutes) * time.Minute))}
	s.Set(models.FieldTemperature, temperature)
	s.Set(models.FieldHumidity, humidity)
	return s
}

type fakeRepo struct {
	readings  models.GroupedSeries
	latest    map[string]models.Sample
	queries   []repository.ReadingsQuery
	buckets   map[string]bool
	created   []string
	written   []models.SensorData
	readErr   error
	sensors   []string
	writeErr  error
	failAfter int
}

func (f *fakeRepo) WriteSensorData(_ context.Context, data models.SensorData) error {
	if f.writeErr != nil && len(f.written) >= f.failAfter {
		return f.writeErr
	}
	f.written = append(f.written, data)
	return nil
}

func (f *fakeRepo) Bucket() string { return "farm" }

func (f *fakeRepo) BucketExists(_ context.Context, name string) (bool, error) {
	return f.buckets[name], nil
}

func (f *fakeRepo) CreateBucket(_ context.Context, name string) error {
	f.created = append(f.created, name)
	if f.buckets == nil {
		f.buckets = map[string]bool{}
	}
	f.buckets[name] = true
	return nil
}

func (f *fakeRepo) QueryReadings(_ context.Context, q repository.ReadingsQuery) (models.GroupedSeries, error) {
	f.queries = append(f.queries, q)
	if f.readErr != nil {
		return nil, f.readErr
	}
	out := models.GroupedSeries{}
	for _, id := range q.SensorIDs {
		if series, ok := f.readings[id]; ok {
			out[id] = series
		}
	}
	return out, nil
}

func (f *fakeRepo) QueryLatest(_ context.Context, q repository.LatestQuery) (map[string]models.Sample, error) {
	return f.latest, nil
}

func (f *fakeRepo) ListSensors(context.Context, time.Duration) ([]string, error) {
	return f.sensors, nil
}

type fakeBackend struct {
	runs  []models.PredictionRun
	arima []models.PredictionRun
	table models.CropTable
	batch models.BatchDetails
}

func (f *fakeBackend) PredictionRuns(context.Context) ([]models.PredictionRun, error) {
	return f.runs, nil
}

func (f *fakeBackend) ArimaRuns(context.Context) ([]models.PredictionRun, error) {
	return f.arima, nil
}

func (f *fakeBackend) CropTable(context.Context, time.Time, time.Time, string) (models.CropTable, error) {
	return f.table, nil
}

func (f *fakeBackend) BatchDetails(_ context.Context, id string) (models.BatchDetails, error) {
	if id != f.batch.BatchID {
		return models.BatchDetails{}, models.ErrNotFound
	}
	return f.batch, nil
}

func newService(t *testing.T, repo *fakeRepo, backend repository.Backend) *DashboardService {
	t.Helper()
	layout, err := config.LoadLayout("")
	require.NoError(t, err)
	svc := NewDashboardService(repo, backend, layout, zerolog.Nop())
	svc.now = func() time.Time { return t0.Add(time.Hour) }
	return svc
}

func selection() navigation.PageState {
	return navigation.PageState{
		Start:     time.Date(2021, 5, 3, 0, 0, 0, 0, time.UTC),
		End:       time.Date(2021, 5, 3, 0, 0, 0, 0, time.UTC),
		SensorIDs: []string{"18", "23"},
	}
}

func readings() models.GroupedSeries {
	return models.GroupedSeries{
		"18": {trh(0, 18, 60), trh(10, 19, 62)},
		"23": {trh(0, 22, 55), trh(10, 24, 57)},
	}
}

func TestTimeSeriesEmptySelection(t *testing.T) {
	repo := &fakeRepo{}
	d, err := newService(t, repo, nil).TimeSeries(context.Background(), navigation.PageState{})
	require.NoError(t, err)

	assert.Empty(t, d.Charts)
	assert.Empty(t, repo.queries)
	data := d.Data.(*TimeSeriesData)
	assert.Equal(t, "Aranet T&RH", data.SensorType)
	assert.Equal(t, []string{"Aranet T&RH", "Aranet CO2"}, data.SensorTypes)
}

func TestTimeSeriesAddsMean(t *testing.T) {
	repo := &fakeRepo{readings: readings()}
	d, err := newService(t, repo, nil).TimeSeries(context.Background(), selection())
	require.NoError(t, err)

	require.Len(t, repo.queries, 1)
	q := repo.queries[0]
	assert.Equal(t, []string{"temperature", "humidity", "vpd"}, q.Fields)
	assert.Equal(t, time.Date(2021, 5, 4, 0, 0, 0, 0, time.UTC), q.Stop)

	data := d.Data.(*TimeSeriesData)
	assert.Contains(t, data.Series, models.MeanKey)
	require.Len(t, data.Panels, 3)
	assert.Equal(t, 18.0, data.Panels[0].Limits.Min)
	assert.Equal(t, 24.0, data.Panels[0].Limits.Max)
	assert.Nil(t, data.Panels[2].Limits)
	assert.Equal(t, 2.0, data.Panels[0].Summary["18"].Count)

	require.Len(t, d.Charts, 3)
	assert.Len(t, d.Options(), 3)
}

func TestTimeSeriesSingleSensorHasNoMean(t *testing.T) {
	state := selection()
	state.SensorIDs = []string{"18"}
	d, err := newService(t, &fakeRepo{readings: readings()}, nil).TimeSeries(context.Background(), state)
	require.NoError(t, err)
	assert.NotContains(t, d.Data.(*TimeSeriesData).Series, models.MeanKey)
}

func TestTimeSeriesValidation(t *testing.T) {
	svc := newService(t, &fakeRepo{}, nil)

	_, err := svc.TimeSeries(context.Background(), navigation.PageState{SensorType: "Geiger counter"})
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, navigation.ParamSensorType, verr.Field)

	_, err = svc.TimeSeries(context.Background(), navigation.PageState{SensorIDs: []string{"18"}})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, navigation.MsgSetDates, verr.Message)
}

func TestTimeSeriesSVG(t *testing.T) {
	var buf bytes.Buffer
	err := newService(t, &fakeRepo{readings: readings()}, nil).
		TimeSeriesSVG(context.Background(), selection(), models.FieldHumidity, &buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "<svg")

	err = newService(t, &fakeRepo{readings: readings()}, nil).
		TimeSeriesSVG(context.Background(), selection(), "co2", &buf)
	assert.Error(t, err)
}

func TestSensors(t *testing.T) {
	sensors, err := newService(t, &fakeRepo{sensors: []string{"18", "99"}}, nil).Sensors(context.Background())
	require.NoError(t, err)

	require.Len(t, sensors, 11)
	assert.Equal(t, SensorInfo{ID: "18", Zone: "MidFarm", Reporting: true}, sensors[0])
	assert.Equal(t, SensorInfo{ID: "20", Zone: "Propagation"}, sensors[1])
	assert.Equal(t, SensorInfo{ID: "99", Reporting: true}, sensors[10])
}

func TestTimeSeriesSVGWithoutReadings(t *testing.T) {
	var buf bytes.Buffer
	err := newService(t, &fakeRepo{}, nil).TimeSeriesSVG(context.Background(), selection(), "", &buf)
	assert.ErrorIs(t, err, models.ErrNotFound)
	assert.Equal(t, http.StatusNotFound, models.ToAPIError(err).StatusCode)
	assert.Zero(t, buf.Len())
}

func TestExportCSV(t *testing.T) {
	f, err := newService(t, &fakeRepo{readings: readings()}, nil).Export(context.Background(), selection(), FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "readings_20210503_20210503.csv", f.Name)
	assert.Equal(t, "text/csv", f.ContentType)

	rows, err := csv.NewReader(bytes.NewReader(f.Body)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, []string{"sensor_id", "timestamp", "temperature", "humidity", "vpd"}, rows[0])
	assert.Equal(t, []string{"18", "03-05-2021 10:00:00", "18", "60", ""}, rows[1])
	assert.Equal(t, "23", rows[3][0])
}

func TestExportXLSX(t *testing.T) {
	f, err := newService(t, &fakeRepo{readings: readings()}, nil).Export(context.Background(), selection(), FormatXLSX)
	require.NoError(t, err)
	assert.Equal(t, "readings_20210503_20210503.xlsx", f.Name)

	book, err := excelize.OpenReader(bytes.NewReader(f.Body))
	require.NoError(t, err)
	defer book.Close()
	rows, err := book.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, "sensor_id", rows[0][0])
	assert.Equal(t, "24", rows[4][2])
}

func TestExportRejects(t *testing.T) {
	svc := newService(t, &fakeRepo{}, nil)

	_, err := svc.Export(context.Background(), selection(), "pdf")
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, navigation.ParamFormat, verr.Field)

	_, err = svc.Export(context.Background(), navigation.PageState{}, FormatCSV)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, navigation.MsgSelectSensors, verr.Message)
}

func TestHome(t *testing.T) {
	repo := &fakeRepo{readings: models.GroupedSeries{
		"18": {trh(0, 19, 60), trh(10, 21, 70)},
		"23": {trh(0, 24, 85)},
		"21": {trh(0, 17, 40)},
	}}
	d, err := newService(t, repo, nil).Home(context.Background(), navigation.PageState{})
	require.NoError(t, err)

	require.Len(t, repo.queries, 1)
	assert.Equal(t, t0.Add(time.Hour).AddDate(0, 0, -3), repo.queries[0].Start)

	data := d.Data.(*HomeData)
	assert.Equal(t, 3, data.Days)
	require.Len(t, data.TemperatureBins, 5)
	mid := data.TemperatureBins[2]
	assert.Equal(t, "MidFarm", mid.Zone)
	assert.Equal(t, []models.BinCount{
		{Bin: "(0.0, 20.0]", Cnt: 1},
		{Bin: "(20.0, 23.0]", Cnt: 1},
		{Bin: "(23.0, 25.0]", Cnt: 1},
		{Bin: "(25.0, 144.0]", Cnt: 0},
	}, mid.Values)
	assert.Contains(t, data.Vertical, "18")
	assert.Contains(t, data.Horizontal, "21")

	assert.Len(t, d.Charts, 5+2+2)
}

func TestHomeQueryError(t *testing.T) {
	_, err := newService(t, &fakeRepo{readErr: errors.New("down")}, nil).Home(context.Background(), navigation.PageState{Days: 1})
	assert.Error(t, err)
}

func TestHourlyTiles(t *testing.T) {
	temp := 21.5
	repo := &fakeRepo{latest: map[string]models.Sample{"22": {Temperature: &temp}}}
	tiles, err := newService(t, repo, nil).HourlyTiles(context.Background())
	require.NoError(t, err)
	require.Len(t, tiles, 5)
	assert.Equal(t, "BackFarm", tiles[0].Zone)
	assert.Equal(t, &temp, tiles[0].Temperature)
	assert.Nil(t, tiles[1].Temperature)
}

func predictionRun(measure string, scenario models.ScenarioType, vent float64, offset float64) models.PredictionRun {
	run := models.PredictionRun{SensorID: "27", MeasureName: measure, ScenarioType: scenario, VentilationRate: vent}
	for i := range 3 {
		s := models.Sample{Timestamp: models.NewTimestamp(t0.Add(time.Duration(i) * time.Hour))}
		s.Set(models.FieldPredictionIndex, float64(i))
		s.Set(models.FieldPredictionValue, 20+offset+float64(i))
		run.Values = append(run.Values, s)
	}
	return run
}

func predictionBackend() *fakeBackend {
	return &fakeBackend{runs: []models.PredictionRun{
		predictionRun(models.MeasureMeanTemperature, models.ScenarioTest, 5, 0.5),
		predictionRun(models.MeasureUpperTemperature, models.ScenarioBAU, 0, 1),
		predictionRun(models.MeasureMeanTemperature, models.ScenarioBAU, 0, 0),
		predictionRun(models.MeasureLowerTemperature, models.ScenarioBAU, 0, -1),
	}}
}

func TestPredictions(t *testing.T) {
	repo := &fakeRepo{readings: models.GroupedSeries{"27": {trh(0, 20.5, 60)}}}
	d, err := newService(t, repo, predictionBackend()).Predictions(context.Background(), &Scenario{VentilationRate: 5})
	require.NoError(t, err)

	require.Len(t, d.Charts, 1)
	data := d.Data.(*PredictionData)
	require.Len(t, data.Runs, 4)
	assert.Equal(t, models.ScenarioBAU, data.Runs[1].ScenarioType)
	assert.Equal(t, models.ScenarioTest, data.Runs[3].ScenarioType)

	require.Len(t, repo.queries, 1)
	assert.Equal(t, []string{"27"}, repo.queries[0].SensorIDs)
	assert.Equal(t, t0, repo.queries[0].Start)
}

func TestPredictionsScenarioNotFound(t *testing.T) {
	_, err := newService(t, &fakeRepo{}, predictionBackend()).Predictions(context.Background(), &Scenario{VentilationRate: 9})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestPredictionsWithoutBackend(t *testing.T) {
	_, err := newService(t, &fakeRepo{}, nil).Predictions(context.Background(), nil)
	assert.ErrorIs(t, err, models.ErrUnavailable)

	_, err = newService(t, &fakeRepo{}, nil).Arima(context.Background())
	assert.ErrorIs(t, err, models.ErrUnavailable)
}

func TestArimaWithoutRuns(t *testing.T) {
	_, err := newService(t, &fakeRepo{}, &fakeBackend{}).Arima(context.Background())
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func cropBackend() *fakeBackend {
	return &fakeBackend{
		table: models.CropTable{
			Axes: map[string]string{"yield": "Yield", "days": "Days"},
			Data: map[string]map[string]float64{
				"yield": {"0": 4, "1": 6},
				"days":  {"0": 10, "1": 12},
			},
		},
		batch: models.BatchDetails{BatchID: "B7", CropType: "pea", SensorID: "18", Values: models.Series{trh(0, 19, 60), trh(10, 20, 61)}},
	}
}

func TestParallelAxes(t *testing.T) {
	svc := newService(t, &fakeRepo{}, cropBackend())

	d, err := svc.ParallelAxes(context.Background(), navigation.PageState{CropType: "pea"})
	require.NoError(t, err)
	data := d.Data.(*ParallelData)
	assert.Equal(t, "days", data.ColourAxis)
	assert.Equal(t, 10.0, data.ColourLimits.Min)
	assert.Equal(t, "Crop batches: pea", d.Title)

	_, err = svc.ParallelAxes(context.Background(), navigation.PageState{ColourAxis: "colour"})
	var verr *models.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestBatch(t *testing.T) {
	svc := newService(t, &fakeRepo{}, cropBackend())

	d, err := svc.Batch(context.Background(), "B7")
	require.NoError(t, err)
	assert.Len(t, d.Charts, 2)
	assert.Equal(t, 19.5, d.Data.(*BatchData).Summary[models.FieldTemperature]["18"].Mean)

	_, err = svc.Batch(context.Background(), "B8")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestIngestSensorData(t *testing.T) {
	repo := &fakeRepo{}
	svc := newService(t, repo, nil)

	require.NoError(t, svc.IngestSensorData(context.Background(), models.SensorData{Location: "greenhouse-1", SensorID: "18", Field: "temperature", Value: 21}))
	require.NoError(t, svc.IngestSensorData(context.Background(), models.SensorData{Location: "greenhouse-2", DeviceID: "d1", Field: "humidity", Value: 60}))
	assert.Equal(t, []string{"farm"}, repo.created, "readings go to the dashboard bucket, not one per location")
	require.Len(t, repo.written, 2)
	assert.Equal(t, "greenhouse-1", repo.written[0].Location)

	err := svc.IngestSensorData(context.Background(), models.SensorData{Field: "temperature"})
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "sensor_id", verr.Field)
}

func TestIngestBatchValidatesBeforeWriting(t *testing.T) {
	repo := &fakeRepo{buckets: map[string]bool{"farm": true}}
	svc := newService(t, repo, nil)

	n, err := svc.IngestBatch(context.Background(), []models.SensorData{
		{SensorID: "18", Field: "temperature", Value: 21},
		{SensorID: "23"},
	})
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "[1].field", verr.Field)
	assert.Zero(t, n)
	assert.Empty(t, repo.written)
}

func TestIngestBatchReportsWritten(t *testing.T) {
	repo := &fakeRepo{buckets: map[string]bool{"farm": true}, writeErr: errors.New("influx down"), failAfter: 1}
	svc := newService(t, repo, nil)

	n, err := svc.IngestBatch(context.Background(), []models.SensorData{
		{SensorID: "18", Field: "temperature", Value: 21},
		{SensorID: "23", Field: "temperature", Value: 22},
	})
	require.Error(t, err)
	assert.Equal(t, 1, n)
	assert.Len(t, repo.written, 1)

	n, err = newService(t, &fakeRepo{}, nil).IngestBatch(context.Background(), []models.SensorData{
		{SensorID: "18", Field: "temperature", Value: 21},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
