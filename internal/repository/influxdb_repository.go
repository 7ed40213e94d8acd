package repository

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"cropdash/internal/models"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/rs/zerolog"
)

const measurement = "sensor_data"

// Repository is the sensor reading store.
type Repository interface {
	WriteSensorData(ctx context.Context, data models.SensorData) error
	BucketExists(ctx context.Context, name string) (bool, error)
	CreateBucket(ctx context.Context, name string) error
	QueryReadings(ctx context.Context, q ReadingsQuery) (models.GroupedSeries, error)
	QueryLatest(ctx context.Context, q LatestQuery) (map[string]models.Sample, error)
	ListSensors(ctx context.Context, lookback time.Duration) ([]string, error)
	// Bucket names the bucket every reading is written to and read from.
	Bucket() string
}

// ReadingsQuery selects readings of some sensors over [Start, Stop).
type ReadingsQuery struct {
	SensorIDs []string
	Fields    []string
	Start     time.Time
	Stop      time.Time
	// Window is the aggregation period; zero returns raw points.
	Window    time.Duration
}

// LatestQuery averages the trailing Window of each sensor.
type LatestQuery struct {
	SensorIDs []string
	Fields    []string
	Window    time.Duration
}

// InfluxDBRepository reads and writes sensor readings in InfluxDB.
type InfluxDBRepository struct {
	client influxdb2.Client
	org    string
	bucket string
	logger zerolog.Logger
}

// NewInfluxDBRepository creates a new InfluxDBRepository reading and
// writing bucket.
func NewInfluxDBRepository(url, token, org, bucket string, logger zerolog.Logger) *InfluxDBRepository {
	return &InfluxDBRepository{
		client: influxdb2.NewClient(url, token),
		org:    org,
		bucket: bucket,
		logger: logger,
	}
}

// Ping reports whether the server answers.
func (r *InfluxDBRepository) Ping(ctx context.Context) error {
	ok, err := r.client.Ping(ctx)
	if err != nil {
		return fmt.Errorf("ping influxdb: %w", err)
	}
	if !ok {
		return fmt.Errorf("ping influxdb: server not ready")
	}
	return nil
}

// Close releases the client.
func (r *InfluxDBRepository) Close() {
	r.client.Close()
}

// Bucket returns the bucket readings live in.
func (r *InfluxDBRepository) Bucket() string {
	return r.bucket
}

// WriteSensorData writes one reading to the repository's bucket, tagged
// with its sensor, device, zone and location.
func (r *InfluxDBRepository) WriteSensorData(ctx context.Context, data models.SensorData) error {
	writeAPI := r.client.WriteAPIBlocking(r.org, r.bucket)

	if err := writeAPI.WritePoint(ctx, r.point(data)); err != nil {
		return fmt.Errorf("error writing to InfluxDB: %w", err)
	}
	r.logger.Debug().
		Str("bucket", r.bucket).
		Str("sensor_id", data.SensorKey()).
		Str("field", data.Field).
		Float64("value", data.Value).
		Msg("data point written")
	return nil
}

func (r *InfluxDBRepository) point(data models.SensorData) *write.Point {
	tags := map[string]string{"sensor_id": data.SensorKey()}
	if data.DeviceID != "" {
		tags["device_id"] = data.DeviceID
	}
	if data.Zone != "" {
		tags["zone"] = data.Zone
	}
	if data.Location != "" {
		tags["location_id"] = data.Location
	}

	ts := time.Now()
	if data.Timestamp != "" {
		parsed, err := models.ParseTimestamp(data.Timestamp)
		if err != nil {
			r.logger.Warn().Err(err).Str("timestamp", data.Timestamp).Msg("unparseable timestamp, using server time")
		} else {
			ts = parsed
		}
	}
	return influxdb2.NewPoint(measurement, tags, map[string]interface{}{data.Field: data.Value}, ts)
}

// BucketExists checks if a bucket exists in InfluxDB.
func (r *InfluxDBRepository) BucketExists(ctx context.Context, name string) (bool, error) {
	_, err := r.client.BucketsAPI().FindBucketByName(ctx, name)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			return false, nil
		}
		return false, fmt.Errorf("error checking bucket existence: %w", err)
	}
	return true, nil
}

// CreateBucket creates a new bucket in the configured organization.
func (r *InfluxDBRepository) CreateBucket(ctx context.Context, name string) error {
	org, err := r.client.OrganizationsAPI().FindOrganizationByName(ctx, r.org)
	if err != nil {
		return fmt.Errorf("find organization %q: %w", r.org, err)
	}
	if org == nil {
		return fmt.Errorf("organization %q not found", r.org)
	}
	if _, err := r.client.BucketsAPI().CreateBucketWithName(ctx, org, name); err != nil {
		return fmt.Errorf("create bucket %q: %w", name, err)
	}
	r.logger.Info().Str("bucket", name).Msg("bucket created")
	return nil
}

// QueryReadings returns the selected readings grouped by sensor id.
func (r *InfluxDBRepository) QueryReadings(ctx context.Context, q ReadingsQuery) (models.GroupedSeries, error) {
	flux, err := readingsFlux(r.bucket, q)
	if err != nil {
		return nil, err
	}
	r.logger.Debug().Str("query", flux).Msg("executing InfluxDB query")

	result, err := r.client.QueryAPI(r.org).Query(ctx, flux)
	if err != nil {
		return nil, fmt.Errorf("error querying InfluxDB: %w", err)
	}
	defer result.Close()

	groups := models.GroupedSeries{}
	for result.Next() {
		record := result.Record()
		id, sample := sampleFromRow(record.Values(), q.Fields)
		sample.Timestamp = models.NewTimestamp(record.Time())
		groups[id] = append(groups[id], sample)
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("error reading InfluxDB result: %w", err)
	}
	return groups, nil
}

// QueryLatest returns each sensor's mean over the trailing window, stamped
// with the window end.
func (r *InfluxDBRepository) QueryLatest(ctx context.Context, q LatestQuery) (map[string]models.Sample, error) {
	flux, err := latestFlux(r.bucket, q)
	if err != nil {
		return nil, err
	}
	result, err := r.client.QueryAPI(r.org).Query(ctx, flux)
	if err != nil {
		return nil, fmt.Errorf("error querying InfluxDB: %w", err)
	}
	defer result.Close()

	latest := map[string]models.Sample{}
	for result.Next() {
		values := result.Record().Values()
		id, sample := sampleFromRow(values, q.Fields)
		if stop, ok := values["_stop"].(time.Time); ok {
			sample.Timestamp = models.NewTimestamp(stop)
		}
		latest[id] = sample
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("error reading InfluxDB result: %w", err)
	}
	return latest, nil
}

// ListSensors returns the distinct sensor ids that reported within lookback.
func (r *InfluxDBRepository) ListSensors(ctx context.Context, lookback time.Duration) ([]string, error) {
	flux, err := sensorsFlux(r.bucket, lookback)
	if err != nil {
		return nil, err
	}
	result, err := r.client.QueryAPI(r.org).Query(ctx, flux)
	if err != nil {
		return nil, fmt.Errorf("error querying InfluxDB: %w", err)
	}
	defer result.Close()

	var ids []string
	for result.Next() {
		id, ok := result.Record().Values()["sensor_id"].(string)
		if !ok {
			r.logger.Warn().Interface("values", result.Record().Values()).Msg("skipping row without a string sensor_id")
			continue
		}
		ids = append(ids, id)
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("error reading InfluxDB result: %w", err)
	}
	sort.Strings(ids)
	return ids, nil
}

// sampleFromRow reads a pivoted row: the sensor_id tag plus one column per field.
func sampleFromRow(values map[string]interface{}, fields []string) (string, models.Sample) {
	var sample models.Sample
	id, _ := values["sensor_id"].(string)
	for _, f := range fields {
		switch v := values[f].(type) {
		case float64:
			sample.Set(f, v)
		case int64:
			sample.Set(f, float64(v))
		}
	}
	return id, sample
}

func readingsFlux(bucket string, q ReadingsQuery) (string, error) {
	if len(q.SensorIDs) == 0 || len(q.Fields) == 0 {
		return "", fmt.Errorf("readings query needs sensor ids and fields")
	}
	if !q.Stop.After(q.Start) {
		return "", fmt.Errorf("readings query stop must be after start")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "from(bucket: %s)\n", strconv.Quote(bucket))
	fmt.Fprintf(&b, "\t|> range(start: %s, stop: %s)\n", q.Start.UTC().Format(time.RFC3339), q.Stop.UTC().Format(time.RFC3339))
	writeFilters(&b, q.SensorIDs, q.Fields)
	if q.Window > 0 {
		fmt.Fprintf(&b, "\t|> aggregateWindow(every: %s, fn: mean, createEmpty: false)\n", fluxDuration(q.Window))
	}
	b.WriteString("\t|> pivot(rowKey: [\"_time\"], columnKey: [\"_field\"], valueColumn: \"_value\")\n")
	b.WriteString("\t|> group(columns: [\"sensor_id\"])\n")
	b.WriteString("\t|> sort(columns: [\"_time\"])\n")
	return b.String(), nil
}

func latestFlux(bucket string, q LatestQuery) (string, error) {
	if len(q.SensorIDs) == 0 || len(q.Fields) == 0 {
		return "", fmt.Errorf("latest query needs sensor ids and fields")
	}
	if q.Window <= 0 {
		return "", fmt.Errorf("latest query needs a positive window")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "from(bucket: %s)\n", strconv.Quote(bucket))
	fmt.Fprintf(&b, "\t|> range(start: -%s)\n", fluxDuration(q.Window))
	writeFilters(&b, q.SensorIDs, q.Fields)
	b.WriteString("\t|> mean()\n")
	b.WriteString("\t|> group(columns: [\"sensor_id\", \"_start\", \"_stop\"])\n")
	b.WriteString("\t|> pivot(rowKey: [\"sensor_id\"], columnKey: [\"_field\"], valueColumn: \"_value\")\n")
	return b.String(), nil
}

func writeFilters(b *strings.Builder, sensorIDs, fields []string) {
	fmt.Fprintf(b, "\t|> filter(fn: (r) => r[\"_measurement\"] == %s)\n", strconv.Quote(measurement))
	fmt.Fprintf(b, "\t|> filter(fn: (r) => %s)\n", anyOf("sensor_id", sensorIDs))
	fmt.Fprintf(b, "\t|> filter(fn: (r) => %s)\n", anyOf("_field", fields))
}

func anyOf(column string, values []string) string {
	clauses := make([]string, len(values))
	for i, v := range values {
		clauses[i] = fmt.Sprintf("r[%s] == %s", strconv.Quote(column), strconv.Quote(v))
	}
	return strings.Join(clauses, " or ")
}

func sensorsFlux(bucket string, lookback time.Duration) (string, error) {
	if lookback <= 0 {
		return "", fmt.Errorf("sensor listing needs a positive lookback")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "from(bucket: %s)\n", strconv.Quote(bucket))
	fmt.Fprintf(&b, "\t|> range(start: -%s)\n", fluxDuration(lookback))
	fmt.Fprintf(&b, "\t|> filter(fn: (r) => r[\"_measurement\"] == %s)\n", strconv.Quote(measurement))
	b.WriteString("\t|> keep(columns: [\"sensor_id\"])\n")
	b.WriteString("\t|> group()\n")
	b.WriteString("\t|> unique(column: \"sensor_id\")\n")
	return b.String(), nil
}

// fluxDuration writes d in whole minutes when it divides evenly, else seconds.
func fluxDuration(d time.Duration) string {
	if d%time.Minute == 0 {
		return fmt.Sprintf("%dm", d/time.Minute)
	}
	return fmt.Sprintf("%ds", d/time.Second)
}
