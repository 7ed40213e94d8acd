package navigation

import (
	"net/url"
	"strings"
)

// Dashboard paths.
const (
	TimeSeriesPath   = "/dashboards/timeseries_dashboard"
	RequestPath      = TimeSeriesPath + "/request"
	SensorTypePath   = TimeSeriesPath + "/sensor_type"
	SensorsPath      = TimeSeriesPath + "/sensors"
	ParallelAxesPath = "/crops/parallel_axes"
)

// TimeSeriesURL links the time-series dashboard to the given selection.
func TimeSeriesURL(s PageState) string {
	q := url.Values{}
	if !s.Start.IsZero() {
		q.Set(ParamStartDate, s.Start.Format(DateLayout))
	}
	if !s.End.IsZero() {
		q.Set(ParamEndDate, s.End.Format(DateLayout))
	}
	if len(s.SensorIDs) > 0 {
		q.Set(ParamSensorIDs, strings.Join(s.SensorIDs, ","))
	}
	if s.SensorType != "" {
		q.Set(ParamSensorType, s.SensorType)
	}
	return withQuery(TimeSeriesPath, q)
}

// SensorTypeURL switches the time-series dashboard to another sensor type,
// dropping the rest of the selection.
func SensorTypeURL(sensorType string) string {
	q := url.Values{}
	q.Set(ParamSensorType, sensorType)
	return withQuery(TimeSeriesPath, q)
}

// ParallelAxesURL links the parallel axes page to a range and crop type.
func ParallelAxesURL(s PageState) string {
	q := url.Values{}
	if s.HasDates() {
		q.Set(ParamRange, s.Start.Format(DateLayout)+"-"+s.End.Format(DateLayout))
	}
	if s.CropType != "" {
		q.Set(ParamCropType, s.CropType)
	}
	if s.ColourAxis != "" {
		q.Set(ParamColourAxis, s.ColourAxis)
	}
	return withQuery(ParallelAxesPath, q)
}

func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}
