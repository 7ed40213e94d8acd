// Package navigation parses dashboard query parameters into page state and
// builds the URLs the dashboards link and redirect to.
package navigation

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"cropdash/internal/models"
)

// DateLayout is the compact date format carried in dashboard URLs.
const DateLayout = "20060102"

const (
	MsgSelectSensors = "Please select sensors to plot/download data for."
	MsgSetDates      = "Please set start and end date."
	MsgDateOrder     = "End date must not be before start date."
)

// Query parameter names.
const (
	ParamStartDate  = "startDate"
	ParamEndDate    = "endDate"
	ParamSensorIDs  = "sensorIds"
	ParamSensorType = "sensorType"
	ParamRange      = "range"
	ParamCropType   = "crop_type"
	ParamColourAxis = "colour_axis"
	ParamDays       = "days"
	ParamFormat     = "format"
)

var idSeparator = regexp.MustCompile(`[ ;,]+`)

// PageState is the selection a dashboard request carries. It is built once
// per request and handed down; nothing keeps it between requests.
type PageState struct {
	// Start and End are calendar days; End is inclusive.
	Start      time.Time
	End        time.Time
	SensorIDs  []string
	SensorType string
	CropType   string
	ColourAxis string
	Days       int
}

// HasDates reports whether both ends of the date range are set.
func (s PageState) HasDates() bool {
	return !s.Start.IsZero() && !s.End.IsZero()
}

// Stop is the exclusive upper bound of the selected range, the midnight after End.
func (s PageState) Stop() time.Time {
	return s.End.AddDate(0, 0, 1)
}

// Empty reports whether neither sensors nor dates were selected.
func (s PageState) Empty() bool {
	return len(s.SensorIDs) == 0 && s.Start.IsZero() && s.End.IsZero()
}

// Validate checks that a time-series selection can be plotted or
// downloaded. Sensors are checked before dates.
func (s PageState) Validate() error {
	if len(s.SensorIDs) == 0 {
		return models.NewValidationError(ParamSensorIDs, MsgSelectSensors)
	}
	if !s.HasDates() {
		return models.NewValidationError(ParamStartDate, MsgSetDates)
	}
	if s.End.Before(s.Start) {
		return models.NewValidationError(ParamEndDate, MsgDateOrder)
	}
	return nil
}

// ParseTimeSeriesState reads the time-series dashboard parameters. A request
// without sensors and dates is a valid empty selection; anything partial
// must validate.
func ParseTimeSeriesState(q url.Values) (PageState, error) {
	var s PageState
	var err error
	if s.Start, err = parseDate(q.Get(ParamStartDate)); err != nil {
		return PageState{}, models.NewValidationError(ParamStartDate, MsgSetDates)
	}
	if s.End, err = parseDate(q.Get(ParamEndDate)); err != nil {
		return PageState{}, models.NewValidationError(ParamEndDate, MsgSetDates)
	}
	s.SensorIDs = SplitSensorIDs(q.Get(ParamSensorIDs))
	s.SensorType = strings.TrimSpace(q.Get(ParamSensorType))
	if s.Empty() {
		return s, nil
	}
	if err := s.Validate(); err != nil {
		return PageState{}, err
	}
	return s, nil
}

// ParseRequestForm reads a submitted selection, which must be complete.
func ParseRequestForm(form url.Values) (PageState, error) {
	s, err := ParseTimeSeriesState(form)
	if err != nil {
		return PageState{}, err
	}
	if err := s.Validate(); err != nil {
		return PageState{}, err
	}
	return s, nil
}

// ParseHomeState reads the overview's days-back slider, falling back to defaultDays.
func ParseHomeState(q url.Values, defaultDays int) (PageState, error) {
	s := PageState{Days: defaultDays}
	if raw := q.Get(ParamDays); raw != "" {
		days, err := strconv.Atoi(raw)
		if err != nil || days < 1 {
			return PageState{}, models.NewValidationError(ParamDays, "days must be a positive whole number.")
		}
		s.Days = days
	}
	return s, nil
}

// ParseParallelState reads the parallel axes parameters. The range is optional.
func ParseParallelState(q url.Values) (PageState, error) {
	var s PageState
	if raw := q.Get(ParamRange); raw != "" {
		start, end, err := ParseRange(raw)
		if err != nil {
			return PageState{}, err
		}
		s.Start, s.End = start, end
	}
	s.CropType = q.Get(ParamCropType)
	if s.CropType == "" {
		s.CropType = q.Get("cropType")
	}
	s.ColourAxis = q.Get(ParamColourAxis)
	return s, nil
}

// ParseRange splits a "YYYYMMDD-YYYYMMDD" range.
func ParseRange(raw string) (start, end time.Time, err error) {
	from, to, ok := strings.Cut(raw, "-")
	if !ok {
		return time.Time{}, time.Time{}, models.NewValidationError(ParamRange, "range must be YYYYMMDD-YYYYMMDD.")
	}
	start, err = time.Parse(DateLayout, from)
	if err != nil {
		return time.Time{}, time.Time{}, models.NewValidationError(ParamRange, "range must be YYYYMMDD-YYYYMMDD.")
	}
	end, err = time.Parse(DateLayout, to)
	if err != nil {
		return time.Time{}, time.Time{}, models.NewValidationError(ParamRange, "range must be YYYYMMDD-YYYYMMDD.")
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, models.NewValidationError(ParamRange, MsgDateOrder)
	}
	return start, end, nil
}

// SplitSensorIDs splits a list separated by commas, semicolons or spaces.
func SplitSensorIDs(raw string) []string {
	var ids []string
	for _, id := range idSeparator.Split(strings.TrimSpace(raw), -1) {
		if id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// parseDate accepts the compact URL form and the ISO form date inputs post.
func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(DateLayout, raw); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, raw)
}
