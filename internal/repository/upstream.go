package repository

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"cropdash/internal/models"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// StatusError is a non-success answer from the backend.
type StatusError struct {
	Path   string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream %s: status %d: %s", e.Path, e.Status, e.Body)
}

func (e *StatusError) Unwrap() error { return models.ErrUpstream }

// Backend serves the model and crop payloads the dashboards chart.
type Backend interface {
	PredictionRuns(ctx context.Context) ([]models.PredictionRun, error)
	ArimaRuns(ctx context.Context) ([]models.PredictionRun, error)
	CropTable(ctx context.Context, start, end time.Time, cropType string) (models.CropTable, error)
	BatchDetails(ctx context.Context, batchID string) (models.BatchDetails, error)
}

// Upstream fetches backend JSON over HTTP, caching raw payloads.
type Upstream struct {
	client *resty.Client
	cache  PayloadCache
	ttl    time.Duration
	logger zerolog.Logger
}

// NewUpstream creates an Upstream for baseURL. A nil cache disables caching.
func NewUpstream(baseURL string, cache PayloadCache, ttl time.Duration, logger zerolog.Logger) *Upstream {
	if cache == nil {
		cache = NoCache{}
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30*time.Second).
		SetHeader("Accept", "application/json")
	return &Upstream{client: client, cache: cache, ttl: ttl, logger: logger}
}

// PredictionRuns fetches the GES model runs.
func (u *Upstream) PredictionRuns(ctx context.Context) (runs []models.PredictionRun, err error) {
	err = u.fetch(ctx, "/predictions/ges.json", nil, func(body []byte) (err error) {
		runs, err = models.DecodePredictionRuns(body)
		return err
	})
	return runs, err
}

// ArimaRuns fetches the ARIMA forecast runs.
func (u *Upstream) ArimaRuns(ctx context.Context) (runs []models.PredictionRun, err error) {
	err = u.fetch(ctx, "/predictions/arima.json", nil, func(body []byte) (err error) {
		runs, err = models.DecodePredictionRuns(body)
		return err
	})
	return runs, err
}

// CropTable fetches the batch table for the parallel axes page. Zero times
// leave the range to the backend.
func (u *Upstream) CropTable(ctx context.Context, start, end time.Time, cropType string) (table models.CropTable, err error) {
	params := url.Values{}
	if !start.IsZero() && !end.IsZero() {
		params.Set("range", start.Format("20060102")+"-"+end.Format("20060102"))
	}
	if cropType != "" {
		params.Set("crop_type", cropType)
	}
	err = u.fetch(ctx, "/crops/parallel_axes.json", params, func(body []byte) (err error) {
		table, err = models.DecodeCropTable(body)
		return err
	})
	return table, err
}

// BatchDetails fetches one crop batch.
func (u *Upstream) BatchDetails(ctx context.Context, batchID string) (details models.BatchDetails, err error) {
	err = u.fetch(ctx, "/crops/batch/"+url.PathEscape(batchID)+".json", nil, func(body []byte) (err error) {
		details, err = models.DecodeBatchDetails(body)
		return err
	})
	return details, err
}

// fetch GETs path and hands the body to decode. Only payloads that decode
// are cached; a cached payload that no longer decodes is fetched again.
func (u *Upstream) fetch(ctx context.Context, path string, params url.Values, decode func([]byte) error) error {
	key := path
	if len(params) > 0 {
		key += "?" + params.Encode()
	}
	if cached, ok, err := u.cache.Get(ctx, key); err != nil {
		u.logger.Warn().Err(err).Str("key", key).Msg("payload cache read failed")
	} else if ok {
		err := decode(cached)
		if err == nil {
			return nil
		}
		u.logger.Warn().Err(err).Str("key", key).Msg("cached payload is invalid, refetching")
	}

	resp, err := u.client.R().
		SetContext(ctx).
		SetQueryParamsFromValues(params).
		Get(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", models.ErrUpstream, path, err)
	}
	u.logger.Debug().Str("path", path).Int("status", resp.StatusCode()).Msg("upstream response")
	if resp.StatusCode() == 404 {
		return fmt.Errorf("%s: %w", path, models.ErrNotFound)
	}
	if resp.IsError() {
		return &StatusError{Path: path, Status: resp.StatusCode(), Body: resp.String()}
	}

	body := resp.Body()
	if err := decode(body); err != nil {
		return err
	}
	if err := u.cache.Set(ctx, key, body, u.ttl); err != nil {
		u.logger.Warn().Err(err).Str("key", key).Msg("payload cache write failed")
	}
	return nil
}
