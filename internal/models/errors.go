package models

import (
	"errors"
	"fmt"
)

// ErrMalformedPayload indicates a backend payload did not match the expected record shape.
var ErrMalformedPayload = errors.New("malformed payload")

// ErrUpstream marks a failed request to the backend.
var ErrUpstream = errors.New("upstream request failed")

// ErrUnavailable marks a feature whose integration is not configured.
var ErrUnavailable = errors.New("not available")

// DecodeError reports which payload and field failed validation.
type DecodeError struct {
	Payload string // "sensor_series", "grouped_series", "prediction_runs", "zone_bins", "crop_table", "batch_details"
	Field   string
	Err     error
}

func (e *DecodeError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("decode %s: %v", e.Payload, e.Err)
	}
	return fmt.Sprintf("decode %s: field %q: %v", e.Payload, e.Field, e.Err)
}

// Unwrap returns ErrMalformedPayload joined with the underlying cause.
func (e *DecodeError) Unwrap() []error {
	return []error{ErrMalformedPayload, e.Err}
}

func newDecodeError(payload, field string, err error) *DecodeError {
	return &DecodeError{Payload: payload, Field: field, Err: err}
}
