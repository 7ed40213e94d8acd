package utils

import (
	"encoding/json"
	"fmt"
	"net/http"

	"cropdash/internal/models"

	"github.com/rs/zerolog"
)

// RespondWithError sends a JSON error response using the APIError model.
// It sets the HTTP status code from the APIError and encodes the entire struct.
func RespondWithError(w http.ResponseWriter, r *http.Request, apiErr models.APIError) {
	logger := zerolog.Ctx(r.Context())
	if apiErr.StatusCode >= http.StatusInternalServerError {
		logger.Error().Str("code", string(apiErr.Code)).Msg(apiErr.Message)
	} else {
		logger.Info().Str("code", string(apiErr.Code)).Msg(apiErr.Message)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apiErr.StatusCode)
	if err := json.NewEncoder(w).Encode(apiErr); err != nil {
		logger.Error().Err(err).Msg("failed to encode error response")
	}
}

// RespondWithServiceError maps err onto an APIError and sends it.
func RespondWithServiceError(w http.ResponseWriter, r *http.Request, err error) {
	RespondWithError(w, r, models.ToAPIError(err))
}

// RespondWithJSON sends a JSON success response.
func RespondWithJSON(w http.ResponseWriter, r *http.Request, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to encode JSON response")
	}
}

// RespondWithFile sends body as a download named name.
func RespondWithFile(w http.ResponseWriter, r *http.Request, name, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("file", name).Msg("failed to write download")
	}
}
