package middleware

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"cropdash/internal/models"
	"cropdash/internal/utils"

	jwtmiddleware "github.com/auth0/go-jwt-middleware/v2"
	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/rs/zerolog"
)

// DeviceTokenHeader carries the shared secret sensor gateways post readings with.
const DeviceTokenHeader = "X-Device-Token"

// EnsureValidToken validates the bearer JWT against the issuer's JWKS and
// audience.
func EnsureValidToken(issuer, audience string) (func(http.Handler) http.Handler, error) {
	issuerURL, err := url.Parse(issuer)
	if err != nil {
		return nil, fmt.Errorf("parse issuer url: %w", err)
	}
	provider := jwks.NewCachingProvider(issuerURL, 5*time.Minute)

	jwtValidator, err := validator.New(
		provider.KeyFunc,
		validator.RS256,
		issuerURL.String(),
		[]string{audience},
		validator.WithAllowedClockSkew(time.Minute),
	)
	if err != nil {
		return nil, fmt.Errorf("set up jwt validator: %w", err)
	}

	mw := jwtmiddleware.New(
		jwtValidator.ValidateToken,
		jwtmiddleware.WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
			zerolog.Ctx(r.Context()).Info().Err(err).Msg("JWT authentication failed")
			utils.RespondWithError(w, r, models.NewAPIError(models.ErrorCodeUnauthorized, "Failed to validate JWT.", nil, http.StatusUnauthorized))
		}),
	)
	return mw.CheckJWT, nil
}

// DeviceToken authenticates ingestion requests by a shared secret header.
func DeviceToken(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := r.Header.Get(DeviceTokenHeader)
			if got == "" {
				utils.RespondWithError(w, r, models.NewAPIError(models.ErrorCodeUnauthorized, "Device token header missing", nil, http.StatusUnauthorized))
				return
			}
			if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				utils.RespondWithError(w, r, models.NewAPIError(models.ErrorCodeUnauthorized, "Invalid device token", nil, http.StatusUnauthorized))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
