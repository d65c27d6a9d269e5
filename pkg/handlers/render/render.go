// Package render centralizes JSON responses and the mapping from typed
// domain errors to HTTP status codes.
package render

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/fortuna-labs/report-funnel/pkg/models/api"
	"github.com/fortuna-labs/report-funnel/pkg/models/domain"
)

func JSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to encode response")
	}
}

// Error routes a typed error to its status code. Auth failures come back as
// 401 so callers know to run the identity-recovery flow; transient upstream
// failures come back as 502/504 so callers know a retry may help.
func Error(ctx context.Context, w http.ResponseWriter, err error) {
	logger := zerolog.Ctx(ctx)

	var (
		vErr *domain.ValidationError
		pErr *domain.PaymentError
		nErr *domain.NetworkError
		tErr *domain.TimeoutError
	)

	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		logger.Warn().Err(err).Msg("unauthenticated request")
		JSON(ctx, w, http.StatusUnauthorized, api.Error{Code: "unauthenticated", Message: "unknown access token"})
	case errors.As(err, &vErr):
		logger.Warn().Err(err).Msg("invalid request")
		JSON(ctx, w, http.StatusBadRequest, api.Error{Code: "validation", Message: vErr.Error()})
	case errors.As(err, &pErr):
		logger.Warn().Err(err).Msg("payment failure")
		JSON(ctx, w, http.StatusPaymentRequired, api.Error{Code: "payment_failed", Message: pErr.Error()})
	case errors.As(err, &tErr):
		logger.Error().Err(err).Msg("generation timed out")
		JSON(ctx, w, http.StatusGatewayTimeout, api.Error{Code: "timeout", Message: "generation did not complete, try again later"})
	case errors.As(err, &nErr):
		logger.Error().Err(err).Msg("upstream failure")
		JSON(ctx, w, http.StatusBadGateway, api.Error{Code: "upstream_unavailable", Message: "upstream temporarily unavailable"})
	case errors.Is(err, domain.ErrNotFound):
		JSON(ctx, w, http.StatusNotFound, api.Error{Code: "not_found", Message: "not found"})
	default:
		logger.Error().Err(err).Msg("internal error")
		JSON(ctx, w, http.StatusInternalServerError, api.Error{Code: "internal", Message: "internal error"})
	}
}
