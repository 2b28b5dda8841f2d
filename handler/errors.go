package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/quotakit/pkg/catalog"
	"github.com/dmitrymomot/quotakit/pkg/quota"
	"github.com/dmitrymomot/quotakit/pkg/usage"
)

var (
	ErrMissingIdentity = errors.New("handler.errors.missing_identity")
	ErrInvalidUserID   = errors.New("handler.errors.invalid_user_id")
)

// quotaExceededMessage mirrors the message the dashboard expects on a denial.
const quotaExceededMessage = "Plan limit reached. Please upgrade to create more courses."

// respondDomainError maps domain errors to HTTP responses. Invalid input is
// rejected without state change; quota denials are a normal outcome, not an
// error; transient conflicts surface as retryable failures; everything else
// becomes a generic service failure so partial writes never masquerade as
// success.
func (h *Handler) respondDomainError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, quota.ErrQuotaExceeded):
		h.log.DebugContext(ctx, "quota denied", "error", err)
		respondError(w, http.StatusForbidden, quotaExceededMessage)
	case errors.Is(err, usage.ErrInvalidMetric),
		errors.Is(err, usage.ErrInvalidCount),
		errors.Is(err, usage.ErrInvalidScore):
		respondError(w, http.StatusBadRequest, "Invalid request")
	case errors.Is(err, catalog.ErrPlanNotFound):
		respondError(w, http.StatusBadRequest, "Invalid Plan")
	case errors.Is(err, usage.ErrRecordNotFound):
		respondError(w, http.StatusNotFound, "User not found")
	case errors.Is(err, usage.ErrConcurrencyConflict):
		h.log.WarnContext(ctx, "transient conflict", "error", err)
		respondError(w, http.StatusServiceUnavailable, "Temporary failure, please retry")
	default:
		h.log.ErrorContext(ctx, "request failed", slog.Any("error", err))
		respondError(w, http.StatusInternalServerError, "Internal server error")
	}
}
