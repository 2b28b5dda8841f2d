package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dmitrymomot/quotakit/pkg/usage"
)

// handleCheckLimit answers whether the user may create another course right
// now. Read-only: nothing is consumed until track-usage reports the creation.
//
//	GET /api/courses/check-limit?metric=courses_created
func (h *Handler) handleCheckLimit(w http.ResponseWriter, r *http.Request) {
	id := h.identity(r)

	rawMetric := r.URL.Query().Get("metric")
	if rawMetric == "" {
		rawMetric = string(usage.MetricCoursesCreated)
	}
	metric, err := usage.ParseMetric(rawMetric)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid metric")
		return
	}

	if err := h.gate.CanCreate(r.Context(), id.UserID, id.Email, metric, 1); err != nil {
		h.respondDomainError(r.Context(), w, err)
		return
	}

	respondJSON(w, http.StatusOK, messageResponse{Message: "Allowed"})
}

type trackUsageRequest struct {
	Metric string `json:"metric"`
	Count  int64  `json:"count"`
}

// handleTrackUsage records consumption after a metered action succeeded.
// Admission was already checked by check-limit; this is trusted accounting.
//
//	POST /api/courses/track-usage {"metric": "courses_created", "count": 1}
func (h *Handler) handleTrackUsage(w http.ResponseWriter, r *http.Request) {
	id := h.identity(r)

	// The original client posts an empty body for a single course creation.
	req := trackUsageRequest{Metric: string(usage.MetricCoursesCreated), Count: 1}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	metric, err := usage.ParseMetric(req.Metric)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid metric")
		return
	}
	if req.Count <= 0 {
		respondError(w, http.StatusBadRequest, "Invalid count")
		return
	}

	// Ensure the record exists before the relative update: first-ever call
	// for a user may be a tracking call.
	if _, err := h.store.GetOrCreate(r.Context(), id.UserID); err != nil {
		h.respondDomainError(r.Context(), w, err)
		return
	}

	if err := h.store.Increment(r.Context(), id.UserID, metric, req.Count); err != nil {
		h.respondDomainError(r.Context(), w, err)
		return
	}

	respondJSON(w, http.StatusOK, messageResponse{Message: "Usage tracked"})
}
