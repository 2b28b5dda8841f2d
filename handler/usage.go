package handler

import (
	"net/http"
)

// handleUsageStats returns the user's consumption against their plan limits.
// Entitlement is resolved on the way, so a first-time caller leaves this
// endpoint already classified.
//
//	GET /api/usage/stats
func (h *Handler) handleUsageStats(w http.ResponseWriter, r *http.Request) {
	id := h.identity(r)

	stats, err := h.gate.Stats(r.Context(), id.UserID, id.Email)
	if err != nil {
		h.respondDomainError(r.Context(), w, err)
		return
	}

	respondJSON(w, http.StatusOK, stats)
}
