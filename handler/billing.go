package handler

import (
	"encoding/json"
	"net/http"
)

type checkoutRequest struct {
	PlanID string `json:"plan_id"`
}

type checkoutResponse struct {
	URL string `json:"url"`
}

// handleCheckout starts a mock checkout session for a plan.
//
//	POST /api/accounts/checkout {"plan_id": "pro"}
func (h *Handler) handleCheckout(w http.ResponseWriter, r *http.Request) {
	id := h.identity(r)

	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.PlanID == "" {
		respondError(w, http.StatusBadRequest, "Plan ID required")
		return
	}

	checkout, err := h.payments.CreateCheckout(r.Context(), id.UserID, req.PlanID)
	if err != nil {
		h.respondDomainError(r.Context(), w, err)
		return
	}

	respondJSON(w, http.StatusOK, checkoutResponse{URL: checkout.URL})
}

type paymentSuccessRequest struct {
	PlanID    string `json:"plan_id"`
	SessionID string `json:"session_id"`
}

type paymentSuccessResponse struct {
	Status  string `json:"status"`
	NewPlan string `json:"new_plan"`
}

// handlePaymentSuccess finalizes a confirmed checkout: records the payment
// and assigns the plan unconditionally.
//
//	POST /api/accounts/payment-success {"plan_id": "pro", "session_id": "mock_..."}
func (h *Handler) handlePaymentSuccess(w http.ResponseWriter, r *http.Request) {
	id := h.identity(r)

	var req paymentSuccessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.PlanID == "" {
		respondError(w, http.StatusBadRequest, "Plan ID required")
		return
	}

	planName, err := h.payments.ConfirmPayment(r.Context(), id.UserID, req.PlanID, req.SessionID)
	if err != nil {
		h.respondDomainError(r.Context(), w, err)
		return
	}

	respondJSON(w, http.StatusOK, paymentSuccessResponse{
		Status:  "success",
		NewPlan: planName,
	})
}
