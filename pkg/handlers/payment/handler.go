package payment

import (
	"encoding/json"
	"net/http"

	"github.com/fortuna-labs/report-funnel/pkg/handlers/render"
	"github.com/fortuna-labs/report-funnel/pkg/models/api"
	"github.com/fortuna-labs/report-funnel/pkg/models/domain"
	"github.com/fortuna-labs/report-funnel/pkg/services/payment"
)

type Handler struct {
	gate payment.Gate
}

func NewHandler(gate payment.Gate) *Handler {
	return &Handler{gate: gate}
}

func (h *Handler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.CreateIntentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.Error(ctx, w, &domain.ValidationError{Field: "body", Reason: "malformed JSON"})
		return
	}

	ref, err := h.gate.CreateIntent(ctx, req.AccessToken, req.Amount, domain.ProductTier(req.Tier))
	if err != nil {
		render.Error(ctx, w, err)
		return
	}

	render.JSON(ctx, w, http.StatusCreated, api.CreateIntentResponse{MerchantReference: ref})
}

func (h *Handler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.VerifyPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		render.Error(ctx, w, &domain.ValidationError{Field: "body", Reason: "malformed JSON"})
		return
	}

	intent, err := h.gate.Verify(ctx, req.ExternalReceiptID, req.MerchantReference)
	if err != nil {
		render.Error(ctx, w, err)
		return
	}

	render.JSON(ctx, w, http.StatusOK, api.VerifyPaymentResponse{
		Status:      string(intent.Status),
		AccessToken: intent.AccessToken,
		IsPremium:   intent.Tier == domain.TierPremium,
	})
}
