package http

import (
	"fmt"
	"net/http"
	"time"

	"acetrack-backend/internal/authz"
	"acetrack-backend/internal/domain"
	"acetrack-backend/internal/service"
)

type SubscriptionHandler struct {
	subService service.SubscriptionService
}

func NewSubscriptionHandler(ss service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{subService: ss}
}

func (h *SubscriptionHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := requireActor(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var in service.CreateSubscriptionInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, err)
		return
	}

	sub, err := h.subService.CreateSubscription(r.Context(), actor, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

func (h *SubscriptionHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, err := requireActor(r)
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	sub, err := h.subService.GetSubscription(r.Context(), actor, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (h *SubscriptionHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, err := requireActor(r)
	if err != nil {
		writeError(w, err)
		return
	}
	orgFilter, err := queryInt32(r, "org_id")
	if err != nil {
		writeError(w, err)
		return
	}

	subs, err := h.subService.ListSubscriptions(r.Context(), actor, orgFilter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, subs)
}

type verifySubscriptionRequest struct {
	Approve bool   `json:"approve"`
	Notes   string `json:"notes"`
}

func (h *SubscriptionHandler) Verify(w http.ResponseWriter, r *http.Request) {
	actor, err := requireActor(r)
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req verifySubscriptionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	sub, err := h.subService.VerifySubscription(r.Context(), actor, id, req.Approve, req.Notes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (h *SubscriptionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	actor, err := requireActor(r)
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	sub, err := h.subService.CancelSubscription(r.Context(), actor, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

type updateSubscriptionRequest struct {
	Duration      *string `json:"duration"`
	StartDate     *string `json:"start_date"`
	AmountCents   *int32  `json:"amount_cents"`
	PaymentMethod *string `json:"payment_method"`
	ReceiptRef    *string `json:"receipt_ref"`
	Notes         *string `json:"notes"`
}

func (h *SubscriptionHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, err := requireActor(r)
	if err != nil {
		writeError(w, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req updateSubscriptionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	var patch authz.SubscriptionUpdate
	if req.Duration != nil {
		d, ok := domain.ParseSubscriptionDuration(*req.Duration)
		if !ok {
			writeError(w, fmt.Errorf("%w: unknown duration %q", domain.ErrValidation, *req.Duration))
			return
		}
		patch.Duration = &d
	}
	if req.StartDate != nil {
		t, err := time.Parse("2006-01-02", *req.StartDate)
		if err != nil {
			writeError(w, fmt.Errorf("%w: start_date must be YYYY-MM-DD", domain.ErrValidation))
			return
		}
		patch.StartDate = &t
	}
	patch.AmountCents = req.AmountCents
	patch.PaymentMethod = req.PaymentMethod
	patch.ReceiptRef = req.ReceiptRef
	patch.Notes = req.Notes

	sub, err := h.subService.UpdateSubscription(r.Context(), actor, id, patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}
