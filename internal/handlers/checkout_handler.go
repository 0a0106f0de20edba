package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"storefront/internal/models"
	"storefront/internal/services"
	"storefront/internal/transport"

	"github.com/rs/zerolog"
)

type CheckoutHandler struct {
	checkout *services.CheckoutService
	logger   zerolog.Logger
}

func NewCheckoutHandler(checkout *services.CheckoutService, logger zerolog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		checkout: checkout,
		logger:   logger,
	}
}

func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req models.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	receipt, err := h.checkout.Submit(r.Context(), req)
	if err == nil {
		respondWithJSON(w, http.StatusCreated, receipt)
		return
	}

	var terr *transport.Error
	switch {
	case errors.Is(err, services.ErrPaymentMethodRequired),
		errors.Is(err, services.ErrDeliveryAddressMissing):
		respondWithError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, services.ErrNoRetailer),
		errors.Is(err, services.ErrEmptyCart),
		errors.Is(err, services.ErrBelowMinimumOrder):
		respondWithError(w, http.StatusUnprocessableEntity, "checkout_not_ready", err.Error())
	case errors.As(err, &terr) && terr.Status == http.StatusPaymentRequired:
		respondWithError(w, http.StatusPaymentRequired, "payment_failed", terr.Error())
	case errors.As(err, &terr):
		respondWithError(w, http.StatusBadGateway, "checkout_failed", terr.Error())
	default:
		respondWithError(w, http.StatusBadGateway, "checkout_failed", "Checkout failed, please try again")
	}
}
