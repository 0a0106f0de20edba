package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"storefront/internal/models"
	"storefront/internal/services"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

type CartHandler struct {
	cart   *services.CartService
	logger zerolog.Logger
}

func NewCartHandler(cart *services.CartService, logger zerolog.Logger) *CartHandler {
	return &CartHandler{
		cart:   cart,
		logger: logger,
	}
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.cart.View())
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req models.AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}
	item := models.CartItem{ProductID: req.ProductID, Name: req.Name, Price: req.Price, Image: req.Image}

	if err := h.cart.AddItem(r.Context(), item, qty); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_item", err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, h.cart.View())
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	if req.Quantity == nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "quantity is required")
		return
	}

	h.cart.UpdateQuantity(r.Context(), models.ID(mux.Vars(r)["productId"]), *req.Quantity)
	respondWithJSON(w, http.StatusOK, h.cart.View())
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	h.cart.RemoveItem(r.Context(), models.ID(mux.Vars(r)["productId"]))
	respondWithJSON(w, http.StatusOK, h.cart.View())
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.cart.ClearCart(r.Context())
	respondWithJSON(w, http.StatusOK, h.cart.View())
}

// SelectRetailer takes a retailer object, or JSON null to deselect.
func (h *CartHandler) SelectRetailer(w http.ResponseWriter, r *http.Request) {
	var retailer *models.Retailer
	if err := json.NewDecoder(r.Body).Decode(&retailer); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	if err := h.cart.SelectRetailer(r.Context(), retailer); err != nil {
		if errors.Is(err, services.ErrInvalidRetailer) {
			respondWithError(w, http.StatusBadRequest, "invalid_retailer", err.Error())
			return
		}
		h.logger.Error().Err(err).Msg("Retailer selection failed")
		respondWithError(w, http.StatusInternalServerError, "internal_error", "Failed to select retailer")
		return
	}
	respondWithJSON(w, http.StatusOK, h.cart.View())
}

func (h *CartHandler) DeselectRetailer(w http.ResponseWriter, r *http.Request) {
	h.cart.SelectRetailer(r.Context(), nil)
	respondWithJSON(w, http.StatusOK, h.cart.View())
}
