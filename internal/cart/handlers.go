package cart

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/antonminaichev/storefront/internal/middleware"
	"github.com/antonminaichev/storefront/internal/response"
	"github.com/antonminaichev/storefront/internal/types/cart"
	"github.com/go-chi/chi/v5"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func writeError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrProductNotFound):
		response.Error(w, http.StatusNotFound, "Product not found")
	case errors.Is(err, ErrCartNotFound):
		response.Error(w, http.StatusNotFound, "Cart not found")
	case errors.Is(err, ErrItemNotFound):
		response.Error(w, http.StatusNotFound, "Cart item not found")
	case errors.Is(err, ErrInvalidQuantity):
		response.Error(w, http.StatusBadRequest, "Quantity must be at least 1")
	default:
		response.ServerError(w, op, err)
	}
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	v, err := h.svc.Get(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, "get cart", err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]*cart.View{"cart": v})
}

func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req cart.AddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProductID == "" {
		response.Error(w, http.StatusBadRequest, "productId is required")
		return
	}
	v, err := h.svc.Add(r.Context(), middleware.UserIDFromContext(r.Context()), req)
	if err != nil {
		writeError(w, "add to cart", err)
		return
	}
	response.JSON(w, http.StatusCreated, map[string]*cart.View{"cart": v})
}

func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	var req cart.UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProductID == "" {
		response.Error(w, http.StatusBadRequest, "productId is required")
		return
	}
	v, err := h.svc.Update(r.Context(), middleware.UserIDFromContext(r.Context()), req)
	if err != nil {
		writeError(w, "update cart", err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]*cart.View{"cart": v})
}

func (h *Handler) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	v, err := h.svc.Remove(r.Context(), middleware.UserIDFromContext(r.Context()), chi.URLParam(r, "productId"))
	if err != nil {
		writeError(w, "remove from cart", err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]*cart.View{"cart": v})
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Clear(r.Context(), middleware.UserIDFromContext(r.Context())); err != nil {
		response.ServerError(w, "clear cart", err)
		return
	}
	response.JSON(w, http.StatusOK, response.Message{Message: "Cart cleared"})
}

func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.Summary(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, "cart summary", err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]*cart.Summary{"summary": s})
}
