package address

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/antonminaichev/storefront/internal/middleware"
	"github.com/antonminaichev/storefront/internal/response"
	"github.com/antonminaichev/storefront/internal/types/address"
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
	case errors.Is(err, ErrNotFound):
		response.Error(w, http.StatusNotFound, "Address not found")
	case errors.Is(err, ErrIncomplete):
		response.Error(w, http.StatusBadRequest, "Please fill in all required address fields")
	default:
		response.ServerError(w, op, err)
	}
}

func (h *Handler) ListAddresses(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.List(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		response.ServerError(w, "list addresses", err)
		return
	}
	if list == nil {
		list = []address.Address{}
	}
	response.JSON(w, http.StatusOK, map[string]any{"addresses": list})
}

func (h *Handler) CreateAddress(w http.ResponseWriter, r *http.Request) {
	var in address.Address
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	a, err := h.svc.Create(r.Context(), middleware.UserIDFromContext(r.Context()), in)
	if err != nil {
		writeError(w, "create address", err)
		return
	}
	response.JSON(w, http.StatusCreated, map[string]any{"address": a})
}

func (h *Handler) UpdateAddress(w http.ResponseWriter, r *http.Request) {
	var in address.Address
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	a, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), middleware.UserIDFromContext(r.Context()), in)
	if err != nil {
		writeError(w, "update address", err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{"address": a})
}

func (h *Handler) DeleteAddress(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id"), middleware.UserIDFromContext(r.Context())); err != nil {
		writeError(w, "delete address", err)
		return
	}
	response.JSON(w, http.StatusOK, response.Message{Message: "Address deleted"})
}

func (h *Handler) SetDefaultAddress(w http.ResponseWriter, r *http.Request) {
	a, err := h.svc.SetDefault(r.Context(), chi.URLParam(r, "id"), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, "set default address", err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{"address": a})
}
