package order

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/antonminaichev/storefront/internal/middleware"
	"github.com/antonminaichev/storefront/internal/response"
	"github.com/antonminaichev/storefront/internal/types/order"
	"github.com/go-chi/chi/v5"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

var validationMessages = map[error]string{
	order.ErrEmptyItems:           "Order items are required",
	order.ErrInvalidItem:          "Each item needs a product and a quantity of at least 1",
	order.ErrInvalidPaymentMethod: "Unsupported payment method",
	order.ErrIncompleteAddress:    "Shipping address is incomplete",
	order.ErrInvalidStatus:        "Invalid order status",
	ErrInvalidCard:                "Invalid card number",
}

// writeError maps service errors to responses. forbidden is the 403 text,
// which differs per route.
func writeError(w http.ResponseWriter, op string, err error, forbidden string) {
	for target, msg := range validationMessages {
		if errors.Is(err, target) {
			response.Error(w, http.StatusBadRequest, msg)
			return
		}
	}
	switch {
	case errors.Is(err, ErrNotFound):
		response.Error(w, http.StatusNotFound, "Order not found")
	case errors.Is(err, ErrForbidden):
		response.Error(w, http.StatusForbidden, forbidden)
	case errors.Is(err, order.ErrCancelWindowExpired):
		response.Error(w, http.StatusBadRequest, "Cancellation window expired")
	default:
		response.ServerError(w, op, err)
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.ListByUser(r.Context(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		response.ServerError(w, "list orders", err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{"orders": orders})
}

func (h *Handler) ListAllOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.ListAll(r.Context())
	if err != nil {
		response.ServerError(w, "list all orders", err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{"orders": orders})
}

func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if !decode(w, r, &req) {
		return
	}
	o, err := h.svc.Create(r.Context(), middleware.UserIDFromContext(r.Context()), req)
	if err != nil {
		writeError(w, "create order", err, "")
		return
	}
	response.JSON(w, http.StatusCreated, map[string]any{"order": o})
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	o, err := h.svc.Get(ctx, chi.URLParam(r, "id"), middleware.UserIDFromContext(ctx), middleware.RoleFromContext(ctx))
	if err != nil {
		writeError(w, "get order", err, "Not authorized to view this order")
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{"order": o})
}

func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req StatusRequest
	if !decode(w, r, &req) {
		return
	}
	o, err := h.svc.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeError(w, "update order status", err, "")
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{"order": o})
}

type cancelReq struct {
	Reason string `json:"reason"`
}

type cancelResp struct {
	Message    string            `json:"message"`
	Order      *order.Order      `json:"order"`
	RefundInfo *order.RefundInfo `json:"refundInfo"`
}

func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	var req cancelReq
	// the body is optional
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	o, refund, err := h.svc.Cancel(r.Context(), chi.URLParam(r, "id"), middleware.UserIDFromContext(r.Context()), req.Reason)
	if errors.Is(err, order.ErrAlreadyClosed) {
		response.Error(w, http.StatusBadRequest, fmt.Sprintf("Order cannot be cancelled: %s", err))
		return
	}
	if err != nil {
		writeError(w, "cancel order", err, "Not authorized to cancel this order")
		return
	}
	response.JSON(w, http.StatusOK, cancelResp{
		Message:    "Order cancelled successfully",
		Order:      o,
		RefundInfo: refund,
	})
}

func (h *Handler) UpdateDeliveryTracking(w http.ResponseWriter, r *http.Request) {
	var req TrackingRequest
	if !decode(w, r, &req) {
		return
	}
	o, err := h.svc.UpdateTracking(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeError(w, "update delivery tracking", err, "")
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{"order": o})
}
