package product

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/antonminaichev/storefront/internal/response"
	"github.com/antonminaichev/storefront/internal/types/product"
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
		response.Error(w, http.StatusNotFound, "Product not found")
	case errors.Is(err, ErrInvalidProduct):
		response.Error(w, http.StatusBadRequest, "Name, category and a non-negative price are required")
	default:
		response.ServerError(w, op, err)
	}
}

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.svc.List(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		response.ServerError(w, "list products", err)
		return
	}
	if products == nil {
		products = []product.Product{}
	}
	response.JSON(w, http.StatusOK, map[string]any{"products": products})
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "get product", err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{"product": p})
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var in product.Product
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	p, err := h.svc.Create(r.Context(), in)
	if err != nil {
		writeError(w, "create product", err)
		return
	}
	response.JSON(w, http.StatusCreated, map[string]any{"product": p})
}

func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var in product.Product
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	p, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, "update product", err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{"product": p})
}

func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, "delete product", err)
		return
	}
	response.JSON(w, http.StatusOK, response.Message{Message: "Product deleted"})
}

// ExportProducts streams the catalog as products.xlsx. The workbook is built
// in memory first so a failure can still produce a JSON error.
func (h *Handler) ExportProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.svc.List(r.Context(), "")
	if err != nil {
		response.ServerError(w, "export products", err)
		return
	}
	var buf bytes.Buffer
	if err := WriteWorkbook(&buf, products); err != nil {
		response.ServerError(w, "write workbook", err)
		return
	}
	w.Header().Set("Content-Disposition", "attachment; filename=products.xlsx")
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
