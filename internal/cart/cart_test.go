package cart

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/antonminaichev/storefront/internal/middleware"
	"github.com/antonminaichev/storefront/internal/storage"
	"github.com/antonminaichev/storefront/internal/types/cart"
	"github.com/antonminaichev/storefront/internal/types/product"
	"github.com/antonminaichev/storefront/internal/types/user"
)

type stubCartRepo struct {
	carts   map[string]*cart.Cart
	errGet  error
	errSave error
}

func newStubCartRepo() *stubCartRepo {
	return &stubCartRepo{carts: make(map[string]*cart.Cart)}
}

func (r *stubCartRepo) GetCart(ctx context.Context, userID string) (*cart.Cart, error) {
	if r.errGet != nil {
		return nil, r.errGet
	}
	c, ok := r.carts[userID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *c
	cp.Items = append([]cart.Item(nil), c.Items...)
	return &cp, nil
}

func (r *stubCartRepo) SaveCart(ctx context.Context, c *cart.Cart) error {
	if r.errSave != nil {
		return r.errSave
	}
	cp := *c
	r.carts[c.UserID] = &cp
	return nil
}

func (r *stubCartRepo) ClearCart(ctx context.Context, userID string) error {
	if c, ok := r.carts[userID]; ok {
		c.Items = nil
	}
	return nil
}

type stubProducts map[string]*product.Product

func (s stubProducts) GetProduct(ctx context.Context, id string) (*product.Product, error) {
	p, ok := s[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return p, nil
}

func catalog() stubProducts {
	return stubProducts{
		"p1": {ID: "p1", Name: "Kurta", Price: 199.5},
		"p2": {ID: "p2", Name: "Sneakers", Price: 450},
	}
}

func intPtr(v int) *int { return &v }

func TestAddToCart(t *testing.T) {
	repo := newStubCartRepo()
	svc := NewService(repo, catalog())

	v, err := svc.Add(context.Background(), "u1", cart.AddRequest{ProductID: "p1"})
	if err != nil {
		t.Fatal(err)
	}
	if len(v.Items) != 1 || v.Items[0].Quantity != 1 {
		t.Fatalf("expected one line with quantity 1, got %+v", v.Items)
	}

	v, err = svc.Add(context.Background(), "u1", cart.AddRequest{ProductID: "p1", Quantity: intPtr(2)})
	if err != nil {
		t.Fatal(err)
	}
	if v.Items[0].Quantity != 3 {
		t.Errorf("expected merged quantity 3, got %d", v.Items[0].Quantity)
	}
	if v.Items[0].Product.Name != "Kurta" {
		t.Errorf("expected product details on the line, got %+v", v.Items[0].Product)
	}
}

func TestAddToCartUnknownProduct(t *testing.T) {
	svc := NewService(newStubCartRepo(), catalog())

	_, err := svc.Add(context.Background(), "u1", cart.AddRequest{ProductID: "nope"})
	if !errors.Is(err, ErrProductNotFound) {
		t.Errorf("expected ErrProductNotFound, got %v", err)
	}
}

func TestUpdateCartItem(t *testing.T) {
	repo := newStubCartRepo()
	repo.carts["u1"] = &cart.Cart{UserID: "u1", Items: []cart.Item{{Product: "p1", Quantity: 1}, {Product: "p2", Quantity: 1}}}
	svc := NewService(repo, catalog())

	v, err := svc.Update(context.Background(), "u1", cart.UpdateRequest{ProductID: "p2", Quantity: 4})
	if err != nil {
		t.Fatal(err)
	}
	if v.Items[1].Quantity != 4 {
		t.Errorf("expected quantity 4, got %d", v.Items[1].Quantity)
	}

	v, err = svc.Update(context.Background(), "u1", cart.UpdateRequest{ProductID: "p1", Quantity: 0})
	if err != nil {
		t.Fatal(err)
	}
	if len(v.Items) != 1 || v.Items[0].Product.ID != "p2" {
		t.Errorf("expected p1 removed, got %+v", v.Items)
	}

	_, err = svc.Update(context.Background(), "u1", cart.UpdateRequest{ProductID: "p9", Quantity: 1})
	if !errors.Is(err, ErrItemNotFound) {
		t.Errorf("expected ErrItemNotFound, got %v", err)
	}

	_, err = svc.Update(context.Background(), "u2", cart.UpdateRequest{ProductID: "p1", Quantity: 1})
	if !errors.Is(err, ErrCartNotFound) {
		t.Errorf("expected ErrCartNotFound, got %v", err)
	}
}

func TestGetCartSkipsDeletedProducts(t *testing.T) {
	repo := newStubCartRepo()
	repo.carts["u1"] = &cart.Cart{UserID: "u1", Items: []cart.Item{{Product: "gone", Quantity: 1}, {Product: "p2", Quantity: 2}}}
	svc := NewService(repo, catalog())

	v, err := svc.Get(context.Background(), "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(v.Items) != 1 {
		t.Errorf("expected 1 line, got %d", len(v.Items))
	}

	empty, err := svc.Get(context.Background(), "nobody")
	if err != nil || len(empty.Items) != 0 {
		t.Errorf("expected empty cart, got %+v %v", empty, err)
	}
}

func TestGetCartError(t *testing.T) {
	repo := newStubCartRepo()
	repo.errGet = errors.New("db error")
	svc := NewService(repo, catalog())

	if _, err := svc.Get(context.Background(), "u1"); err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestQuote(t *testing.T) {
	p := catalog()
	tests := []struct {
		name  string
		lines []cart.Line
		want  cart.Summary
	}{
		{
			name:  "below free shipping",
			lines: []cart.Line{{Product: p["p1"], Quantity: 2}},
			want:  cart.Summary{Subtotal: 399, Shipping: 50, Tax: 72, Total: 521, Items: 2},
		},
		{
			name:  "free shipping at threshold",
			lines: []cart.Line{{Product: p["p2"], Quantity: 1}, {Product: &product.Product{Price: 50}, Quantity: 1}},
			want:  cart.Summary{Subtotal: 500, Shipping: 0, Tax: 90, Total: 590, Items: 2},
		},
		{
			name:  "empty",
			lines: nil,
			want:  cart.Summary{},
		},
	}
	for _, tt := range tests {
		got := Quote(tt.lines)
		if *got != tt.want {
			t.Errorf("%s: got %+v, want %+v", tt.name, *got, tt.want)
		}
	}
}

func TestCartHandlers(t *testing.T) {
	repo := newStubCartRepo()
	h := NewHandler(NewService(repo, catalog()))
	auth := func(r *http.Request) *http.Request {
		return r.WithContext(middleware.ContextWithUser(r.Context(), "u1", user.RoleUser))
	}

	tests := []struct {
		name       string
		call       func(w http.ResponseWriter, r *http.Request)
		method     string
		body       string
		wantStatus int
	}{
		{"add", h.AddToCart, http.MethodPost, `{"productId":"p1","quantity":2}`, http.StatusCreated},
		{"add missing product", h.AddToCart, http.MethodPost, `{"productId":"zzz"}`, http.StatusNotFound},
		{"add without id", h.AddToCart, http.MethodPost, `{}`, http.StatusBadRequest},
		{"update", h.UpdateCartItem, http.MethodPut, `{"productId":"p1","quantity":5}`, http.StatusOK},
		{"update missing item", h.UpdateCartItem, http.MethodPut, `{"productId":"p2","quantity":5}`, http.StatusNotFound},
		{"summary", h.Summary, http.MethodGet, ``, http.StatusOK},
		{"get", h.GetCart, http.MethodGet, ``, http.StatusOK},
		{"clear", h.ClearCart, http.MethodDelete, ``, http.StatusOK},
	}

	for _, tt := range tests {
		req := auth(httptest.NewRequest(tt.method, "/api/cart", strings.NewReader(tt.body)))
		rec := httptest.NewRecorder()

		tt.call(rec, req)

		if rec.Code != tt.wantStatus {
			t.Errorf("%s: got status %d, want %d (%s)", tt.name, rec.Code, tt.wantStatus, rec.Body.String())
		}
	}
	if len(repo.carts["u1"].Items) != 0 {
		t.Errorf("expected cleared cart, got %+v", repo.carts["u1"].Items)
	}
}
