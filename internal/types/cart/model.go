package cart

import (
	"time"

	"github.com/antonminaichev/storefront/internal/types/product"
)

type Item struct {
	Product  string `json:"product" bson:"product"`
	Quantity int    `json:"quantity" bson:"quantity"`
}

type Cart struct {
	UserID    string    `json:"user" bson:"user"`
	Items     []Item    `json:"items" bson:"items"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Line is a cart item with its product resolved from the catalog.
type Line struct {
	Product  *product.Product `json:"product"`
	Quantity int              `json:"quantity"`
}

type View struct {
	Items []Line `json:"items"`
}

type AddRequest struct {
	ProductID string `json:"productId"`
	Quantity  *int   `json:"quantity"`
}

type UpdateRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// Summary is an advisory checkout quote built from current catalog prices.
type Summary struct {
	Subtotal float64 `json:"subtotal"`
	Shipping float64 `json:"shipping"`
	Tax      float64 `json:"tax"`
	Total    float64 `json:"total"`
	Items    int     `json:"items"`
}
