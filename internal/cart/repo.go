package cart

import (
	"context"

	"github.com/antonminaichev/storefront/internal/types/cart"
	"github.com/antonminaichev/storefront/internal/types/product"
)

type CartRepository interface {
	GetCart(ctx context.Context, userID string) (*cart.Cart, error)
	SaveCart(ctx context.Context, c *cart.Cart) error
	ClearCart(ctx context.Context, userID string) error
}

type ProductReader interface {
	GetProduct(ctx context.Context, id string) (*product.Product, error)
}
