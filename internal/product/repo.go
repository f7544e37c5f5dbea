package product

import (
	"context"

	"github.com/antonminaichev/storefront/internal/types/product"
)

type ProductRepository interface {
	ListProducts(ctx context.Context, category string) ([]product.Product, error)
	GetProduct(ctx context.Context, id string) (*product.Product, error)
	CreateProduct(ctx context.Context, p *product.Product) error
	UpdateProduct(ctx context.Context, p *product.Product) error
	DeleteProduct(ctx context.Context, id string) error
}
