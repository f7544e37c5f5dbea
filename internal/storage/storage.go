package storage

import (
	"context"
	"errors"

	"github.com/antonminaichev/storefront/internal/types/address"
	"github.com/antonminaichev/storefront/internal/types/cart"
	"github.com/antonminaichev/storefront/internal/types/order"
	"github.com/antonminaichev/storefront/internal/types/product"
	"github.com/antonminaichev/storefront/internal/types/user"
)

// ErrNotFound and ErrDuplicate are what every backend returns for a missing
// document and a unique key violation.
var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate key")
)

// UserRepository stores accounts and their order aggregates.
type UserRepository interface {
	CreateUser(ctx context.Context, u *user.User) error
	FindUserByEmail(ctx context.Context, email string) (*user.User, error)
	FindUserByID(ctx context.Context, id string) (*user.User, error)
	SetUserRole(ctx context.Context, id string, role user.Role) error
	IncrementOrderStats(ctx context.Context, userID string, total float64) error
}

// ProductRepository is the catalog.
type ProductRepository interface {
	ListProducts(ctx context.Context, category string) ([]product.Product, error)
	GetProduct(ctx context.Context, id string) (*product.Product, error)
	CreateProduct(ctx context.Context, p *product.Product) error
	UpdateProduct(ctx context.Context, p *product.Product) error
	DeleteProduct(ctx context.Context, id string) error
}

// CartRepository keeps one cart document per user.
type CartRepository interface {
	GetCart(ctx context.Context, userID string) (*cart.Cart, error)
	SaveCart(ctx context.Context, c *cart.Cart) error
	ClearCart(ctx context.Context, userID string) error
}

// OrderRepository persists whole order documents. Updates replace the
// document; there is no version check.
type OrderRepository interface {
	GetOrder(ctx context.Context, id string) (*order.Order, error)
	CreateOrder(ctx context.Context, o *order.Order) error
	UpdateOrder(ctx context.Context, o *order.Order) error
	ListOrdersByUser(ctx context.Context, userID string) ([]order.Order, error)
	ListOrders(ctx context.Context) ([]order.Order, error)
}

// AddressRepository is the per-user address book.
type AddressRepository interface {
	ListAddresses(ctx context.Context, userID string) ([]address.Address, error)
	GetAddress(ctx context.Context, id, userID string) (*address.Address, error)
	CreateAddress(ctx context.Context, a *address.Address) error
	UpdateAddress(ctx context.Context, a *address.Address) error
	DeleteAddress(ctx context.Context, id, userID string) error
	ClearDefaultAddress(ctx context.Context, userID string) error
}

// Storage объединяет все репозитории.
type Storage interface {
	UserRepository
	ProductRepository
	CartRepository
	OrderRepository
	AddressRepository

	Ping(ctx context.Context) error
	Close() error
}
