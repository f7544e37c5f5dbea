package order

import (
	"context"

	"github.com/antonminaichev/storefront/internal/events"
	"github.com/antonminaichev/storefront/internal/types/order"
	"github.com/antonminaichev/storefront/internal/types/product"
	"github.com/antonminaichev/storefront/internal/types/user"
)

type OrderStore interface {
	GetOrder(ctx context.Context, id string) (*order.Order, error)
	CreateOrder(ctx context.Context, o *order.Order) error
	UpdateOrder(ctx context.Context, o *order.Order) error
	ListOrdersByUser(ctx context.Context, userID string) ([]order.Order, error)
	ListOrders(ctx context.Context) ([]order.Order, error)
}

// UserStore bumps the per-user order counters after checkout and resolves
// buyers for the admin order list.
type UserStore interface {
	IncrementOrderStats(ctx context.Context, userID string, total float64) error
	FindUserByID(ctx context.Context, id string) (*user.User, error)
}

type ProductReader interface {
	GetProduct(ctx context.Context, id string) (*product.Product, error)
}

type CartClearer interface {
	ClearCart(ctx context.Context, userID string) error
}

type EventSink interface {
	Dispatch(e events.Event) bool
}

type nopSink struct{}

func (nopSink) Dispatch(events.Event) bool { return true }
