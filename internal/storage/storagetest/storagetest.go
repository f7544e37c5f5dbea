// Package storagetest holds the behaviour every storage backend must share.
package storagetest

import (
	"context"
	"testing"
	"time"

	"github.com/antonminaichev/storefront/internal/storage"
	"github.com/antonminaichev/storefront/internal/types/address"
	"github.com/antonminaichev/storefront/internal/types/cart"
	"github.com/antonminaichev/storefront/internal/types/order"
	"github.com/antonminaichev/storefront/internal/types/product"
	"github.com/antonminaichev/storefront/internal/types/user"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run exercises s against a fresh, empty database.
func Run(t *testing.T, s storage.Storage) {
	t.Run("users", func(t *testing.T) { testUsers(t, s) })
	t.Run("products", func(t *testing.T) { testProducts(t, s) })
	t.Run("carts", func(t *testing.T) { testCarts(t, s) })
	t.Run("orders", func(t *testing.T) { testOrders(t, s) })
	t.Run("addresses", func(t *testing.T) { testAddresses(t, s) })
}

func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

func testUsers(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	u := &user.User{ID: uuid.NewString(), Name: "Asha", Email: "asha@example.com", PasswordHash: "h", Role: user.RoleUser, CreatedAt: now(), UpdatedAt: now()}
	require.NoError(t, s.CreateUser(ctx, u))

	dup := *u
	dup.ID = uuid.NewString()
	assert.ErrorIs(t, s.CreateUser(ctx, &dup), storage.ErrDuplicate)

	got, err := s.FindUserByEmail(ctx, "asha@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "h", got.PasswordHash)

	require.NoError(t, s.IncrementOrderStats(ctx, u.ID, 120.5))
	require.NoError(t, s.IncrementOrderStats(ctx, u.ID, 79.5))
	require.NoError(t, s.SetUserRole(ctx, u.ID, user.RoleAdmin))
	got, err = s.FindUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.OrderCount)
	assert.InDelta(t, 200.0, got.TotalSpent, 0.001)
	assert.Equal(t, user.RoleAdmin, got.Role)

	_, err = s.FindUserByID(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func testProducts(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	older := &product.Product{ID: uuid.NewString(), Name: "Tote", Category: "bags", Price: 799, CreatedAt: now().Add(-time.Hour)}
	newer := &product.Product{ID: uuid.NewString(), Name: "Boots", Category: "shoes", Price: 2499, CreatedAt: now()}
	require.NoError(t, s.CreateProduct(ctx, older))
	require.NoError(t, s.CreateProduct(ctx, newer))

	all, err := s.ListProducts(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, newer.ID, all[0].ID)

	shoes, err := s.ListProducts(ctx, "shoes")
	require.NoError(t, err)
	require.Len(t, shoes, 1)

	older.Price = 699
	require.NoError(t, s.UpdateProduct(ctx, older))
	got, err := s.GetProduct(ctx, older.ID)
	require.NoError(t, err)
	assert.Equal(t, 699.0, got.Price)

	require.NoError(t, s.DeleteProduct(ctx, older.ID))
	assert.ErrorIs(t, s.DeleteProduct(ctx, older.ID), storage.ErrNotFound)
	assert.ErrorIs(t, s.UpdateProduct(ctx, older), storage.ErrNotFound)
}

func testCarts(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	_, err := s.GetCart(ctx, "u-cart")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	require.NoError(t, s.ClearCart(ctx, "u-cart"))

	c := &cart.Cart{UserID: "u-cart", Items: []cart.Item{{Product: "p1", Quantity: 2}}, UpdatedAt: now()}
	require.NoError(t, s.SaveCart(ctx, c))
	c.Items = append(c.Items, cart.Item{Product: "p2", Quantity: 1})
	require.NoError(t, s.SaveCart(ctx, c))

	got, err := s.GetCart(ctx, "u-cart")
	require.NoError(t, err)
	assert.Len(t, got.Items, 2)

	require.NoError(t, s.ClearCart(ctx, "u-cart"))
	got, err = s.GetCart(ctx, "u-cart")
	require.NoError(t, err)
	assert.Empty(t, got.Items)
}

func testOrders(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	created := now()
	o, err := order.New(order.Draft{
		UserID:   "u-orders",
		Items:    []order.Item{{Product: "p1", Quantity: 1, Price: 300}},
		Subtotal: 300, Shipping: 50, Tax: 54, Total: 404,
		ShippingAddress: order.ShippingAddress{
			FullName: "A", Email: "a@b.c", Phone: "1", Address: "x", City: "c", State: "s", Pincode: "1", Country: "IN",
		},
		Payment: order.PaymentInfo{Method: order.MethodGooglePay, GooglePayToken: "tok"},
	}, created)
	require.NoError(t, err)
	require.NoError(t, s.CreateOrder(ctx, o))

	got, err := s.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusConfirmed, got.Status)
	assert.True(t, got.CancellationInfo.CancelDeadline.Equal(created.Add(order.CancelWindow)))
	require.Len(t, got.StatusHistory, 1)

	refund, err := got.Cancel("", created.Add(time.Minute))
	require.NoError(t, err)
	require.NotNil(t, refund)
	require.NoError(t, s.UpdateOrder(ctx, got))

	got, err = s.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusCancelled, got.Status)
	assert.Equal(t, order.PaymentRefunded, got.PaymentInfo.Status)
	require.NotNil(t, got.CancellationInfo.RefundAmount)
	assert.Equal(t, 404.0, *got.CancellationInfo.RefundAmount)

	mine, err := s.ListOrdersByUser(ctx, "u-orders")
	require.NoError(t, err)
	assert.Len(t, mine, 1)
	none, err := s.ListOrdersByUser(ctx, "someone-else")
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = s.GetOrder(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func testAddresses(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	a := &address.Address{ID: uuid.NewString(), UserID: "u-addr", FullName: "A", City: "Pune", IsDefault: true, CreatedAt: now()}
	b := &address.Address{ID: uuid.NewString(), UserID: "u-addr", FullName: "B", City: "Goa", CreatedAt: now()}
	require.NoError(t, s.CreateAddress(ctx, a))
	require.NoError(t, s.CreateAddress(ctx, b))

	_, err := s.GetAddress(ctx, a.ID, "intruder")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.ErrorIs(t, s.DeleteAddress(ctx, a.ID, "intruder"), storage.ErrNotFound)

	require.NoError(t, s.ClearDefaultAddress(ctx, "u-addr"))
	b.IsDefault = true
	require.NoError(t, s.UpdateAddress(ctx, b))

	list, err := s.ListAddresses(ctx, "u-addr")
	require.NoError(t, err)
	require.Len(t, list, 2)
	defaults := 0
	for _, x := range list {
		if x.IsDefault {
			defaults++
			assert.Equal(t, b.ID, x.ID)
		}
	}
	assert.Equal(t, 1, defaults)

	require.NoError(t, s.DeleteAddress(ctx, a.ID, "u-addr"))
}
