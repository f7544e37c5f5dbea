package order

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/antonminaichev/storefront/internal/events"
	"github.com/antonminaichev/storefront/internal/storage"
	"github.com/antonminaichev/storefront/internal/types/order"
	"github.com/antonminaichev/storefront/internal/types/product"
	"github.com/antonminaichev/storefront/internal/types/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStore struct {
	orders    map[string]*order.Order
	createErr error
	updateErr error
	updates   int
}

func newStubStore() *stubStore {
	return &stubStore{orders: make(map[string]*order.Order)}
}

func (s *stubStore) GetOrder(ctx context.Context, id string) (*order.Order, error) {
	o, ok := s.orders[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (s *stubStore) CreateOrder(ctx context.Context, o *order.Order) error {
	if s.createErr != nil {
		return s.createErr
	}
	cp := *o
	s.orders[o.ID] = &cp
	return nil
}

func (s *stubStore) UpdateOrder(ctx context.Context, o *order.Order) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.updates++
	cp := *o
	s.orders[o.ID] = &cp
	return nil
}

func (s *stubStore) ListOrdersByUser(ctx context.Context, userID string) ([]order.Order, error) {
	var out []order.Order
	for _, o := range s.orders {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (s *stubStore) ListOrders(ctx context.Context) ([]order.Order, error) {
	var out []order.Order
	for _, o := range s.orders {
		out = append(out, *o)
	}
	return out, nil
}

type stubUsers struct {
	counts  map[string]int
	spent   map[string]float64
	err     error
	known   map[string]*user.User
	findErr error
}

func (u *stubUsers) FindUserByID(ctx context.Context, id string) (*user.User, error) {
	if u.findErr != nil {
		return nil, u.findErr
	}
	if found, ok := u.known[id]; ok {
		return found, nil
	}
	return nil, storage.ErrNotFound
}

type stubProducts struct {
	items   map[string]*product.Product
	lookups int
	err     error
}

func (p *stubProducts) GetProduct(ctx context.Context, id string) (*product.Product, error) {
	p.lookups++
	if p.err != nil {
		return nil, p.err
	}
	if found, ok := p.items[id]; ok {
		return found, nil
	}
	return nil, storage.ErrNotFound
}

func (u *stubUsers) IncrementOrderStats(ctx context.Context, userID string, total float64) error {
	if u.err != nil {
		return u.err
	}
	u.counts[userID]++
	u.spent[userID] += total
	return nil
}

type stubCarts struct {
	cleared []string
}

func (c *stubCarts) ClearCart(ctx context.Context, userID string) error {
	c.cleared = append(c.cleared, userID)
	return nil
}

type recordingSink struct {
	got []events.Event
}

func (r *recordingSink) Dispatch(e events.Event) bool {
	r.got = append(r.got, e)
	return true
}

type fixture struct {
	svc      *Service
	store    *stubStore
	products *stubProducts
	users    *stubUsers
	carts *stubCarts
	sink  *recordingSink
	clock time.Time
}

func newFixture() *fixture {
	f := &fixture{
		store:    newStubStore(),
		products: &stubProducts{items: map[string]*product.Product{}},
		users:    &stubUsers{counts: map[string]int{}, spent: map[string]float64{}, known: map[string]*user.User{}},
		carts: &stubCarts{},
		sink:  &recordingSink{},
		clock: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	f.svc = NewService(f.store, f.products, f.users, f.carts, f.sink)
	f.svc.now = func() time.Time { return f.clock }
	return f
}

func sampleRequest(method order.PaymentMethod) CreateRequest {
	return CreateRequest{
		Items:    []order.Item{{Product: "p1", Quantity: 2, Price: 150}},
		Subtotal: 300,
		Shipping: 50,
		Tax:      54,
		Total:    404,
		ShippingAddress: order.ShippingAddress{
			FullName: "Asha Rao", Email: "asha@example.com", Phone: "9000000000",
			Address: "12 MG Road", City: "Bengaluru", State: "KA", Pincode: "560001", Country: "India",
		},
		PaymentInfo: PaymentInput{PaymentInfo: order.PaymentInfo{Method: method}},
	}
}

func TestCreateOrder(t *testing.T) {
	f := newFixture()

	o, err := f.svc.Create(context.Background(), "u1", sampleRequest(order.MethodCOD))
	require.NoError(t, err)

	assert.Equal(t, order.StatusConfirmed, o.Status)
	assert.Equal(t, order.PaymentPending, o.PaymentInfo.Status)
	assert.Equal(t, f.clock.Add(time.Hour), o.CancellationInfo.CancelDeadline)
	assert.Contains(t, f.store.orders, o.ID)
	assert.Equal(t, 1, f.users.counts["u1"])
	assert.Equal(t, 404.0, f.users.spent["u1"])
	assert.Equal(t, []string{"u1"}, f.carts.cleared)
	require.Len(t, f.sink.got, 1)
	assert.Equal(t, events.OrderCreated, f.sink.got[0].Type)
}

func TestCreateOrderEmptyItems(t *testing.T) {
	f := newFixture()
	req := sampleRequest(order.MethodUPI)
	req.Items = nil

	_, err := f.svc.Create(context.Background(), "u1", req)
	assert.ErrorIs(t, err, order.ErrEmptyItems)
	assert.Empty(t, f.store.orders)
	assert.Empty(t, f.carts.cleared)
	assert.Zero(t, f.users.counts["u1"])
}

func TestCreateOrderCardNumber(t *testing.T) {
	t.Run("valid number keeps only last four", func(t *testing.T) {
		f := newFixture()
		req := sampleRequest(order.MethodCard)
		req.PaymentInfo.CardNumber = "4111 1111 1111 1111"

		o, err := f.svc.Create(context.Background(), "u1", req)
		require.NoError(t, err)
		assert.Equal(t, "1111", o.PaymentInfo.CardLast4)
		assert.Equal(t, order.StatusPending, o.Status)
	})

	t.Run("luhn failure is rejected", func(t *testing.T) {
		f := newFixture()
		req := sampleRequest(order.MethodCard)
		req.PaymentInfo.CardNumber = "4111111111111112"

		_, err := f.svc.Create(context.Background(), "u1", req)
		assert.ErrorIs(t, err, ErrInvalidCard)
		assert.Empty(t, f.store.orders)
	})

	t.Run("last four alone is accepted", func(t *testing.T) {
		f := newFixture()
		req := sampleRequest(order.MethodCard)
		req.PaymentInfo.CardLast4 = "4242"

		o, err := f.svc.Create(context.Background(), "u1", req)
		require.NoError(t, err)
		assert.Equal(t, "4242", o.PaymentInfo.CardLast4)
	})
}

func TestCreateOrderAggregateFailureKeepsOrder(t *testing.T) {
	f := newFixture()
	f.users.err = errors.New("db down")

	_, err := f.svc.Create(context.Background(), "u1", sampleRequest(order.MethodWallet))
	assert.Error(t, err)
	assert.Len(t, f.store.orders, 1)
	assert.Empty(t, f.carts.cleared)
}

func TestCancelOrder(t *testing.T) {
	t.Run("owner within window on prepaid order gets refund", func(t *testing.T) {
		f := newFixture()
		req := sampleRequest(order.MethodGooglePay)
		req.PaymentInfo.GooglePayToken = "tok_123"
		o, err := f.svc.Create(context.Background(), "u1", req)
		require.NoError(t, err)

		f.clock = f.clock.Add(30 * time.Minute)
		got, refund, err := f.svc.Cancel(context.Background(), o.ID, "u1", "")
		require.NoError(t, err)
		require.NotNil(t, refund)
		assert.Equal(t, order.RefundPending, refund.Status)
		assert.Equal(t, 404.0, refund.Amount)
		assert.Equal(t, order.StatusCancelled, got.Status)
		assert.Equal(t, order.PaymentRefunded, f.store.orders[o.ID].PaymentInfo.Status)
		assert.Equal(t, "Cancelled by user", got.CancellationInfo.CancelReason)
		assert.Equal(t, events.OrderCancelled, f.sink.got[len(f.sink.got)-1].Type)
	})

	t.Run("window expired leaves order unchanged", func(t *testing.T) {
		f := newFixture()
		o, err := f.svc.Create(context.Background(), "u1", sampleRequest(order.MethodCOD))
		require.NoError(t, err)

		f.clock = f.clock.Add(2 * time.Hour)
		_, _, err = f.svc.Cancel(context.Background(), o.ID, "u1", "changed my mind")
		assert.ErrorIs(t, err, order.ErrCancelWindowExpired)
		assert.Equal(t, order.StatusConfirmed, f.store.orders[o.ID].Status)
		assert.Zero(t, f.store.updates)
	})

	t.Run("other user is forbidden", func(t *testing.T) {
		f := newFixture()
		o, err := f.svc.Create(context.Background(), "u1", sampleRequest(order.MethodCOD))
		require.NoError(t, err)

		_, _, err = f.svc.Cancel(context.Background(), o.ID, "u2", "")
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("missing order", func(t *testing.T) {
		f := newFixture()
		_, _, err := f.svc.Cancel(context.Background(), "nope", "u1", "")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestUpdateStatus(t *testing.T) {
	f := newFixture()
	o, err := f.svc.Create(context.Background(), "u1", sampleRequest(order.MethodCOD))
	require.NoError(t, err)

	f.clock = f.clock.Add(48 * time.Hour)
	got, err := f.svc.UpdateStatus(context.Background(), o.ID, StatusRequest{
		Status:   order.StatusDelivered,
		Location: &order.Location{Lat: 12.97, Lng: 77.59},
	})
	require.NoError(t, err)
	assert.Equal(t, order.StatusDelivered, got.Status)
	assert.Equal(t, order.PaymentCompleted, got.PaymentInfo.Status)
	require.NotNil(t, got.DeliveryTracking.ActualDelivery)
	assert.Equal(t, f.clock, *got.DeliveryTracking.ActualDelivery)
	assert.Len(t, got.DeliveryTracking.TrackingUpdates, 1)
	assert.Equal(t, events.OrderStatusChanged, f.sink.got[len(f.sink.got)-1].Type)

	_, err = f.svc.UpdateStatus(context.Background(), o.ID, StatusRequest{Status: "lost"})
	assert.ErrorIs(t, err, order.ErrInvalidStatus)

	_, err = f.svc.UpdateStatus(context.Background(), "missing", StatusRequest{Status: order.StatusShipped})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateTracking(t *testing.T) {
	f := newFixture()
	o, err := f.svc.Create(context.Background(), "u1", sampleRequest(order.MethodUPI))
	require.NoError(t, err)

	got, err := f.svc.UpdateTracking(context.Background(), o.ID, TrackingRequest{
		Location:           &order.Location{Lat: 1, Lng: 2},
		DeliveryPersonName: "Ravi",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ravi", got.DeliveryTracking.DeliveryPersonName)
	require.Len(t, got.DeliveryTracking.TrackingUpdates, 1)
	assert.Equal(t, "Location updated", got.DeliveryTracking.TrackingUpdates[0].Note)
	assert.Equal(t, order.StatusPending, got.DeliveryTracking.TrackingUpdates[0].Status)
}

func TestGetOrderAccess(t *testing.T) {
	f := newFixture()
	o, err := f.svc.Create(context.Background(), "u1", sampleRequest(order.MethodCOD))
	require.NoError(t, err)

	_, err = f.svc.Get(context.Background(), o.ID, "u1", user.RoleUser)
	assert.NoError(t, err)
	_, err = f.svc.Get(context.Background(), o.ID, "admin", user.RoleAdmin)
	assert.NoError(t, err)
	_, err = f.svc.Get(context.Background(), o.ID, "u2", user.RoleUser)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestNilSinkIsAllowed(t *testing.T) {
	f := newFixture()
	svc := NewService(f.store, f.products, f.users, f.carts, nil)

	_, err := svc.Create(context.Background(), "u1", sampleRequest(order.MethodCOD))
	assert.NoError(t, err)
}

func TestListByUserResolvesProducts(t *testing.T) {
	f := newFixture()
	f.products.items["p1"] = &product.Product{ID: "p1", Name: "Desk Lamp", Price: 150}
	_, err := f.svc.Create(context.Background(), "u1", sampleRequest(order.MethodCOD))
	require.NoError(t, err)
	_, err = f.svc.Create(context.Background(), "u1", sampleRequest(order.MethodUPI))
	require.NoError(t, err)
	_, err = f.svc.Create(context.Background(), "u2", sampleRequest(order.MethodCOD))
	require.NoError(t, err)

	got, err := f.svc.ListByUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, s := range got {
		assert.Equal(t, "u1", s.User)
		require.Len(t, s.Items, 1)
		assert.Equal(t, "p1", s.Items[0].Product)
		require.NotNil(t, s.Items[0].ProductDetails)
		assert.Equal(t, "Desk Lamp", s.Items[0].ProductDetails.Name)
	}
	assert.Equal(t, 1, f.products.lookups)
}

func TestListByUserKeepsDeletedProducts(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Create(context.Background(), "u1", sampleRequest(order.MethodCOD))
	require.NoError(t, err)

	got, err := f.svc.ListByUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Len(t, got[0].Items, 1)
	assert.Nil(t, got[0].Items[0].ProductDetails)
	assert.Equal(t, 150.0, got[0].Items[0].Price)
}

func TestListAllResolvesCustomers(t *testing.T) {
	f := newFixture()
	f.users.known["u1"] = &user.User{ID: "u1", Name: "Asha Rao", Email: "asha@example.com", PasswordHash: "x"}
	_, err := f.svc.Create(context.Background(), "u1", sampleRequest(order.MethodCOD))
	require.NoError(t, err)
	_, err = f.svc.Create(context.Background(), "gone", sampleRequest(order.MethodCOD))
	require.NoError(t, err)

	got, err := f.svc.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, s := range got {
		switch s.UserID {
		case "u1":
			assert.Equal(t, &Customer{ID: "u1", Name: "Asha Rao", Email: "asha@example.com"}, s.User)
		case "gone":
			assert.Equal(t, "gone", s.User)
		}
	}
}

func TestListPropagatesLookupErrors(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Create(context.Background(), "u1", sampleRequest(order.MethodCOD))
	require.NoError(t, err)

	f.products.err = errors.New("connection refused")
	_, err = f.svc.ListByUser(context.Background(), "u1")
	assert.Error(t, err)

	f.products.err = nil
	f.users.findErr = errors.New("connection refused")
	_, err = f.svc.ListAll(context.Background())
	assert.Error(t, err)
}
