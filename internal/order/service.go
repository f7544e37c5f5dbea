package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/antonminaichev/storefront/internal/events"
	"github.com/antonminaichev/storefront/internal/logger"
	"github.com/antonminaichev/storefront/internal/storage"
	"github.com/antonminaichev/storefront/internal/types/order"
	"github.com/antonminaichev/storefront/internal/types/product"
	"github.com/antonminaichev/storefront/internal/types/user"
	"github.com/antonminaichev/storefront/internal/util/luna"
	"go.uber.org/zap"
)

var (
	ErrNotFound    = errors.New("order not found")
	ErrForbidden   = errors.New("order belongs to another user")
	ErrInvalidCard = errors.New("invalid card number")
)

// PaymentInput is the checkout payment block. CardNumber is only used to
// derive CardLast4 and is never stored.
type PaymentInput struct {
	order.PaymentInfo
	CardNumber string `json:"cardNumber,omitempty"`
}

type CreateRequest struct {
	Items           []order.Item          `json:"items"`
	Total           float64               `json:"total"`
	Subtotal        float64               `json:"subtotal"`
	Shipping        float64               `json:"shipping"`
	Tax             float64               `json:"tax"`
	ShippingAddress order.ShippingAddress `json:"shippingAddress"`
	PaymentInfo     PaymentInput          `json:"paymentInfo"`
}

type StatusRequest struct {
	Status   order.Status    `json:"status"`
	Note     string          `json:"note"`
	Location *order.Location `json:"location"`
}

type TrackingRequest struct {
	Location            *order.Location `json:"location"`
	DeliveryPersonName  string          `json:"deliveryPersonName"`
	DeliveryPersonPhone string          `json:"deliveryPersonPhone"`
	Note                string          `json:"note"`
}

// Line is an order item with its catalog entry attached. ProductDetails is
// nil once the product has been deleted.
type Line struct {
	order.Item
	ProductDetails *product.Product `json:"productDetails,omitempty"`
}

type Customer struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Summary is an order as shown in order history. User holds the buyer id,
// or a *Customer in the admin list.
type Summary struct {
	order.Order
	User  any    `json:"user"`
	Items []Line `json:"items"`
}

type Service struct {
	orders   OrderStore
	products ProductReader
	users    UserStore
	carts    CartClearer
	events EventSink
	now    func() time.Time
}

// NewService wires the order lifecycle. A nil sink disables events.
func NewService(orders OrderStore, products ProductReader, users UserStore, carts CartClearer, sink EventSink) *Service {
	if sink == nil {
		sink = nopSink{}
	}
	return &Service{
		orders:   orders,
		products: products,
		users:    users,
		carts:    carts,
		events:   sink,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func paymentFromInput(in PaymentInput) (order.PaymentInfo, error) {
	p := in.PaymentInfo
	if p.Method != order.MethodCard || in.CardNumber == "" {
		return p, nil
	}
	last4, ok := luna.CardLast4(in.CardNumber)
	if !ok {
		return p, ErrInvalidCard
	}
	p.CardLast4 = last4
	return p, nil
}

// Create persists a new order, then bumps the user's aggregates and empties
// the cart. The three writes are independent; a failure after the first one
// leaves the order in place.
func (s *Service) Create(ctx context.Context, userID string, req CreateRequest) (*order.Order, error) {
	payment, err := paymentFromInput(req.PaymentInfo)
	if err != nil {
		return nil, err
	}
	o, err := order.New(order.Draft{
		UserID:          userID,
		Items:           req.Items,
		Subtotal:        req.Subtotal,
		Shipping:        req.Shipping,
		Tax:             req.Tax,
		Total:           req.Total,
		ShippingAddress: req.ShippingAddress,
		Payment:         payment,
	}, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.orders.CreateOrder(ctx, o); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	if err := s.users.IncrementOrderStats(ctx, userID, o.Total); err != nil {
		return nil, fmt.Errorf("update user aggregates: %w", err)
	}
	if err := s.carts.ClearCart(ctx, userID); err != nil {
		return nil, fmt.Errorf("clear cart: %w", err)
	}

	logger.Log.Info("order created",
		zap.String("order_id", o.ID),
		zap.String("user_id", userID),
		zap.String("status", string(o.Status)),
		zap.String("payment_method", string(o.PaymentInfo.Method)),
	)
	s.events.Dispatch(events.ForOrder(events.OrderCreated, o, map[string]any{"total": o.Total}))
	return o, nil
}

func (s *Service) load(ctx context.Context, id string) (*order.Order, error) {
	o, err := s.orders.GetOrder(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get order %s: %w", id, err)
	}
	return o, nil
}

// Get returns the order to its owner or to an admin.
func (s *Service) Get(ctx context.Context, id, userID string, role user.Role) (*order.Order, error) {
	o, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID && role != user.RoleAdmin {
		return nil, ErrForbidden
	}
	return o, nil
}

// summarize resolves item products once per list. With withCustomer the
// buyer is resolved as well.
func (s *Service) summarize(ctx context.Context, orders []order.Order, withCustomer bool) ([]Summary, error) {
	products := make(map[string]*product.Product)
	customers := make(map[string]*Customer)
	out := make([]Summary, 0, len(orders))
	for _, o := range orders {
		sum := Summary{Order: o, User: o.UserID, Items: make([]Line, 0, len(o.Items))}
		for _, it := range o.Items {
			p, seen := products[it.Product]
			if !seen {
				var err error
				p, err = s.products.GetProduct(ctx, it.Product)
				if errors.Is(err, storage.ErrNotFound) {
					logger.Log.Debug("order references missing product",
						zap.String("order_id", o.ID), zap.String("product_id", it.Product))
					p, err = nil, nil
				}
				if err != nil {
					return nil, fmt.Errorf("get product %s: %w", it.Product, err)
				}
				products[it.Product] = p
			}
			sum.Items = append(sum.Items, Line{Item: it, ProductDetails: p})
		}

		if withCustomer {
			c, seen := customers[o.UserID]
			if !seen {
				u, err := s.users.FindUserByID(ctx, o.UserID)
				switch {
				case errors.Is(err, storage.ErrNotFound):
				case err != nil:
					return nil, fmt.Errorf("get user %s: %w", o.UserID, err)
				default:
					c = &Customer{ID: u.ID, Name: u.Name, Email: u.Email}
				}
				customers[o.UserID] = c
			}
			if c != nil {
				sum.User = c
			}
		}
		out = append(out, sum)
	}
	return out, nil
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]Summary, error) {
	orders, err := s.orders.ListOrdersByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.summarize(ctx, orders, false)
}

func (s *Service) ListAll(ctx context.Context) ([]Summary, error) {
	orders, err := s.orders.ListOrders(ctx)
	if err != nil {
		return nil, err
	}
	return s.summarize(ctx, orders, true)
}

func (s *Service) UpdateStatus(ctx context.Context, id string, req StatusRequest) (*order.Order, error) {
	if !req.Status.Valid() {
		return nil, order.ErrInvalidStatus
	}
	o, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	from := o.Status
	if err := o.ApplyStatus(req.Status, req.Note, req.Location, s.now()); err != nil {
		return nil, err
	}
	if err := s.orders.UpdateOrder(ctx, o); err != nil {
		return nil, fmt.Errorf("update order %s: %w", id, err)
	}

	logger.Log.Info("order status updated",
		zap.String("order_id", id),
		zap.String("from", string(from)),
		zap.String("to", string(o.Status)),
	)
	s.events.Dispatch(events.ForOrder(events.OrderStatusChanged, o, map[string]any{"from": from}))
	return o, nil
}

// Cancel is owner-only. The deadline is checked against the clock at
// request time.
func (s *Service) Cancel(ctx context.Context, id, userID, reason string) (*order.Order, *order.RefundInfo, error) {
	o, err := s.load(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if o.UserID != userID {
		return nil, nil, ErrForbidden
	}
	refund, err := o.Cancel(reason, s.now())
	if err != nil {
		return nil, nil, err
	}
	if err := s.orders.UpdateOrder(ctx, o); err != nil {
		return nil, nil, fmt.Errorf("update order %s: %w", id, err)
	}

	fields := []zap.Field{zap.String("order_id", id), zap.String("user_id", userID)}
	if refund != nil {
		fields = append(fields, zap.Float64("refund_amount", refund.Amount))
	}
	logger.Log.Info("order cancelled", fields...)
	s.events.Dispatch(events.ForOrder(events.OrderCancelled, o, refund))
	return o, refund, nil
}

func (s *Service) UpdateTracking(ctx context.Context, id string, req TrackingRequest) (*order.Order, error) {
	o, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	o.UpdateTracking(order.TrackingPatch{
		Location:            req.Location,
		DeliveryPersonName:  req.DeliveryPersonName,
		DeliveryPersonPhone: req.DeliveryPersonPhone,
		Note:                req.Note,
	}, s.now())
	if err := s.orders.UpdateOrder(ctx, o); err != nil {
		return nil, fmt.Errorf("update order %s: %w", id, err)
	}
	s.events.Dispatch(events.ForOrder(events.OrderTrackingUpdated, o, o.DeliveryTracking.CurrentLocation))
	return o, nil
}
