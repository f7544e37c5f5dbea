package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/antonminaichev/storefront/internal/logger"
	"github.com/antonminaichev/storefront/internal/storage"
	"github.com/antonminaichev/storefront/internal/types/cart"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrCartNotFound    = errors.New("cart not found")
	ErrItemNotFound    = errors.New("cart item not found")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
)

var (
	freeShippingFrom = decimal.NewFromInt(500)
	flatShipping     = decimal.NewFromInt(50)
	taxRate          = decimal.RequireFromString("0.18")
)

type Service struct {
	carts    CartRepository
	products ProductReader
}

func NewService(c CartRepository, p ProductReader) *Service {
	return &Service{carts: c, products: p}
}

func (s *Service) find(ctx context.Context, userID string) (*cart.Cart, error) {
	c, err := s.carts.GetCart(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrCartNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get cart: %w", err)
	}
	return c, nil
}

// view resolves every line against the catalog. Lines whose product has
// since been deleted are left out.
func (s *Service) view(ctx context.Context, c *cart.Cart) (*cart.View, error) {
	v := &cart.View{Items: make([]cart.Line, 0, len(c.Items))}
	for _, it := range c.Items {
		p, err := s.products.GetProduct(ctx, it.Product)
		if errors.Is(err, storage.ErrNotFound) {
			logger.Log.Debug("cart references missing product", zap.String("product_id", it.Product))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("get product %s: %w", it.Product, err)
		}
		v.Items = append(v.Items, cart.Line{Product: p, Quantity: it.Quantity})
	}
	return v, nil
}

// Get returns an empty cart when the user has none yet.
func (s *Service) Get(ctx context.Context, userID string) (*cart.View, error) {
	c, err := s.find(ctx, userID)
	if errors.Is(err, ErrCartNotFound) {
		return &cart.View{Items: []cart.Line{}}, nil
	}
	if err != nil {
		return nil, err
	}
	return s.view(ctx, c)
}

func (s *Service) Add(ctx context.Context, userID string, req cart.AddRequest) (*cart.View, error) {
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}
	if qty < 1 {
		return nil, ErrInvalidQuantity
	}
	if _, err := s.products.GetProduct(ctx, req.ProductID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	c, err := s.find(ctx, userID)
	if errors.Is(err, ErrCartNotFound) {
		c = &cart.Cart{UserID: userID}
	} else if err != nil {
		return nil, err
	}

	merged := false
	for i := range c.Items {
		if c.Items[i].Product == req.ProductID {
			c.Items[i].Quantity += qty
			merged = true
			break
		}
	}
	if !merged {
		c.Items = append(c.Items, cart.Item{Product: req.ProductID, Quantity: qty})
	}
	return s.save(ctx, c)
}

// Update sets an item's quantity. A quantity of zero or less removes it.
func (s *Service) Update(ctx context.Context, userID string, req cart.UpdateRequest) (*cart.View, error) {
	c, err := s.find(ctx, userID)
	if err != nil {
		return nil, err
	}
	idx := -1
	for i, it := range c.Items {
		if it.Product == req.ProductID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrItemNotFound
	}
	if req.Quantity <= 0 {
		c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
	} else {
		c.Items[idx].Quantity = req.Quantity
	}
	return s.save(ctx, c)
}

func (s *Service) Remove(ctx context.Context, userID, productID string) (*cart.View, error) {
	c, err := s.find(ctx, userID)
	if err != nil {
		return nil, err
	}
	kept := c.Items[:0]
	for _, it := range c.Items {
		if it.Product != productID {
			kept = append(kept, it)
		}
	}
	c.Items = kept
	return s.save(ctx, c)
}

func (s *Service) Clear(ctx context.Context, userID string) error {
	return s.carts.ClearCart(ctx, userID)
}

func (s *Service) save(ctx context.Context, c *cart.Cart) (*cart.View, error) {
	c.UpdatedAt = time.Now().UTC()
	if err := s.carts.SaveCart(ctx, c); err != nil {
		return nil, fmt.Errorf("save cart: %w", err)
	}
	return s.view(ctx, c)
}

// Summary quotes the cart at current catalog prices.
func (s *Service) Summary(ctx context.Context, userID string) (*cart.Summary, error) {
	v, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return Quote(v.Items), nil
}

// Quote applies flat shipping below the free-shipping threshold and tax
// rounded to whole currency units.
func Quote(lines []cart.Line) *cart.Summary {
	subtotal := decimal.Zero
	count := 0
	for _, l := range lines {
		subtotal = subtotal.Add(decimal.NewFromFloat(l.Product.Price).Mul(decimal.NewFromInt(int64(l.Quantity))))
		count += l.Quantity
	}
	shipping := decimal.Zero
	if count > 0 && subtotal.LessThan(freeShippingFrom) {
		shipping = flatShipping
	}
	tax := subtotal.Mul(taxRate).Round(0)
	total := subtotal.Add(shipping).Add(tax)

	return &cart.Summary{
		Subtotal: subtotal.InexactFloat64(),
		Shipping: shipping.InexactFloat64(),
		Tax:      tax.InexactFloat64(),
		Total:    total.InexactFloat64(),
		Items:    count,
	}
}
