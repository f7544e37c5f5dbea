package product

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/antonminaichev/storefront/internal/storage"
	"github.com/antonminaichev/storefront/internal/types/product"
	"github.com/google/uuid"
)

var (
	ErrNotFound       = errors.New("product not found")
	ErrInvalidProduct = errors.New("name, category and a non-negative price are required")
)

type Service struct {
	repo ProductRepository
}

func NewService(repo ProductRepository) *Service {
	return &Service{repo: repo}
}

func validate(p *product.Product) error {
	p.Name = strings.TrimSpace(p.Name)
	p.Category = strings.TrimSpace(p.Category)
	if p.Name == "" || p.Category == "" || p.Price < 0 || p.Stock < 0 {
		return ErrInvalidProduct
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *Service) List(ctx context.Context, category string) ([]product.Product, error) {
	return s.repo.ListProducts(ctx, category)
}

func (s *Service) Get(ctx context.Context, id string) (*product.Product, error) {
	p, err := s.repo.GetProduct(ctx, id)
	return p, notFound(err)
}

func (s *Service) Create(ctx context.Context, p product.Product) (*product.Product, error) {
	if err := validate(&p); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	p.ID = uuid.NewString()
	p.CreatedAt, p.UpdatedAt = now, now
	if err := s.repo.CreateProduct(ctx, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Update replaces the editable fields of an existing product.
func (s *Service) Update(ctx context.Context, id string, in product.Product) (*product.Product, error) {
	cur, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	in.ID = cur.ID
	in.CreatedAt = cur.CreatedAt
	in.UpdatedAt = time.Now().UTC()
	if err := validate(&in); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateProduct(ctx, &in); err != nil {
		return nil, notFound(err)
	}
	return &in, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return notFound(s.repo.DeleteProduct(ctx, id))
}
