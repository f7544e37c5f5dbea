package main

import (
	"context"
	"testing"

	"github.com/antonminaichev/storefront/internal/product"
	typesproduct "github.com/antonminaichev/storefront/internal/types/product"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type catalogStub struct {
	product.ProductRepository
	items []typesproduct.Product
}

func (c *catalogStub) ListProducts(ctx context.Context, category string) ([]typesproduct.Product, error) {
	return c.items, nil
}

func (c *catalogStub) CreateProduct(ctx context.Context, p *typesproduct.Product) error {
	c.items = append(c.items, *p)
	return nil
}

func TestSeedCatalogOnlyWhenEmpty(t *testing.T) {
	stub := &catalogStub{}
	svc := product.NewService(stub)

	n, err := seedCatalog(context.Background(), svc)
	require.NoError(t, err)
	assert.Equal(t, len(sampleProducts), n)
	assert.Len(t, stub.items, len(sampleProducts))

	n, err = seedCatalog(context.Background(), svc)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Len(t, stub.items, len(sampleProducts))
}
