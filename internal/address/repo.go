package address

import (
	"context"

	"github.com/antonminaichev/storefront/internal/types/address"
)

type AddressRepository interface {
	ListAddresses(ctx context.Context, userID string) ([]address.Address, error)
	GetAddress(ctx context.Context, id, userID string) (*address.Address, error)
	CreateAddress(ctx context.Context, a *address.Address) error
	UpdateAddress(ctx context.Context, a *address.Address) error
	DeleteAddress(ctx context.Context, id, userID string) error
	ClearDefaultAddress(ctx context.Context, userID string) error
}
