package address

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/antonminaichev/storefront/internal/storage"
	"github.com/antonminaichev/storefront/internal/types/address"
	"github.com/google/uuid"
)

var (
	ErrNotFound   = errors.New("address not found")
	ErrIncomplete = errors.New("address is missing required fields")
)

type Service struct {
	repo AddressRepository
}

func NewService(repo AddressRepository) *Service {
	return &Service{repo: repo}
}

func complete(a *address.Address) bool {
	for _, v := range []string{a.FullName, a.Phone, a.Address, a.City, a.State, a.Pincode, a.Country} {
		if v == "" {
			return false
		}
	}
	return true
}

func (s *Service) List(ctx context.Context, userID string) ([]address.Address, error) {
	return s.repo.ListAddresses(ctx, userID)
}

// Create stores a new address. A default address clears the flag on the
// user's other entries first.
func (s *Service) Create(ctx context.Context, userID string, in address.Address) (*address.Address, error) {
	if !complete(&in) {
		return nil, ErrIncomplete
	}
	if in.IsDefault {
		if err := s.repo.ClearDefaultAddress(ctx, userID); err != nil {
			return nil, fmt.Errorf("clear default: %w", err)
		}
	}
	now := time.Now().UTC()
	in.ID = uuid.NewString()
	in.UserID = userID
	in.CreatedAt, in.UpdatedAt = now, now
	if err := s.repo.CreateAddress(ctx, &in); err != nil {
		return nil, err
	}
	return &in, nil
}

func (s *Service) Update(ctx context.Context, id, userID string, in address.Address) (*address.Address, error) {
	cur, err := s.repo.GetAddress(ctx, id, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if !complete(&in) {
		return nil, ErrIncomplete
	}
	if in.IsDefault && !cur.IsDefault {
		if err := s.repo.ClearDefaultAddress(ctx, userID); err != nil {
			return nil, fmt.Errorf("clear default: %w", err)
		}
	}
	in.ID, in.UserID, in.CreatedAt = cur.ID, cur.UserID, cur.CreatedAt
	in.UpdatedAt = time.Now().UTC()
	if err := s.repo.UpdateAddress(ctx, &in); err != nil {
		return nil, err
	}
	return &in, nil
}

func (s *Service) Delete(ctx context.Context, id, userID string) error {
	err := s.repo.DeleteAddress(ctx, id, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *Service) SetDefault(ctx context.Context, id, userID string) (*address.Address, error) {
	cur, err := s.repo.GetAddress(ctx, id, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := s.repo.ClearDefaultAddress(ctx, userID); err != nil {
		return nil, fmt.Errorf("clear default: %w", err)
	}
	cur.IsDefault = true
	cur.UpdatedAt = time.Now().UTC()
	if err := s.repo.UpdateAddress(ctx, cur); err != nil {
		return nil, err
	}
	return cur, nil
}
