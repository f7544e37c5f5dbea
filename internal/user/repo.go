package user

import (
	"context"

	"github.com/antonminaichev/storefront/internal/types/user"
)

type UserRepository interface {
	CreateUser(ctx context.Context, u *user.User) error
	FindUserByEmail(ctx context.Context, email string) (*user.User, error)
	FindUserByID(ctx context.Context, id string) (*user.User, error)
}
