package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/go-access-control/internal/domain/entity"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// UserRepository is the credential store.
// Lookups return ErrNotFound when no row matches.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	FindByID(ctx context.Context, id string) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	List(ctx context.Context) ([]entity.User, error)
}
