package repository

import (
	"context"

	"github.com/fastygo/todo/domain"
)

// UserRepository persists accounts. Username uniqueness is enforced by the store.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	// Create returns domain.ErrUsernameTaken when the username already exists.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// Delete removes the user together with every task it owns.
	Delete(ctx context.Context, id string) error
}
