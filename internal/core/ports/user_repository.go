package ports

import (
	"context"

	"github.com/authkit/user-service/internal/core/domain"
)

// UserRepository is the persistence boundary for user records.
// Missing users are reported as domain.ErrUserNotFound.
type UserRepository interface {
	// Create inserts a new user. A taken email yields domain.ErrDuplicateEmail.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
}
