package ports

import (
	"context"

	"github.com/authkit/user-service/internal/core/domain"
)

// RegisterInput is the DTO passed from the transport layer to AuthService.
// Shape validation happens at the HTTP boundary.
type RegisterInput struct {
	Email    string
	Password string
	FullName string
}

// AuthResult is returned by both registration and login.
type AuthResult struct {
	User  *domain.User
	Token string
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
}
