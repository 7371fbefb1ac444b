package handler

import "github.com/authkit/user-service/internal/core/domain"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

type registerRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=50,maxbytes=72"`
	FullName string `json:"fullName" validate:"required,min=1"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// authResponse is the user (without its password hash) flattened next to
// the session token.
type authResponse struct {
	ID       string        `json:"id"`
	Email    string        `json:"email"`
	FullName string        `json:"fullName"`
	IsActive bool          `json:"isActive"`
	Roles    []domain.Role `json:"roles"`
	Token    string        `json:"token"`
}

type privateResponse struct {
	OK         bool     `json:"ok"`
	Message    string   `json:"message"`
	User       any      `json:"user"`
	RawHeaders []string `json:"rawHeaders,omitempty"`
}
