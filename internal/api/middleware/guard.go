package middleware

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/authkit/user-service/internal/pkg/metrics"
	"github.com/authkit/user-service/internal/core/domain"
)

// TokenVerifier resolves a bearer token to its subject ID.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// UserFinder loads the user a token refers to.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

// Guard performs authentication and authorization for protected routes.
type Guard struct {
	tokens TokenVerifier
	users  UserFinder
	log    zerolog.Logger
}

func NewGuard(tokens TokenVerifier, users UserFinder, log zerolog.Logger) *Guard {
	return &Guard{tokens: tokens, users: users, log: log}
}

// Enforce turns a route's declared policy into middleware.
func (g *Guard) Enforce(p Policy) echo.MiddlewareFunc {
	switch p.Kind {
	case PolicyPublic:
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	case PolicyAuthenticated:
		return g.Authenticate()
	default:
		authn, authz := g.Authenticate(), g.Authorize(p.Roles...)
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return authn(authz(next))
		}
	}
}

// Authenticate verifies the bearer token, loads its user and rejects deleted
// or inactive accounts. The user is stored on the context for handlers.
func (g *Guard) Authenticate() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return g.reject("unauthenticated", domain.ErrUnauthenticated)
			}

			subject, err := g.tokens.Verify(raw)
			if err != nil {
				g.log.Debug().Err(err).Msg("token verification failed")
				return g.reject("unauthenticated", domain.ErrUnauthenticated)
			}

			user, err := g.users.FindByID(c.Request().Context(), subject)
			if err != nil {
				if errors.Is(err, domain.ErrUserNotFound) {
					return g.reject("unauthenticated", domain.ErrUnauthenticated)
				}
				return fmt.Errorf("guard: load user: %w", err)
			}
			if !user.IsActive {
				return g.reject("account_disabled", domain.ErrAccountDisabled)
			}

			SetUser(c, user)
			return next(c)
		}
	}
}

// Authorize passes when the authenticated user holds any of roles. With no
// roles it only requires that Authenticate ran first.
func (g *Guard) Authorize(roles ...domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := CurrentUser(c)
			if !ok {
				return g.reject("unauthenticated", domain.ErrUnauthenticated)
			}
			if len(roles) > 0 && !user.HasAnyRole(roles...) {
				return g.reject("forbidden", domain.ErrForbidden)
			}
			return next(c)
		}
	}
}

func (g *Guard) reject(reason string, err error) error {
	metrics.GuardRejectionsTotal.WithLabelValues(reason).Inc()
	return err
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
