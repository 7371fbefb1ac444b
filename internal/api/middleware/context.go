package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/authkit/user-service/internal/core/domain"
)

const userContextKey = "auth.user"

// SetUser attaches an authenticated user to the request context.
func SetUser(c echo.Context, u *domain.User) {
	c.Set(userContextKey, u)
}

// CurrentUser returns the user attached by Authenticate.
func CurrentUser(c echo.Context) (*domain.User, bool) {
	u, ok := c.Get(userContextKey).(*domain.User)
	return u, ok && u != nil
}

// UserField returns a single field of the current user by its JSON name.
// The password hash is never reachable this way.
func UserField(c echo.Context, field string) (any, bool) {
	u, ok := CurrentUser(c)
	if !ok {
		return nil, false
	}
	switch field {
	case "id":
		return u.ID, true
	case "email":
		return u.Email, true
	case "fullName":
		return u.FullName, true
	case "isActive":
		return u.IsActive, true
	case "roles":
		return u.Roles, true
	default:
		return nil, false
	}
}
