package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/authkit/user-service/internal/core/domain"
)

func TestUserField(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	_, ok := UserField(c, "email")
	assert.False(t, ok, "no user attached yet")

	SetUser(c, &domain.User{
		ID:           "u-1",
		Email:        "a@x.com",
		PasswordHash: "hash",
		FullName:     "A",
		IsActive:     true,
		Roles:        []domain.Role{domain.RoleUser},
	})

	v, ok := UserField(c, "email")
	assert.True(t, ok)
	assert.Equal(t, "a@x.com", v)

	v, _ = UserField(c, "roles")
	assert.Equal(t, []domain.Role{domain.RoleUser}, v)

	_, ok = UserField(c, "passwordHash")
	assert.False(t, ok)
}

func TestPolicy_String(t *testing.T) {
	assert.Equal(t, "public", Public().String())
	assert.Equal(t, "authenticated", Authenticated().String())
	assert.Equal(t, "roles[admin]", Roles(domain.RoleAdmin).String())
}
