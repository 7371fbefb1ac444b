package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authkit/user-service/internal/core/domain"
	"github.com/authkit/user-service/internal/pkg/token"
)

type stubFinder struct {
	users map[string]*domain.User
	err   error
}

func (f *stubFinder) FindByID(_ context.Context, id string) (*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

type guardFixture struct {
	guard  *Guard
	tokens *token.Service
	finder *stubFinder
}

func newGuardFixture() *guardFixture {
	tokens := token.NewService("secret", time.Hour)
	finder := &stubFinder{users: map[string]*domain.User{
		"u-1": {ID: "u-1", Email: "user@x.com", IsActive: true, Roles: []domain.Role{domain.RoleUser}},
		"a-1": {ID: "a-1", Email: "admin@x.com", IsActive: true, Roles: []domain.Role{domain.RoleAdmin}},
		"d-1": {ID: "d-1", Email: "off@x.com", IsActive: false, Roles: []domain.Role{domain.RoleAdmin}},
	}}
	return &guardFixture{
		guard:  NewGuard(tokens, finder, zerolog.Nop()),
		tokens: tokens,
		finder: finder,
	}
}

func (f *guardFixture) bearer(t *testing.T, subject string) string {
	t.Helper()
	tok, err := f.tokens.Issue(subject)
	require.NoError(t, err)
	return "Bearer " + tok
}

// run executes mw around a handler that records the context user.
func run(t *testing.T, mw echo.MiddlewareFunc, authHeader string) (*domain.User, bool, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	c := e.NewContext(req, httptest.NewRecorder())

	var seen *domain.User
	called := false
	err := mw(func(c echo.Context) error {
		called = true
		seen, _ = CurrentUser(c)
		return c.NoContent(http.StatusOK)
	})(c)
	return seen, called, err
}

func TestAuthenticate_ValidToken(t *testing.T) {
	f := newGuardFixture()

	user, called, err := run(t, f.guard.Authenticate(), f.bearer(t, "u-1"))

	require.NoError(t, err)
	assert.True(t, called)
	require.NotNil(t, user)
	assert.Equal(t, "user@x.com", user.Email)
}

func TestAuthenticate_Rejections(t *testing.T) {
	f := newGuardFixture()

	cases := []struct {
		name   string
		header string
		want   error
	}{
		{"missing header", "", domain.ErrUnauthenticated},
		{"wrong scheme", "Token abc", domain.ErrUnauthenticated},
		{"empty bearer", "Bearer ", domain.ErrUnauthenticated},
		{"garbage token", "Bearer not-a-token", domain.ErrUnauthenticated},
		{"deleted user", f.bearer(t, "gone"), domain.ErrUnauthenticated},
		{"inactive user", f.bearer(t, "d-1"), domain.ErrAccountDisabled},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, called, err := run(t, f.guard.Authenticate(), tc.header)
			assert.False(t, called, "next must not run")
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestAuthenticate_TokenFromOtherSecret(t *testing.T) {
	f := newGuardFixture()
	foreign, err := token.NewService("other", time.Hour).Issue("u-1")
	require.NoError(t, err)

	_, called, err := run(t, f.guard.Authenticate(), "Bearer "+foreign)
	assert.False(t, called)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestAuthenticate_InactiveUserWithVerifiableToken(t *testing.T) {
	f := newGuardFixture()
	header := f.bearer(t, "d-1")

	sub, err := f.tokens.Verify(header[len("Bearer "):])
	require.NoError(t, err, "token itself must still verify")
	assert.Equal(t, "d-1", sub)

	_, _, err = run(t, f.guard.Authenticate(), header)
	assert.ErrorIs(t, err, domain.ErrAccountDisabled)
}

func TestAuthenticate_StoreFailure(t *testing.T) {
	f := newGuardFixture()
	header := f.bearer(t, "u-1")
	f.finder.err = errors.New("server selection timeout")

	_, called, err := run(t, f.guard.Authenticate(), header)
	assert.False(t, called)
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestEnforce_Roles(t *testing.T) {
	f := newGuardFixture()
	adminOnly := f.guard.Enforce(Roles(domain.RoleAdmin))

	_, called, err := run(t, adminOnly, f.bearer(t, "u-1"))
	assert.False(t, called)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	user, called, err := run(t, adminOnly, f.bearer(t, "a-1"))
	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, "a-1", user.ID)
}

func TestEnforce_RolesAnyOf(t *testing.T) {
	f := newGuardFixture()
	mw := f.guard.Enforce(Roles(domain.RoleAdmin, domain.RoleUser))

	_, called, err := run(t, mw, f.bearer(t, "u-1"))
	require.NoError(t, err)
	assert.True(t, called)
}

func TestEnforce_EmptyRolesActsAsAuthenticated(t *testing.T) {
	f := newGuardFixture()
	mw := f.guard.Enforce(Roles())

	_, called, err := run(t, mw, f.bearer(t, "u-1"))
	require.NoError(t, err)
	assert.True(t, called)

	_, called, err = run(t, mw, "")
	assert.False(t, called)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestEnforce_Public(t *testing.T) {
	f := newGuardFixture()

	user, called, err := run(t, f.guard.Enforce(Public()), "")
	require.NoError(t, err)
	assert.True(t, called)
	assert.Nil(t, user)
}

func TestEnforce_RolesChecksActiveBeforeRole(t *testing.T) {
	f := newGuardFixture()

	_, _, err := run(t, f.guard.Enforce(Roles(domain.RoleAdmin)), f.bearer(t, "d-1"))
	assert.ErrorIs(t, err, domain.ErrAccountDisabled)
}

func TestAuthorize_WithoutAuthenticate(t *testing.T) {
	f := newGuardFixture()

	_, called, err := run(t, f.guard.Authorize(domain.RoleAdmin), "")
	assert.False(t, called)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}
