package handler

import (
	"net/http"
	"slices"

	"github.com/labstack/echo/v4"

	"github.com/authkit/user-service/internal/api/middleware"
	"github.com/authkit/user-service/internal/core/domain"
	"github.com/authkit/user-service/internal/core/ports"
)

const privateMessage = "This is a private route"

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register creates a new user account and returns it with a session token.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	res, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, toAuthResponse(res))
}

// Login authenticates a user and returns it with a session token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	res, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toAuthResponse(res))
}

// Private echoes the caller's email and the raw request headers.
//
// @Summary      Private route
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  privateResponse
// @Failure      401  {object}  errorResponse
// @Router       /auth/private [get]
func (h *AuthHandler) Private(c echo.Context) error {
	email, ok := middleware.UserField(c, "email")
	if !ok {
		return domain.ErrUnauthenticated
	}
	return c.JSON(http.StatusOK, privateResponse{
		OK:         true,
		Message:    privateMessage,
		User:       email,
		RawHeaders: rawHeaders(c.Request()),
	})
}

// PrivateAdmin is only reachable by admins.
//
// @Summary      Admin-only private route
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  privateResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Router       /auth/private2 [get]
func (h *AuthHandler) PrivateAdmin(c echo.Context) error {
	return h.privateUser(c)
}

// PrivateComposite is guarded by the composite role check with no roles.
//
// @Summary      Private route behind the composite guard
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  privateResponse
// @Failure      401  {object}  errorResponse
// @Router       /auth/private3 [get]
func (h *AuthHandler) PrivateComposite(c echo.Context) error {
	return h.privateUser(c)
}

func (h *AuthHandler) privateUser(c echo.Context) error {
	email, ok := middleware.UserField(c, "email")
	if !ok {
		return domain.ErrUnauthenticated
	}
	return c.JSON(http.StatusOK, privateResponse{
		OK:      true,
		Message: privateMessage,
		User:    email,
	})
}

func toAuthResponse(r *ports.AuthResult) authResponse {
	return authResponse{
		ID:       r.User.ID,
		Email:    r.User.Email,
		FullName: r.User.FullName,
		IsActive: r.User.IsActive,
		Roles:    r.User.Roles,
		Token:    r.Token,
	}
}

// rawHeaders flattens the request headers into [name, value, name, value, ...]
// with Host first and the rest sorted by name.
func rawHeaders(r *http.Request) []string {
	out := make([]string, 0, 2*len(r.Header)+2)
	if r.Host != "" {
		out = append(out, "Host", r.Host)
	}
	names := make([]string, 0, len(r.Header))
	for name := range r.Header {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		for _, v := range r.Header[name] {
			out = append(out, name, v)
		}
	}
	return out
}
