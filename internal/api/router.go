package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/authkit/user-service/internal/api/handler"
	"github.com/authkit/user-service/internal/api/middleware"
	"github.com/authkit/user-service/internal/core/domain"
	"github.com/authkit/user-service/internal/core/ports"
)

// Deps carries everything the HTTP layer needs. Readiness maps a dependency
// name to its probe; nil probes are skipped. A nil Registry means the default
// Prometheus registry.
type Deps struct {
	Auth      ports.AuthService
	Tokens    middleware.TokenVerifier
	Users     middleware.UserFinder
	Readiness map[string]handler.Pinger
	Registry  *prometheus.Registry
	Log       zerolog.Logger
}

type route struct {
	method  string
	path    string
	handler echo.HandlerFunc
	policy  middleware.Policy
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))

	if d.Registry != nil {
		e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
			Subsystem:  "auth",
			Registerer: d.Registry,
		}))
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{})))
	} else {
		e.Use(echoprometheus.NewMiddleware("auth"))
		e.GET("/metrics", echoprometheus.NewHandler())
	}

	// --- Dependencies ---
	guard := middleware.NewGuard(d.Tokens, d.Users, d.Log)
	authHandler := handler.NewAuthHandler(d.Auth)
	healthHandler := handler.NewHealthHandler(d.Readiness)

	routes := []route{
		{http.MethodPost, "/auth/register", authHandler.Register, middleware.Public()},
		{http.MethodPost, "/auth/login", authHandler.Login, middleware.Public()},
		{http.MethodGet, "/auth/private", authHandler.Private, middleware.Authenticated()},
		{http.MethodGet, "/auth/private2", authHandler.PrivateAdmin, middleware.Roles(domain.RoleAdmin)},
		{http.MethodGet, "/auth/private3", authHandler.PrivateComposite, middleware.Roles()},

		{http.MethodGet, "/health", healthHandler.Liveness, middleware.Public()},
		{http.MethodGet, "/health/ready", healthHandler.Readiness, middleware.Public()},
	}
	for _, r := range routes {
		e.Add(r.method, r.path, r.handler, guard.Enforce(r.policy))
	}

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics" || c.Path() == "/health"
		},
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Error != nil {
				evt = log.Warn().Err(v.Error)
			}
			evt.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
