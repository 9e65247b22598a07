package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/marketplace/storefront/internal/api/handler"
	"github.com/marketplace/storefront/internal/api/middleware"
	"github.com/marketplace/storefront/internal/core/ports"
	"github.com/marketplace/storefront/internal/validation"
)

// Deps are the collaborators of the dev backend router.
type Deps struct {
	Accounts     ports.AccountService
	Publications ports.PublicationService
	JWTSecret    string
	// Checks are the readiness probes, by dependency name.
	Checks map[string]handler.Check
	// Registry receives the HTTP metrics served on /metrics. A fresh
	// registry is used when nil.
	Registry *prometheus.Registry
	Logger   zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validation.New()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	reg := deps.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType, echo.HeaderXRequestID},
	}))
	e.Use(requestLogger(deps.Logger))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "marketplace",
		Subsystem:  "devserver",
		Registerer: reg,
	}))

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Checks)
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: reg}))

	api := e.Group("/api")

	// --- Account routes ---
	authHandler := handler.NewAuthHandler(deps.Accounts)
	api.POST("/User/register", authHandler.Register)
	api.POST("/User/login", authHandler.Login)

	// --- Publication routes ---
	pubHandler := handler.NewPublicationHandler(deps.Publications)
	authenticated := []echo.MiddlewareFunc{middleware.Auth(deps.JWTSecret), middleware.AnyRole()}

	pubs := api.Group("/Publications")
	pubs.GET("/paged", pubHandler.Paged)
	pubs.GET("/user/:userId", pubHandler.ByUser)
	pubs.GET("/:id", pubHandler.Get)
	pubs.POST("", pubHandler.Create, authenticated...)
	pubs.PUT("/:id", pubHandler.Edit, authenticated...)
	pubs.POST("/:id/pause", pubHandler.Pause, authenticated...)
	pubs.POST("/:id/activate", pubHandler.Activate, authenticated...)
	pubs.DELETE("/:id", pubHandler.Delete, authenticated...)

	return e
}

// requestLogger logs one zerolog entry per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
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
