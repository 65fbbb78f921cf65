package http

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// SweepSecretHeader carries the shared secret for manual sweeps.
const SweepSecretHeader = "X-Dispatch-Secret"

type RouterConfig struct {
	// SweepSecret protects POST /api/v1/dispatch/sweep. Empty leaves it open.
	SweepSecret string
	Gatherer    prometheus.Gatherer
	Logger      *slog.Logger
}

// NewRouter builds the echo instance with middleware, API routes, /metrics,
// /health and the Swagger UI.
func NewRouter(ctx context.Context, s *Server, cfg RouterConfig) (*echo.Echo, error) {
	doc, err := LoadOpenAPI(ctx)
	if err != nil {
		return nil, err
	}
	validate, err := RequestValidator(doc)
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewErrorHandler(cfg.Logger)

	e.Use(middleware.Recover())
	e.Use(requestLogger(cfg.Logger))
	e.Use(validate)

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})
	e.GET("/openapi.yaml", func(c echo.Context) error {
		return c.Blob(http.StatusOK, "application/yaml", OpenAPIDocument())
	})
	e.GET("/swagger/*", echoSwagger.EchoWrapHandler(echoSwagger.URL("/openapi.yaml")))
	if cfg.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	api := e.Group("/api/v1")
	api.GET("/couriers", s.GetCouriers)
	api.POST("/couriers", s.CreateCourier)
	api.PUT("/couriers/:courierId/presence", s.UpdateCourierPresence)
	api.GET("/couriers/:courierId/offers", s.GetCourierOffers)
	api.POST("/orders", s.CreateOrder)
	api.GET("/orders/active", s.GetActiveOrders)
	api.POST("/orders/:orderId/cancel", s.CancelOrder)
	api.POST("/offers/:offerId/response", s.RespondToOffer)
	api.GET("/batches/suggestions", s.GetBatchSuggestions)
	api.POST("/batches", s.ConfirmBatch)

	var sweepMiddleware []echo.MiddlewareFunc
	if cfg.SweepSecret != "" {
		sweepMiddleware = append(sweepMiddleware, sweepAuth(cfg.SweepSecret))
	}
	api.POST("/dispatch/sweep", s.RunDispatchSweep, sweepMiddleware...)

	return e, nil
}

func sweepAuth(secret string) echo.MiddlewareFunc {
	return middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
		KeyLookup: "header:" + SweepSecretHeader,
		Validator: func(key string, _ echo.Context) (bool, error) {
			return subtle.ConstantTimeCompare([]byte(key), []byte(secret)) == 1, nil
		},
		ErrorHandler: func(_ error, _ echo.Context) error {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid dispatch secret")
		},
	})
}

func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	logger = logger.With("component", "http")

	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
			}
			level := slog.LevelInfo
			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
				if v.Status >= http.StatusInternalServerError {
					level = slog.LevelError
				}
			}
			logger.LogAttrs(c.Request().Context(), level, "http request", attrs...)
			return nil
		},
	})
}
