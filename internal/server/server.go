package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"example.com/event-planner/gateway/internal/auth"
	"example.com/event-planner/gateway/internal/cart"
	"example.com/event-planner/gateway/internal/config"
	"example.com/event-planner/gateway/internal/handlers"
	"example.com/event-planner/gateway/internal/notifications"
	"example.com/event-planner/gateway/internal/planner"
	"example.com/event-planner/gateway/internal/snapshot"
)

// New собирает HTTP-сервер Echo с роутами и зависимостями шлюза.
// Очистка реестра сессий работает, пока ctx не отменен.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger, store snapshot.Store) *echo.Echo {
	if logger == nil {
		logger = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestLogger(logger))

	verifier := auth.NewTokenVerifier(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer)
	cartClient := cart.NewClient(cart.Options{
		BaseURL:      cfg.Planner.APIBaseURL,
		Timeout:      cfg.Planner.Timeout,
		DefaultPrice: cfg.Planner.DefaultPrice,
		Logger:       logger,
	})
	localSnapshots := snapshot.NewAdapter(store, logger)
	notificationHub := notifications.NewHub()
	sessions := planner.NewRegistry(cfg.Planner.SessionIdleTTL)
	go sessions.Run(ctx, cfg.Planner.SessionSweep, logger)

	plannerHandler := handlers.NewPlannerHandler(
		sessions,
		func(token string) planner.CartAPI { return cartClient.WithToken(token) },
		localSnapshots,
		notificationHub,
		logger,
	)
	notificationHandler := handlers.NewNotificationHandler(notificationHub)

	registerRoutes(
		e,
		sessions,
		plannerHandler,
		notificationHandler,
		auth.JWTMiddleware(verifier),
		newRateLimiter(cfg.Auth.RateLimitPerMinute, cfg.Auth.RateLimitBurst),
		newRateLimiter(cfg.Planner.RateLimitPerMinute, cfg.Planner.RateLimitBurst),
	)

	return e
}

// NewHTTPServer создает net/http сервер с заданными таймаутами.
func NewHTTPServer(cfg config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}

func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.String("remote_ip", v.RemoteIP),
				slog.String("request_id", v.RequestID),
				slog.Duration("latency", v.Latency),
			}

			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}

			msg := "request completed"
			if v.Status >= http.StatusInternalServerError {
				logger.LogAttrs(c.Request().Context(), slog.LevelError, msg, attrs...)
				return nil
			}

			logger.LogAttrs(c.Request().Context(), slog.LevelInfo, msg, attrs...)
			return nil
		},
	})
}

// newRateLimiter ограничивает запросы по IP; лимит задается в запросах в минуту.
func newRateLimiter(perMinute, burst int) echo.MiddlewareFunc {
	limit := rate.Limit(float64(perMinute) / 60.0)
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      limit,
		Burst:     burst,
		ExpiresIn: time.Minute,
	})

	return middleware.RateLimiter(store)
}
