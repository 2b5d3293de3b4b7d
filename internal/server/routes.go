package server

import (
	"github.com/labstack/echo/v4"

	"example.com/event-planner/gateway/internal/handlers"
	"example.com/event-planner/gateway/internal/planner"
)

func registerRoutes(
	e *echo.Echo,
	sessions *planner.Registry,
	plannerHandler *handlers.PlannerHandler,
	notificationHandler *handlers.NotificationHandler,
	authMiddleware echo.MiddlewareFunc,
	authRateLimiter echo.MiddlewareFunc,
	plannerRateLimiter echo.MiddlewareFunc,
) {
	e.GET("/health", handlers.Health(sessions))

	api := e.Group("/api/v1")

	// открытие сессии ходит в сервис событий, поэтому лимит строже
	plannerSessions := api.Group("/planner/sessions", authMiddleware, plannerRateLimiter)
	plannerSessions.POST("", plannerHandler.Open, authRateLimiter)
	plannerSessions.GET("/:id", plannerHandler.Get)
	plannerSessions.DELETE("/:id", plannerHandler.Close)
	plannerSessions.POST("/:id/services", plannerHandler.AddService)
	plannerSessions.DELETE("/:id/items/:itemId", plannerHandler.RemoveItem)
	plannerSessions.POST("/:id/cart/clear", plannerHandler.ClearCart)
	plannerSessions.PATCH("/:id/progress", plannerHandler.UpdateProgress)
	plannerSessions.POST("/:id/save", plannerHandler.Save)
	plannerSessions.POST("/:id/finalize", plannerHandler.Finalize)

	notifications := api.Group("/notifications", authMiddleware)
	notifications.GET("/stream", notificationHandler.Stream)
}
