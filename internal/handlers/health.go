package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"example.com/event-planner/gateway/internal/planner"
)

type HealthResponse struct {
	Status       string `json:"status"`
	OpenSessions int    `json:"open_sessions"`
}

// Health возвращает статус шлюза и число открытых сессий.
func Health(sessions *planner.Registry) echo.HandlerFunc {
	return func(c echo.Context) error {
		response := HealthResponse{Status: "ok"}
		if sessions != nil {
			response.OpenSessions = sessions.Len()
		}
		return c.JSON(http.StatusOK, response)
	}
}
