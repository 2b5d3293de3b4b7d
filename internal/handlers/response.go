package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type errorBody struct {
	Error          string `json:"error"`
	UpstreamStatus int    `json:"upstream_status,omitempty"`
}

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, errorBody{Error: message})
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, errorBody{Error: "invalid credentials"})
}

func conflict(c echo.Context, message string) error {
	return c.JSON(http.StatusConflict, errorBody{Error: message})
}

func notFound(c echo.Context, message string) error {
	return c.JSON(http.StatusNotFound, errorBody{Error: message})
}

func gone(c echo.Context, message string) error {
	return c.JSON(http.StatusGone, errorBody{Error: message})
}

func badGateway(c echo.Context, message string, upstreamStatus int) error {
	return c.JSON(http.StatusBadGateway, errorBody{Error: message, UpstreamStatus: upstreamStatus})
}

func unavailable(c echo.Context, message string) error {
	return c.JSON(http.StatusServiceUnavailable, errorBody{Error: message})
}

func serverError(c echo.Context) error {
	return c.JSON(http.StatusInternalServerError, errorBody{Error: "internal server error"})
}
