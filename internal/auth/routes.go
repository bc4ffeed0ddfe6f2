package auth

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes sets up all auth-related routes on the given Echo instance.
// Auth routes are public (no session required) -- the gate middleware is
// exported separately for the chat routes to use.
func RegisterRoutes(e *echo.Echo, h *Handler) {
	e.POST("/signup", h.Signup)
	e.POST("/signin", h.Signin)
	e.GET("/logout", h.Logout)
}
