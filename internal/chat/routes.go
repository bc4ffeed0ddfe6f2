package chat

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes sets up all chat routes on the given Echo instance. Every
// chat route sits behind the auth gate: the gate must run before any
// operation tied to an identity (session creation, turn append, history
// read).
func RegisterRoutes(e *echo.Echo, h *Handler, gate echo.MiddlewareFunc) {
	g := e.Group("", gate)

	g.GET("/chat", h.CreateChat)
	g.GET("/chats", h.ListChats)
	g.GET("/chat/:id", h.GetHistory)
	g.POST("/chat/:id", h.SendPrompt)
}
