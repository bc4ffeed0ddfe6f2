package app

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kadelabs/converse/internal/auth"
	"github.com/kadelabs/converse/internal/chat"
)

// RegisterRoutes constructs every component (repositories, services,
// handlers) from the shared dependencies and sets up all application
// routes. This is the single place where the dependency graph is wired.
func (a *App) RegisterRoutes() {
	e := a.Echo

	// --- Public Routes (no auth required) ---

	// Liveness probe for the hosting platform; also handy as a smoke test.
	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "server is running")
	})

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// --- Auth ---
	tokens := auth.NewTokenService(a.Config.Auth.SecretKey, a.Config.Auth.TokenTTL)
	userRepo := auth.NewUserRepository(a.DB)
	authService := auth.NewAuthService(userRepo, tokens, a.Config.Auth.HashCost)
	authHandler := auth.NewHandler(authService)

	auth.RegisterRoutes(e, authHandler)

	// --- Chat (behind the auth gate) ---
	chatRepo := chat.NewChatRepository(a.DB)
	chatService := chat.NewChatService(chatRepo, userRepo, a.Gateway)
	chatHandler := chat.NewHandler(chatService)

	chat.RegisterRoutes(e, chatHandler, auth.RequireAuth(tokens))
}
