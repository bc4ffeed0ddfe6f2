package chat

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/kadelabs/converse/internal/apperror"
	"github.com/kadelabs/converse/internal/auth"
)

// Handler processes HTTP requests for the chat plugin. Handlers are thin:
// they resolve the authenticated identity from the context, call the
// service, and render the response.
type Handler struct {
	svc ChatService
}

// NewHandler creates a new chat Handler.
func NewHandler(svc ChatService) *Handler {
	return &Handler{svc: svc}
}

// CreateChat creates a new empty chat session for the authenticated user.
// GET /chat
func (h *Handler) CreateChat(c echo.Context) error {
	email := auth.GetEmail(c)

	id, err := h.svc.CreateSession(c.Request().Context(), email)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, CreateChatResponse{
		Success: true,
		ChatID:  id,
		Message: "chat created successfully",
	})
}

// ListChats returns all chat session ids owned by the authenticated user.
// GET /chats
func (h *Handler) ListChats(c echo.Context) error {
	email := auth.GetEmail(c)

	ids, err := h.svc.ListSessions(c.Request().Context(), email)
	if err != nil {
		return err
	}
	if ids == nil {
		ids = []string{}
	}

	return c.JSON(http.StatusOK, ListChatsResponse{Chats: ids})
}

// GetHistory returns the full turn sequence of one chat session.
// GET /chat/:id
func (h *Handler) GetHistory(c echo.Context) error {
	email := auth.GetEmail(c)
	sessionID := c.Param("id")

	turns, err := h.svc.GetHistory(c.Request().Context(), sessionID, email)
	if err != nil {
		return err
	}
	if turns == nil {
		turns = []Turn{}
	}

	return c.JSON(http.StatusOK, HistoryResponse{History: turns})
}

// SendPrompt proxies a prompt to the LLM and appends the resulting turn
// pair to the session.
// POST /chat/:id
func (h *Handler) SendPrompt(c echo.Context) error {
	email := auth.GetEmail(c)
	sessionID := c.Param("id")

	var req PromptRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request")
	}
	if req.Prompt == "" {
		return apperror.NewBadRequest("prompt is required")
	}

	reply, err := h.svc.AppendTurn(c.Request().Context(), sessionID, email, req.Prompt)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, MessageResponse{Msg: reply})
}
