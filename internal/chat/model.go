// Package chat manages per-user chat sessions for Converse: creating
// sessions, listing a user's sessions, proxying prompts to the LLM gateway,
// and persisting conversation turns. Sessions are owned by exactly one user
// and turns are append-only.
package chat

import "time"

// Turn roles. Every turn in a session is tagged with one of these.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Session represents a chat session owned by a single user. The owner is
// immutable after creation and the turn list only ever grows.
type Session struct {
	ID         string    `json:"id"`
	OwnerEmail string    `json:"owner_email"`
	CreatedAt  time.Time `json:"created_at"`
}

// Turn is one message exchange unit within a session.
type Turn struct {
	Role    string `json:"role"`
	Message string `json:"message"`
}

// --- Request DTOs (bound from HTTP requests) ---

// PromptRequest holds the body of POST /chat/:id.
type PromptRequest struct {
	Prompt string `json:"prompt"`
}

// --- Response DTOs ---

// CreateChatResponse is the body returned by GET /chat.
type CreateChatResponse struct {
	Success bool   `json:"success"`
	ChatID  string `json:"chatId"`
	Message string `json:"message"`
}

// ListChatsResponse is the body returned by GET /chats.
type ListChatsResponse struct {
	Chats []string `json:"chats"`
}

// HistoryResponse is the body returned by GET /chat/:id.
type HistoryResponse struct {
	History []Turn `json:"history"`
}

// MessageResponse is the body returned by POST /chat/:id, carrying the
// assistant's reply.
type MessageResponse struct {
	Msg string `json:"msg"`
}
