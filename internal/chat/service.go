package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kadelabs/converse/internal/apperror"
	"github.com/kadelabs/converse/internal/llm"
)

// OwnerDirectory reports whether a user exists. Satisfied by the auth
// package's UserRepository; kept as a local interface so this package does
// not depend on auth internals.
type OwnerDirectory interface {
	EmailExists(ctx context.Context, email string) (bool, error)
}

// ChatService defines the business logic contract for chat sessions.
// Handlers call these methods -- they never touch the repository directly.
// Every operation takes the verified identity resolved by the auth gate;
// session access is restricted to the owner.
type ChatService interface {
	CreateSession(ctx context.Context, ownerEmail string) (string, error)
	ListSessions(ctx context.Context, ownerEmail string) ([]string, error)
	AppendTurn(ctx context.Context, sessionID, ownerEmail, prompt string) (string, error)
	GetHistory(ctx context.Context, sessionID, ownerEmail string) ([]Turn, error)
}

// chatService implements ChatService.
type chatService struct {
	repo    ChatRepository
	owners  OwnerDirectory
	gateway llm.Gateway
}

// NewChatService creates a new chat service with the given dependencies.
func NewChatService(repo ChatRepository, owners OwnerDirectory, gateway llm.Gateway) ChatService {
	return &chatService{
		repo:    repo,
		owners:  owners,
		gateway: gateway,
	}
}

// CreateSession creates a new empty session owned by ownerEmail and returns
// its id. The owner-existence check is defensive: the auth gate already
// verified the identity, but a stale token can outlive its user row in
// environments where the database is reset.
func (s *chatService) CreateSession(ctx context.Context, ownerEmail string) (string, error) {
	exists, err := s.owners.EmailExists(ctx, ownerEmail)
	if err != nil {
		return "", apperror.NewInternal(fmt.Errorf("checking owner: %w", err))
	}
	if !exists {
		return "", apperror.NewNotFound("owner not found")
	}

	session := &Session{
		ID:         uuid.NewString(),
		OwnerEmail: ownerEmail,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.repo.CreateSession(ctx, session); err != nil {
		return "", apperror.NewInternal(fmt.Errorf("creating session: %w", err))
	}

	slog.Info("chat session created",
		slog.String("session_id", session.ID),
		slog.String("owner", ownerEmail),
	)

	return session.ID, nil
}

// ListSessions returns the owner's session ids in creation order.
func (s *chatService) ListSessions(ctx context.Context, ownerEmail string) ([]string, error) {
	exists, err := s.owners.EmailExists(ctx, ownerEmail)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("checking owner: %w", err))
	}
	if !exists {
		return nil, apperror.NewNotFound("owner not found")
	}

	ids, err := s.repo.ListSessionIDsByOwner(ctx, ownerEmail)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("listing sessions: %w", err))
	}

	return ids, nil
}

// AppendTurn sends the prompt to the LLM gateway and, on success, appends
// the {user, prompt} + {assistant, reply} pair to the session as one atomic
// update. On gateway failure the session is left unmodified and the error
// surfaces to the caller.
func (s *chatService) AppendTurn(ctx context.Context, sessionID, ownerEmail, prompt string) (string, error) {
	if _, err := s.requireOwnedSession(ctx, sessionID, ownerEmail); err != nil {
		return "", err
	}

	reply, err := s.gateway.Generate(ctx, prompt)
	if err != nil {
		return "", apperror.NewGateway(err)
	}

	if err := s.repo.AppendTurnPair(ctx, sessionID, prompt, reply); err != nil {
		return "", apperror.NewInternal(fmt.Errorf("appending turns: %w", err))
	}

	return reply, nil
}

// GetHistory returns the session's full turn sequence in append order.
func (s *chatService) GetHistory(ctx context.Context, sessionID, ownerEmail string) ([]Turn, error) {
	if _, err := s.requireOwnedSession(ctx, sessionID, ownerEmail); err != nil {
		return nil, err
	}

	turns, err := s.repo.ListTurns(ctx, sessionID)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("listing turns: %w", err))
	}

	return turns, nil
}

// requireOwnedSession loads a session and verifies it belongs to the given
// identity. A session owned by someone else reads as "no chat found" so
// session ids are not probeable across accounts.
func (s *chatService) requireOwnedSession(ctx context.Context, sessionID, ownerEmail string) (*Session, error) {
	session, err := s.repo.FindSessionByID(ctx, sessionID)
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, apperror.NewInternal(fmt.Errorf("finding session: %w", err))
	}

	if session.OwnerEmail != ownerEmail {
		slog.Warn("cross-owner chat access denied",
			slog.String("session_id", sessionID),
			slog.String("owner", session.OwnerEmail),
			slog.String("caller", ownerEmail),
		)
		return nil, apperror.NewNotFound("no chat found")
	}

	return session, nil
}
