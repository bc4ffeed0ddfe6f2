package chat

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kadelabs/converse/internal/apperror"
)

// ChatRepository defines the data access contract for chat operations.
type ChatRepository interface {
	CreateSession(ctx context.Context, s *Session) error
	FindSessionByID(ctx context.Context, id string) (*Session, error)
	ListSessionIDsByOwner(ctx context.Context, ownerEmail string) ([]string, error)

	// AppendTurnPair inserts the user prompt and the assistant reply as one
	// atomic update; a session never gains one without the other.
	AppendTurnPair(ctx context.Context, sessionID, prompt, reply string) error
	ListTurns(ctx context.Context, sessionID string) ([]Turn, error)
}

// chatRepository implements ChatRepository with hand-written MariaDB queries.
type chatRepository struct {
	db *sql.DB
}

// NewChatRepository creates a new chat repository backed by the given DB pool.
func NewChatRepository(db *sql.DB) ChatRepository {
	return &chatRepository{db: db}
}

// CreateSession inserts a new empty session.
func (r *chatRepository) CreateSession(ctx context.Context, s *Session) error {
	query := `INSERT INTO chat_sessions (id, owner_email, created_at) VALUES (?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query, s.ID, s.OwnerEmail, s.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting chat session: %w", err)
	}

	return nil
}

// FindSessionByID retrieves a session by its UUID.
// Returns apperror.NotFound if no session exists with this ID.
func (r *chatRepository) FindSessionByID(ctx context.Context, id string) (*Session, error) {
	query := `SELECT id, owner_email, created_at FROM chat_sessions WHERE id = ?`

	s := &Session{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&s.ID, &s.OwnerEmail, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("no chat found")
	}
	if err != nil {
		return nil, fmt.Errorf("querying chat session: %w", err)
	}

	return s, nil
}

// ListSessionIDsByOwner returns the owner's session ids in creation order.
// The seq column is assigned at insert, so this is exactly the order the
// sessions were appended to the owner's list.
func (r *chatRepository) ListSessionIDsByOwner(ctx context.Context, ownerEmail string) ([]string, error) {
	query := `SELECT id FROM chat_sessions WHERE owner_email = ? ORDER BY seq ASC`

	rows, err := r.db.QueryContext(ctx, query, ownerEmail)
	if err != nil {
		return nil, fmt.Errorf("listing chat sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning session id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// AppendTurnPair inserts a {user, prompt} turn immediately followed by an
// {assistant, reply} turn inside a single transaction. Turn order within a
// session comes from the auto-increment id, so concurrent appends to the
// same session interleave as whole pairs but never drop each other's rows.
func (r *chatRepository) AppendTurnPair(ctx context.Context, sessionID, prompt, reply string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning turn append: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO chat_turns (session_id, role, message) VALUES (?, ?, ?)`

	if _, err := tx.ExecContext(ctx, query, sessionID, RoleUser, prompt); err != nil {
		return fmt.Errorf("inserting user turn: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, sessionID, RoleAssistant, reply); err != nil {
		return fmt.Errorf("inserting assistant turn: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing turn append: %w", err)
	}

	return nil
}

// ListTurns returns the full turn sequence for a session in append order.
func (r *chatRepository) ListTurns(ctx context.Context, sessionID string) ([]Turn, error) {
	query := `SELECT role, message FROM chat_turns WHERE session_id = ? ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("listing turns: %w", err)
	}
	defer rows.Close()

	var turns []Turn
	for rows.Next() {
		var t Turn
		if err := rows.Scan(&t.Role, &t.Message); err != nil {
			return nil, fmt.Errorf("scanning turn: %w", err)
		}
		turns = append(turns, t)
	}

	return turns, rows.Err()
}
