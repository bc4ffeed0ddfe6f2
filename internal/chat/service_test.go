package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/kadelabs/converse/internal/apperror"
)

// mockChatRepository is a mock implementation of ChatRepository for testing.
type mockChatRepository struct {
	createSessionFunc         func(ctx context.Context, s *Session) error
	findSessionByIDFunc       func(ctx context.Context, id string) (*Session, error)
	listSessionIDsByOwnerFunc func(ctx context.Context, ownerEmail string) ([]string, error)
	appendTurnPairFunc        func(ctx context.Context, sessionID, prompt, reply string) error
	listTurnsFunc             func(ctx context.Context, sessionID string) ([]Turn, error)
}

func (m *mockChatRepository) CreateSession(ctx context.Context, s *Session) error {
	if m.createSessionFunc != nil {
		return m.createSessionFunc(ctx, s)
	}
	return nil
}

func (m *mockChatRepository) FindSessionByID(ctx context.Context, id string) (*Session, error) {
	if m.findSessionByIDFunc != nil {
		return m.findSessionByIDFunc(ctx, id)
	}
	return nil, apperror.NewNotFound("no chat found")
}

func (m *mockChatRepository) ListSessionIDsByOwner(ctx context.Context, ownerEmail string) ([]string, error) {
	if m.listSessionIDsByOwnerFunc != nil {
		return m.listSessionIDsByOwnerFunc(ctx, ownerEmail)
	}
	return nil, nil
}

func (m *mockChatRepository) AppendTurnPair(ctx context.Context, sessionID, prompt, reply string) error {
	if m.appendTurnPairFunc != nil {
		return m.appendTurnPairFunc(ctx, sessionID, prompt, reply)
	}
	return nil
}

func (m *mockChatRepository) ListTurns(ctx context.Context, sessionID string) ([]Turn, error) {
	if m.listTurnsFunc != nil {
		return m.listTurnsFunc(ctx, sessionID)
	}
	return nil, nil
}

// mockOwnerDirectory is a mock implementation of OwnerDirectory.
type mockOwnerDirectory struct {
	emailExistsFunc func(ctx context.Context, email string) (bool, error)
}

func (m *mockOwnerDirectory) EmailExists(ctx context.Context, email string) (bool, error) {
	if m.emailExistsFunc != nil {
		return m.emailExistsFunc(ctx, email)
	}
	return true, nil
}

// mockGateway is a mock implementation of llm.Gateway.
type mockGateway struct {
	generateFunc func(ctx context.Context, prompt string) (string, error)
	calls        int
}

func (m *mockGateway) Generate(ctx context.Context, prompt string) (string, error) {
	m.calls++
	if m.generateFunc != nil {
		return m.generateFunc(ctx, prompt)
	}
	return "mock reply", nil
}

// assertAppError checks that err is an AppError with the expected status code.
func assertAppError(t *testing.T, err error, wantCode int) *apperror.AppError {
	t.Helper()
	if err == nil {
		t.Fatal("expected an error, got nil")
	}
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %T: %v", err, err)
	}
	if appErr.Code != wantCode {
		t.Fatalf("expected status %d, got %d (%s)", wantCode, appErr.Code, appErr.Message)
	}
	return appErr
}

func TestCreateSession_Success(t *testing.T) {
	var created *Session
	repo := &mockChatRepository{
		createSessionFunc: func(ctx context.Context, s *Session) error {
			created = s
			return nil
		},
	}
	svc := NewChatService(repo, &mockOwnerDirectory{}, &mockGateway{})

	id, err := svc.CreateSession(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if id == "" {
		t.Fatal("expected non-empty session id")
	}
	if created == nil {
		t.Fatal("expected session to be persisted")
	}
	if created.ID != id {
		t.Errorf("persisted id %s does not match returned id %s", created.ID, id)
	}
	if created.OwnerEmail != "alice@example.com" {
		t.Errorf("expected owner alice@example.com, got %s", created.OwnerEmail)
	}
}

func TestCreateSession_IDsAreUnique(t *testing.T) {
	svc := NewChatService(&mockChatRepository{}, &mockOwnerDirectory{}, &mockGateway{})

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id, err := svc.CreateSession(context.Background(), "alice@example.com")
		if err != nil {
			t.Fatalf("CreateSession failed: %v", err)
		}
		if seen[id] {
			t.Fatalf("duplicate session id %s", id)
		}
		seen[id] = true
	}
}

func TestCreateSession_UnknownOwner(t *testing.T) {
	owners := &mockOwnerDirectory{
		emailExistsFunc: func(ctx context.Context, email string) (bool, error) {
			return false, nil
		},
	}
	svc := NewChatService(&mockChatRepository{}, owners, &mockGateway{})

	_, err := svc.CreateSession(context.Background(), "ghost@example.com")
	assertAppError(t, err, 404)
}

func TestListSessions_CreationOrder(t *testing.T) {
	repo := &mockChatRepository{
		listSessionIDsByOwnerFunc: func(ctx context.Context, ownerEmail string) ([]string, error) {
			return []string{"id-1", "id-2", "id-3"}, nil
		},
	}
	svc := NewChatService(repo, &mockOwnerDirectory{}, &mockGateway{})

	ids, err := svc.ListSessions(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	want := []string{"id-1", "id-2", "id-3"}
	if len(ids) != len(want) {
		t.Fatalf("expected %d ids, got %d", len(want), len(ids))
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], ids[i])
		}
	}
}

func TestListSessions_UnknownOwner(t *testing.T) {
	owners := &mockOwnerDirectory{
		emailExistsFunc: func(ctx context.Context, email string) (bool, error) {
			return false, nil
		},
	}
	svc := NewChatService(&mockChatRepository{}, owners, &mockGateway{})

	_, err := svc.ListSessions(context.Background(), "ghost@example.com")
	assertAppError(t, err, 404)
}

func ownedSession(owner string) *Session {
	return &Session{ID: "session-1", OwnerEmail: owner}
}

func TestAppendTurn_Success(t *testing.T) {
	var gotSessionID, gotPrompt, gotReply string
	repo := &mockChatRepository{
		findSessionByIDFunc: func(ctx context.Context, id string) (*Session, error) {
			return ownedSession("alice@example.com"), nil
		},
		appendTurnPairFunc: func(ctx context.Context, sessionID, prompt, reply string) error {
			gotSessionID, gotPrompt, gotReply = sessionID, prompt, reply
			return nil
		},
	}
	gateway := &mockGateway{
		generateFunc: func(ctx context.Context, prompt string) (string, error) {
			return "the capital of France is Paris", nil
		},
	}
	svc := NewChatService(repo, &mockOwnerDirectory{}, gateway)

	reply, err := svc.AppendTurn(context.Background(), "session-1", "alice@example.com", "capital of France?")
	if err != nil {
		t.Fatalf("AppendTurn failed: %v", err)
	}
	if reply != "the capital of France is Paris" {
		t.Errorf("unexpected reply %q", reply)
	}
	if gotSessionID != "session-1" || gotPrompt != "capital of France?" || gotReply != reply {
		t.Errorf("unexpected persisted pair: session=%s prompt=%q reply=%q", gotSessionID, gotPrompt, gotReply)
	}
}

func TestAppendTurn_SessionNotFound(t *testing.T) {
	gateway := &mockGateway{}
	appended := false
	repo := &mockChatRepository{
		appendTurnPairFunc: func(ctx context.Context, sessionID, prompt, reply string) error {
			appended = true
			return nil
		},
	}
	svc := NewChatService(repo, &mockOwnerDirectory{}, gateway)

	_, err := svc.AppendTurn(context.Background(), "missing", "alice@example.com", "hello")
	assertAppError(t, err, 404)
	if gateway.calls != 0 {
		t.Error("expected no LLM call for a missing session")
	}
	if appended {
		t.Error("expected no turns to be written for a missing session")
	}
}

func TestAppendTurn_CrossOwnerDenied(t *testing.T) {
	gateway := &mockGateway{}
	repo := &mockChatRepository{
		findSessionByIDFunc: func(ctx context.Context, id string) (*Session, error) {
			return ownedSession("bob@example.com"), nil
		},
	}
	svc := NewChatService(repo, &mockOwnerDirectory{}, gateway)

	_, err := svc.AppendTurn(context.Background(), "session-1", "alice@example.com", "hello")

	// Another owner's session reads the same as a missing one.
	appErr := assertAppError(t, err, 404)
	if appErr.Message != "no chat found" {
		t.Errorf("expected opaque not-found message, got %q", appErr.Message)
	}
	if gateway.calls != 0 {
		t.Error("expected no LLM call for another owner's session")
	}
}

func TestAppendTurn_GatewayFailureLeavesSessionUnmodified(t *testing.T) {
	appended := false
	repo := &mockChatRepository{
		findSessionByIDFunc: func(ctx context.Context, id string) (*Session, error) {
			return ownedSession("alice@example.com"), nil
		},
		appendTurnPairFunc: func(ctx context.Context, sessionID, prompt, reply string) error {
			appended = true
			return nil
		},
	}
	gateway := &mockGateway{
		generateFunc: func(ctx context.Context, prompt string) (string, error) {
			return "", errors.New("model quota exceeded")
		},
	}
	svc := NewChatService(repo, &mockOwnerDirectory{}, gateway)

	_, err := svc.AppendTurn(context.Background(), "session-1", "alice@example.com", "hello")
	assertAppError(t, err, 502)
	if appended {
		t.Error("expected no turns to be written on gateway failure")
	}
}

func TestAppendTurn_RepositoryError(t *testing.T) {
	repo := &mockChatRepository{
		findSessionByIDFunc: func(ctx context.Context, id string) (*Session, error) {
			return ownedSession("alice@example.com"), nil
		},
		appendTurnPairFunc: func(ctx context.Context, sessionID, prompt, reply string) error {
			return errors.New("deadlock detected")
		},
	}
	svc := NewChatService(repo, &mockOwnerDirectory{}, &mockGateway{})

	_, err := svc.AppendTurn(context.Background(), "session-1", "alice@example.com", "hello")
	assertAppError(t, err, 500)
}

func TestGetHistory_AppendOrder(t *testing.T) {
	repo := &mockChatRepository{
		findSessionByIDFunc: func(ctx context.Context, id string) (*Session, error) {
			return ownedSession("alice@example.com"), nil
		},
		listTurnsFunc: func(ctx context.Context, sessionID string) ([]Turn, error) {
			return []Turn{
				{Role: RoleUser, Message: "hello"},
				{Role: RoleAssistant, Message: "hi there"},
				{Role: RoleUser, Message: "bye"},
				{Role: RoleAssistant, Message: "goodbye"},
			}, nil
		},
	}
	svc := NewChatService(repo, &mockOwnerDirectory{}, &mockGateway{})

	turns, err := svc.GetHistory(context.Background(), "session-1", "alice@example.com")
	if err != nil {
		t.Fatalf("GetHistory failed: %v", err)
	}
	if len(turns) != 4 {
		t.Fatalf("expected 4 turns, got %d", len(turns))
	}
	wantRoles := []string{RoleUser, RoleAssistant, RoleUser, RoleAssistant}
	for i, want := range wantRoles {
		if turns[i].Role != want {
			t.Errorf("turn %d: expected role %s, got %s", i, want, turns[i].Role)
		}
	}
}

func TestGetHistory_SessionNotFound(t *testing.T) {
	svc := NewChatService(&mockChatRepository{}, &mockOwnerDirectory{}, &mockGateway{})

	_, err := svc.GetHistory(context.Background(), "missing", "alice@example.com")
	assertAppError(t, err, 404)
}

func TestGetHistory_CrossOwnerDenied(t *testing.T) {
	repo := &mockChatRepository{
		findSessionByIDFunc: func(ctx context.Context, id string) (*Session, error) {
			return ownedSession("bob@example.com"), nil
		},
	}
	svc := NewChatService(repo, &mockOwnerDirectory{}, &mockGateway{})

	_, err := svc.GetHistory(context.Background(), "session-1", "alice@example.com")
	assertAppError(t, err, 404)
}
