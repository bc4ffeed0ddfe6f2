package auth

import (
	"errors"
	"strings"
	"testing"
	"time"
)

// newTestTokenService creates a TokenService with a fixed clock so issue
// and verify times can be controlled independently.
func newTestTokenService(secret string, ttl time.Duration, at time.Time) *TokenService {
	svc := NewTokenService(secret, ttl)
	svc.now = func() time.Time { return at }
	return svc
}

func TestIssueAndVerify_Success(t *testing.T) {
	svc := NewTokenService("test-secret", 24*time.Hour)

	token, err := svc.Issue("alice@example.com")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	email, err := svc.Verify(token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if email != "alice@example.com" {
		t.Errorf("expected alice@example.com, got %s", email)
	}
}

func TestVerify_ValidityWindow(t *testing.T) {
	issuedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	svc := newTestTokenService("test-secret", 24*time.Hour, issuedAt)
	token, err := svc.Issue("alice@example.com")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	tests := []struct {
		name    string
		checkAt time.Time
		wantOK  bool
	}{
		{"at issue time", issuedAt, true},
		{"one hour in", issuedAt.Add(time.Hour), true},
		{"just before expiry", issuedAt.Add(24*time.Hour - time.Second), true},
		{"at expiry", issuedAt.Add(24 * time.Hour), false},
		{"well past expiry", issuedAt.Add(48 * time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc.now = func() time.Time { return tt.checkAt }
			email, err := svc.Verify(token)
			if tt.wantOK {
				if err != nil {
					t.Fatalf("expected token to verify, got: %v", err)
				}
				if email != "alice@example.com" {
					t.Errorf("expected alice@example.com, got %s", email)
				}
				return
			}
			if !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got: %v", err)
			}
		})
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	issuer := NewTokenService("right-secret", 24*time.Hour)
	token, err := issuer.Issue("alice@example.com")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	verifier := NewTokenService("wrong-secret", 24*time.Hour)
	if _, err := verifier.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got: %v", err)
	}
}

func TestVerify_Tampered(t *testing.T) {
	svc := NewTokenService("test-secret", 24*time.Hour)
	token, err := svc.Issue("alice@example.com")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	// Flip one character in the middle of each segment (header, payload,
	// signature). Every variant must fail with the same opaque error.
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("expected 3 token segments, got %d", len(parts))
	}

	for i, name := range []string{"header", "payload", "signature"} {
		t.Run(name, func(t *testing.T) {
			tampered := make([]string, 3)
			copy(tampered, parts)

			seg := []byte(parts[i])
			mid := len(seg) / 2
			if seg[mid] == 'A' {
				seg[mid] = 'B'
			} else {
				seg[mid] = 'A'
			}
			tampered[i] = string(seg)

			_, err := svc.Verify(strings.Join(tampered, "."))
			if !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken for tampered %s, got: %v", name, err)
			}
		})
	}
}

func TestVerify_Malformed(t *testing.T) {
	svc := NewTokenService("test-secret", 24*time.Hour)

	tests := []struct {
		name  string
		token string
	}{
		{"empty string", ""},
		{"random text", "not-a-jwt"},
		{"two segments", "abc.def"},
		{"garbage segments", "!!!.???.###"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Verify(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got: %v", err)
			}
		})
	}
}

func TestVerify_FailuresIndistinguishable(t *testing.T) {
	issuedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc := newTestTokenService("test-secret", 24*time.Hour, issuedAt)

	expired, err := svc.Issue("alice@example.com")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	svc.now = func() time.Time { return issuedAt.Add(48 * time.Hour) }
	_, expiredErr := svc.Verify(expired)
	_, garbageErr := svc.Verify("not-a-jwt")

	// Expired and tampered tokens must produce the same error so clients
	// can't tell them apart.
	if expiredErr == nil || garbageErr == nil {
		t.Fatal("expected both verifications to fail")
	}
	if expiredErr.Error() != garbageErr.Error() {
		t.Errorf("expected identical error messages, got %q vs %q",
			expiredErr.Error(), garbageErr.Error())
	}
}

func TestTTL(t *testing.T) {
	svc := NewTokenService("test-secret", 24*time.Hour)
	if svc.TTL() != 24*time.Hour {
		t.Errorf("expected 24h TTL, got %v", svc.TTL())
	}
}
