package auth

import (
	"errors"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned by Verify for every rejected token. Expired,
// tampered, and malformed tokens all map to this single error so callers
// (and therefore clients) cannot distinguish the failure modes; the precise
// reason is logged internally.
var ErrInvalidToken = errors.New("invalid or expired token")

// Claims carries the identity attested by a signed session token.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies stateless HS256-signed session tokens.
// Tokens embed the user's email, an issued-at timestamp, and an expiration
// of issued-at plus the configured TTL. There is no server-side session
// store and no revocation list; a token is valid until it expires.
type TokenService struct {
	secret []byte
	ttl    time.Duration

	// now is swapped out in tests to control issue and verify time.
	now func() time.Time
}

// NewTokenService creates a token service signing with the given secret.
func NewTokenService(secret string, ttl time.Duration) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// TTL returns the configured token validity window. The session cookie's
// Max-Age is derived from this so the transport-level expiry always matches
// the expiration inside the signed payload.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue mints a signed token for the given email, valid from now until
// now + TTL.
func (s *TokenService) Issue(email string) (string, error) {
	now := s.now().UTC()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	})

	return token.SignedString(s.secret)
}

// Verify checks the token's signature and validity window and returns the
// embedded email. Any failure returns ErrInvalidToken.
func (s *TokenService) Verify(tokenString string) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		// The precise failure mode is visible only in logs.
		if errors.Is(err, jwt.ErrTokenExpired) {
			slog.Debug("session token expired")
		} else {
			slog.Debug("session token rejected", slog.Any("error", err))
		}
		return "", ErrInvalidToken
	}

	if !token.Valid || claims.Email == "" {
		return "", ErrInvalidToken
	}

	return claims.Email, nil
}
