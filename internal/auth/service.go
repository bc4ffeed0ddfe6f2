package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/kadelabs/converse/internal/apperror"
)

// minPasswordLength is the minimum accepted password length.
const minPasswordLength = 5

// AuthService defines the business logic contract for authentication.
// Handlers call these methods -- they never touch the repository directly.
type AuthService interface {
	Signup(ctx context.Context, input Credentials) error
	Signin(ctx context.Context, input Credentials) (token string, err error)
}

// authService implements AuthService with bcrypt hashing and signed
// stateless session tokens.
type authService struct {
	repo     UserRepository
	tokens   *TokenService
	hashCost int
}

// NewAuthService creates a new auth service with the given dependencies.
func NewAuthService(repo UserRepository, tokens *TokenService, hashCost int) AuthService {
	return &authService{
		repo:     repo,
		tokens:   tokens,
		hashCost: hashCost,
	}
}

// Signup creates a new user account. It validates the credentials shape,
// checks uniqueness, hashes the password with bcrypt, and persists the user.
// The hash is never returned.
func (s *authService) Signup(ctx context.Context, input Credentials) error {
	email, err := validateCredentials(&input)
	if err != nil {
		return err
	}

	// Check if email is already taken before doing expensive hashing.
	exists, err := s.repo.EmailExists(ctx, email)
	if err != nil {
		return apperror.NewInternal(fmt.Errorf("checking email: %w", err))
	}
	if exists {
		return apperror.NewConflict("existing user found, please sign in")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.hashCost)
	if err != nil {
		return apperror.NewInternal(fmt.Errorf("hashing password: %w", err))
	}

	user := &User{
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return apperror.NewInternal(fmt.Errorf("creating user: %w", err))
	}

	slog.Info("user signed up", slog.String("email", user.Email))

	return nil
}

// Signin authenticates a user by email and password. On success it issues a
// signed session token for transport as a cookie.
func (s *authService) Signin(ctx context.Context, input Credentials) (string, error) {
	email, err := validateCredentials(&input)
	if err != nil {
		return "", err
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			return "", err
		}
		return "", apperror.NewInternal(fmt.Errorf("finding user: %w", err))
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return "", apperror.NewUnauthorized("incorrect password")
	}

	token, err := s.tokens.Issue(user.Email)
	if err != nil {
		return "", apperror.NewInternal(fmt.Errorf("issuing token: %w", err))
	}

	slog.Info("user signed in", slog.String("email", user.Email))

	return token, nil
}

// validateCredentials checks the email format and minimum password length
// before any storage access, and returns the normalized email.
func validateCredentials(input *Credentials) (string, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return "", apperror.NewValidation("please enter correct input")
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return "", apperror.NewValidation("please enter correct input")
	}
	if len(input.Password) < minPasswordLength {
		return "", apperror.NewValidation("please enter correct input")
	}
	return email, nil
}
