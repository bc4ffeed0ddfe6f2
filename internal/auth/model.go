// Package auth handles user accounts and the session-token lifecycle for
// Converse: signup, signin, logout, token issuance/verification, and the
// request gate that resolves the authenticated identity.
package auth

import "time"

// User represents a registered Converse user. Users are keyed by email and
// are never deleted; the password hash is never updated by this core.
type User struct {
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose in JSON responses.
	CreatedAt    time.Time `json:"created_at"`
}

// --- Request DTOs (bound from HTTP requests) ---

// CredentialsRequest holds the body of signup and signin requests.
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// --- Response DTOs ---

// SignupResponse is the body returned by POST /signup.
type SignupResponse struct {
	Success bool   `json:"success"`
	Msg     string `json:"msg"`
}

// SigninResponse is the body returned by POST /signin. The field is named
// "message" rather than "msg" to stay wire-compatible with existing clients.
type SigninResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// LogoutResponse is the body returned by GET /logout.
type LogoutResponse struct {
	Success bool `json:"success"`
}

// --- Service Input DTOs (passed from handler to service) ---

// Credentials is the input for Signup and Signin.
type Credentials struct {
	Email    string
	Password string
}
