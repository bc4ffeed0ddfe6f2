package auth

import (
	"github.com/labstack/echo/v4"

	"github.com/kadelabs/converse/internal/apperror"
)

// contextKeyEmail stores the verified identity in the Echo context. Other
// packages access it via GetEmail.
const contextKeyEmail = "auth_email"

// RequireAuth returns the authentication gate applied to every protected
// route. It extracts the session token from the request cookie, verifies it,
// and injects the resolved email into the request context. Requests with a
// missing or unverifiable token are rejected before the downstream handler
// runs.
func RequireAuth(tokens *TokenService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := getSessionToken(c)
			if token == "" {
				return apperror.NewUnauthorized("user not authorised")
			}

			email, err := tokens.Verify(token)
			if err != nil {
				// Invalid or expired token -- clear the stale cookie.
				clearSessionCookie(c)
				return apperror.NewUnauthorized(err.Error())
			}

			c.Set(contextKeyEmail, email)

			return next(c)
		}
	}
}

// GetEmail retrieves the authenticated user's email from the Echo context.
// Returns empty string if the request is not authenticated (gate not applied).
func GetEmail(c echo.Context) string {
	email, ok := c.Get(contextKeyEmail).(string)
	if !ok {
		return ""
	}
	return email
}
