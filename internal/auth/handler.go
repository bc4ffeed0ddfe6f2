package auth

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kadelabs/converse/internal/apperror"
)

// sessionCookieName is the HTTP cookie used to store the session token.
const sessionCookieName = "converse_token"

// Handler handles HTTP requests for authentication (signup, signin, logout).
// Handlers are thin: they bind the request, call the service, and render the
// response. No business logic lives here.
//
// Signup/signin business failures (existing user, wrong password, malformed
// input) are returned as 200 responses with success=false so browser clients
// can render the message directly; only infrastructure failures bubble up to
// the error handler.
type Handler struct {
	service AuthService
}

// NewHandler creates a new auth handler with the given service.
func NewHandler(service AuthService) *Handler {
	return &Handler{service: service}
}

// Signup processes new-account requests (POST /signup).
func (h *Handler) Signup(c echo.Context) error {
	var req CredentialsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusOK, SignupResponse{Success: false, Msg: "please enter correct input"})
	}

	err := h.service.Signup(c.Request().Context(), Credentials{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if apperror.SafeCode(err) == http.StatusInternalServerError {
			return err
		}
		return c.JSON(http.StatusOK, SignupResponse{Success: false, Msg: apperror.SafeMessage(err)})
	}

	return c.JSON(http.StatusOK, SignupResponse{Success: true, Msg: "user created successfully"})
}

// Signin processes login requests (POST /signin). On success it sets the
// session-token cookie alongside the JSON body.
func (h *Handler) Signin(c echo.Context) error {
	var req CredentialsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusOK, SigninResponse{Success: false, Message: "please enter correct input"})
	}

	token, err := h.service.Signin(c.Request().Context(), Credentials{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if apperror.SafeCode(err) == http.StatusInternalServerError {
			return err
		}
		return c.JSON(http.StatusOK, SigninResponse{Success: false, Message: apperror.SafeMessage(err)})
	}

	setSessionCookie(c, token, h.cookieMaxAge())
	return c.JSON(http.StatusOK, SigninResponse{Success: true, Message: "user logged in successfully"})
}

// Logout clears the session cookie (GET /logout). Tokens are stateless so
// there is nothing to revoke server-side; dropping the cookie is the whole
// operation.
func (h *Handler) Logout(c echo.Context) error {
	clearSessionCookie(c)
	return c.JSON(http.StatusOK, LogoutResponse{Success: true})
}

// cookieMaxAge derives the cookie lifetime from the token TTL so the
// transport expiry and the signed expiration claim never disagree.
func (h *Handler) cookieMaxAge() int {
	if svc, ok := h.service.(*authService); ok {
		return int(svc.tokens.TTL() / time.Second)
	}
	return int(24 * time.Hour / time.Second)
}

// --- Cookie helpers ---

// getSessionToken reads the session token from the cookie.
func getSessionToken(c echo.Context) string {
	cookie, err := c.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return ""
	}
	return cookie.Value
}

// setSessionCookie sets the session cookie on the response. The frontend is
// served from a different origin, so the cookie must be SameSite=None and
// Secure for browsers to send it cross-site.
func setSessionCookie(c echo.Context, token string, maxAge int) {
	c.SetCookie(&http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
		MaxAge:   maxAge,
	})
}

// clearSessionCookie removes the session cookie by setting MaxAge to -1.
func clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
		MaxAge:   -1,
	})
}
