package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/miniblog/internal/auth"
	"github.com/sakif/miniblog/internal/service"
)

// AuthHandler owns the authentication endpoints.
//
//	POST /api/auth/register → create an account, point at login
//	POST /api/auth/login    → verify credentials, set the session cookie
//	POST /api/auth/logout   → expire the session cookie
//	GET  /api/me            → the currently logged-in user
//
// The handler's share of session management is the cookie: the service
// issues and verifies tokens but never touches HTTP. Setting a new cookie on
// login implicitly discards whatever session the browser held before —
// the stateless equivalent of clearing prior session state.
type AuthHandler struct {
	auth   *service.AuthService
	logger *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(authService *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: authService, logger: logger}
}

// credentials is the request body for both register and login.
type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// HandleRegister creates a new account.
//
// HTTP: POST /api/auth/register
// BODY: {"username": "alice", "password": "s3cret"}
//
// 201 with a redirect hint on success; 400 on missing fields; 409 when the
// username is taken. Registration never logs the user in.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		h.logger.Warn("invalid register JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid JSON body",
		})
		return
	}

	if err := h.auth.Register(r.Context(), creds.Username, creds.Password); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"redirect": "/api/auth/login",
	})
}

// HandleLogin verifies credentials and starts a session.
//
// HTTP: POST /api/auth/login
//
// On success the session token lands in an HttpOnly cookie:
//   - HttpOnly: JavaScript can't read it, so XSS can't steal the session
//   - SameSite=Lax: the browser withholds it on cross-site POSTs
//   - MaxAge matches the token's own expiry
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		h.logger.Warn("invalid login JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid JSON body",
		})
		return
	}

	result, err := h.auth.Login(r.Context(), creds.Username, creds.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    result.Token,
		Path:     "/",
		MaxAge:   int(auth.SessionDuration.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, result.User)
}

// HandleLogout clears the session cookie.
//
// HTTP: POST /api/auth/logout
//
// MaxAge=-1 tells the browser to delete the cookie immediately. There is no
// server-side state to tear down, so logging out twice, or while anonymous,
// is a no-op — always 204.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	w.WriteHeader(http.StatusNoContent)
}

// HandleMe returns the current user's profile.
//
// HTTP: GET /api/me (behind RequireAuth)
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		// RequireAuth already guards this route; reaching here without a
		// user means a wiring mistake, not a client error.
		h.logger.Error("HandleMe reached without authenticated user")
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "not authenticated",
			Login:   "/api/auth/login",
		})
		return
	}

	writeJSON(w, http.StatusOK, user)
}
