package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/miniblog/internal/apperror"
	"github.com/sakif/miniblog/internal/model"
)

// SessionCookie is the name of the HttpOnly cookie carrying the session
// token. Shared with the auth handler, which sets it on login and expires
// it on logout.
const SessionCookie = "session"

// UserResolver is the per-request user lookup the middleware needs.
// Satisfied by service.AuthService; tests plug in fakes.
type UserResolver interface {
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// contextKey is an unexported type for this package's context keys.
//
// context.WithValue takes any key; a plain string like "user" could be read
// or shadowed by any package that guesses it. A package-private type means
// only this package can put users into, or take them out of, a context.
type contextKey struct{}

var userKey contextKey

// CurrentUser resolves the session at the start of every request, before
// any handler runs.
//
// It reads the session cookie, validates the token, and RE-FETCHES the user
// record through the resolver. The re-fetch is deliberate: the token only
// proves who the caller was at login time, the database says who they are
// now. A user deleted after login goes anonymous on their very next request,
// live token or not, and a username seen by handlers is never stale.
//
// Anonymous is a valid state, not an error — a missing, expired, or garbage
// token, or a token for a since-deleted account, just means no user lands in
// the context and the chain continues. RequireAuth is the gate that turns
// "anonymous" into a rejection.
//
// A store fault is different: the lookup didn't answer "no such user", it
// didn't answer at all. Treating that as anonymous would turn a database
// outage into a 401 telling the caller to log in again, so the request is
// aborted with a 500 instead.
func CurrentUser(tokens *TokenService, users UserResolver, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookie)
			if err != nil {
				// http.ErrNoCookie — anonymous request
				next.ServeHTTP(w, r)
				return
			}

			userID, err := tokens.Validate(cookie.Value)
			if err != nil {
				// Invalid or expired token: treat as anonymous rather than
				// failing, so a stale cookie doesn't lock a visitor out of
				// public pages.
				next.ServeHTTP(w, r)
				return
			}

			user, err := users.GetUserByID(r.Context(), userID)
			if err != nil {
				if errors.Is(err, apperror.ErrNotFound) {
					// Token is valid but the account no longer exists.
					logger.Warn("session user no longer exists",
						slog.String("userID", userID),
					)
					next.ServeHTTP(w, r)
					return
				}

				logger.Error("session user lookup failed",
					slog.String("userID", userID),
					slog.String("error", err.Error()),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(`{"error":"internal_error","message":"An internal error occurred"}`))
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuth guards routes that need a logged-in user. It must be mounted
// after CurrentUser. Anonymous requests are stopped with 401 before the
// handler runs; the response names the login path so clients know where to
// send the user.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserFromContext(r.Context()); !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"unauthorized","message":"not authenticated","login":"/api/auth/login"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// UserFromContext returns the authenticated user resolved by CurrentUser.
//
// Returns (nil, false) for anonymous requests. Handlers behind RequireAuth
// can rely on ok being true.
func UserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(userKey).(*model.User)
	return user, ok && user != nil
}
