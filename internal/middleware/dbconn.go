package middleware

import (
	"log/slog"
	"net/http"

	"github.com/sakif/miniblog/internal/repository/sqlite"
)

// RequestConn scopes one database connection to each request.
//
// The provider goes into the request context up front, but no connection is
// opened until a store actually runs a query — a request that serves a 401
// from the auth gate, or decodes bad JSON, never touches the pool. Every
// store call within the request then reuses that same single connection.
//
// The deferred Release is the other half of the contract: it runs exactly
// once when the request ends, on every exit path. That includes panics —
// the defer fires as the panic unwinds past this frame, before chi's
// Recoverer (mounted outside this middleware) turns it into a 500.
// Connections never outlive their request and are never handed to
// background work.
func RequestConn(db *sqlite.DB, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			provider := db.NewConnProvider()
			defer func() {
				if err := provider.Release(); err != nil {
					logger.Warn("failed to release request connection",
						slog.String("path", r.URL.Path),
						slog.String("error", err.Error()),
					)
				}
			}()

			ctx := sqlite.WithProvider(r.Context(), provider)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
