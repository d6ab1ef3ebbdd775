package sqlite

import (
	"context"
	"database/sql"
	"sync"
)

// ConnProvider hands out at most one dedicated database connection for the
// lifetime of a single request.
//
// CONNECTION-PER-REQUEST CONTRACT:
// sql.DB is a pool, not a connection — two queries in the same request may
// otherwise run on two different connections. The provider pins the request
// to a single *sql.Conn, opened lazily on the first store call, and returns
// it to the pool exactly once when the request ends. A request that never
// touches the database never opens a connection at all.
//
// The provider travels in the request context (see WithProvider) and is
// released by middleware.RequestConn in a defer, so release happens on every
// exit path — success, handled error, or panic. Providers are never shared
// across requests and never handed to background work.
type ConnProvider struct {
	db *DB

	mu       sync.Mutex
	conn     *sql.Conn
	released bool
}

// NewConnProvider creates a provider bound to this database. One per request.
func (db *DB) NewConnProvider() *ConnProvider {
	return &ConnProvider{db: db}
}

// Acquire returns the request's connection, opening it on first use and
// reusing it thereafter. Acquire after Release returns sql.ErrConnDone.
func (p *ConnProvider) Acquire(ctx context.Context) (*sql.Conn, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.released {
		return nil, sql.ErrConnDone
	}
	if p.conn != nil {
		return p.conn, nil
	}

	conn, err := p.db.pool.Conn(ctx)
	if err != nil {
		return nil, err
	}
	// foreign_keys is a per-connection pragma in SQLite, so it has to be
	// re-enabled on every dedicated connection we pull from the pool.
	if _, err := conn.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		conn.Close()
		return nil, err
	}
	p.conn = conn
	return conn, nil
}

// Release returns the connection to the pool if one was opened. Safe to call
// more than once; only the first call does anything.
func (p *ConnProvider) Release() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.released {
		return nil
	}
	p.released = true

	if p.conn == nil {
		return nil
	}
	conn := p.conn
	p.conn = nil
	return conn.Close()
}

// providerKey is an unexported context key type. A package-private type
// means only this package can read or write the provider in a context —
// no other package can collide with or shadow it.
type providerKey struct{}

// WithProvider stores the request's ConnProvider in the context.
func WithProvider(ctx context.Context, p *ConnProvider) context.Context {
	return context.WithValue(ctx, providerKey{}, p)
}

// ProviderFromContext returns the request's ConnProvider, or nil when the
// context doesn't carry one (tests, CLI commands).
func ProviderFromContext(ctx context.Context) *ConnProvider {
	p, _ := ctx.Value(providerKey{}).(*ConnProvider)
	return p
}
