// Package sqlite implements the repository interfaces using SQLite as the
// storage backend.
//
// WHY SQLITE?
// SQLite is an embedded database — it lives inside the Go binary as a single
// file. No separate database server to install, configure, or manage. For a
// single-server publishing service that is exactly enough: the database's
// own consistency model (atomic single-statement writes, UNIQUE and foreign
// key constraints) is the only write-ordering arbiter this design relies on.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo, which means you need a C compiler installed and
// cross-compilation becomes painful. modernc.org/sqlite is a pure Go
// translation of the SQLite C code — works everywhere Go works.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	// BLANK IMPORT:
	// Side-effect only — the sqlite package's init() registers itself with
	// database/sql as a driver named "sqlite". After this import,
	// sql.Open("sqlite", ...) knows how to talk to SQLite.
	_ "modernc.org/sqlite"
)

// querier is the subset of database/sql operations the stores need. Both
// *sql.DB (the pool) and *sql.Conn (a single dedicated connection) satisfy
// it, which is what lets every store method run either on the request's own
// connection or straight against the pool.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// DB wraps a sql.DB connection pool and provides the repository methods.
type DB struct {
	pool *sql.DB
}

// New opens the SQLite database at dbPath and applies the schema.
//
// dbPath examples:
//   - "data/miniblog.db"  → file-based database (persistent)
//   - ":memory:"          → in-memory database (great for tests, lost on close)
//
// sql.Open does NOT actually connect — it just creates a pool manager. The
// Ping forces an immediate connection so a bad path or permissions problem
// surfaces here instead of on the first query.
func New(dbPath string) (*DB, error) {
	pool, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// An in-memory SQLite database exists per connection — two pool
	// connections would see two different empty databases. Pinning the pool
	// to a single connection keeps ":memory:" coherent for tests and the
	// initdb command.
	if dbPath == ":memory:" {
		pool.SetMaxOpenConns(1)
	}

	if err := pool.Ping(); err != nil {
		pool.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL mode allows concurrent reads while a write is in progress —
	// without it SQLite locks the whole file for every write, which stalls
	// a web server under even mild traffic.
	if _, err := pool.Exec("PRAGMA journal_mode=WAL"); err != nil {
		pool.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are OFF by default in SQLite (backwards compatibility).
	// posts.author_id references users, so we need referential integrity on.
	if _, err := pool.Exec("PRAGMA foreign_keys=ON"); err != nil {
		pool.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{pool: pool}

	if err := db.Migrate(); err != nil {
		pool.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool. Always defer this next to New:
// it flushes the WAL and releases the file lock.
func (db *DB) Close() error {
	return db.pool.Close()
}

// Migrate creates the schema. CREATE TABLE IF NOT EXISTS makes it safe to
// run on every start and from the initdb command.
func (db *DB) Migrate() error {
	_, err := db.pool.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			username      TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.pool.Exec(`
		CREATE TABLE IF NOT EXISTS posts (
			id         TEXT PRIMARY KEY,
			title      TEXT NOT NULL,
			body       TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			author_id  TEXT NOT NULL REFERENCES users(id)
		);
		CREATE INDEX IF NOT EXISTS idx_posts_created_at ON posts(created_at);
		CREATE INDEX IF NOT EXISTS idx_posts_author_id ON posts(author_id);
	`)
	if err != nil {
		return fmt.Errorf("creating posts table: %w", err)
	}

	return nil
}

// querier returns the handle store methods should run their SQL on: the
// request's dedicated connection when the context carries a ConnProvider
// (lazily opened on this first use), otherwise the pool. Tests and the
// initdb command hit the pool path; HTTP requests hit the provider path via
// middleware.RequestConn.
func (db *DB) querier(ctx context.Context) (querier, error) {
	if p := ProviderFromContext(ctx); p != nil {
		conn, err := p.Acquire(ctx)
		if err != nil {
			return nil, fmt.Errorf("sqlite: acquiring request connection: %w", err)
		}
		return conn, nil
	}
	return db.pool, nil
}
