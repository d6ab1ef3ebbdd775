// Command initdb creates the database schema and exits.
//
// The server applies the schema on startup too, so this command exists for
// deployments that want the database file provisioned (and its directory
// created, permissions checked) before the service ever starts:
//
//	DB_PATH=/var/lib/miniblog/miniblog.db go run ./cmd/initdb
//
// Safe to run repeatedly — the schema uses CREATE TABLE IF NOT EXISTS.
//
// Only DB_PATH is read here, directly rather than through config.Load:
// the full config requires a session secret, which a schema-provisioning
// step has no business needing.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/sakif/miniblog/internal/repository/sqlite"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "data/miniblog.db"
	}

	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		logger.Error("failed to create database directory",
			slog.String("dir", dbDir),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	// New runs the schema migration as part of opening the database.
	db, err := sqlite.New(dbPath)
	if err != nil {
		logger.Error("failed to initialize database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	fmt.Printf("Initialized the database at %s\n", dbPath)
}
