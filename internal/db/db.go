// Package db opens the SQLite database and creates the schema.
package db

import (
	"fmt"

	_ "github.com/glebarez/go-sqlite"
	"github.com/jmoiron/sqlx"
)

// Connect opens the SQLite database at path and verifies the connection.
// SQLite allows a single writer, so the pool is capped at one connection;
// this also keeps ":memory:" databases on a single connection in tests.
func Connect(path string) (*sqlx.DB, error) {
	pool, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database at %s: %w", path, err)
	}
	pool.SetMaxOpenConns(1)

	if err := pool.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return pool, nil
}

// InitSchema idempotently creates the users and movements tables. There is
// no migration system; the schema is applied at every startup.
func InitSchema(pool *sqlx.DB) error {
	userSchema := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`

	if _, err := pool.Exec(userSchema); err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}

	movementSchema := `
	CREATE TABLE IF NOT EXISTS movements (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		amount REAL NOT NULL CHECK (amount > 0),
		type TEXT NOT NULL CHECK (type IN ('income', 'expense')),
		description TEXT,
		date DATETIME NOT NULL,
		user_id INTEGER NOT NULL REFERENCES users(id)
	);`

	if _, err := pool.Exec(movementSchema); err != nil {
		return fmt.Errorf("failed to create movements table: %w", err)
	}

	indexSchema := `CREATE INDEX IF NOT EXISTS idx_movements_user_date ON movements(user_id, date);`
	if _, err := pool.Exec(indexSchema); err != nil {
		return fmt.Errorf("failed to create movements index: %w", err)
	}

	return nil
}
