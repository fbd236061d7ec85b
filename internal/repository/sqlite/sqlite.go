// Package sqlite implements repository.DeckStore on an embedded SQLite
// database (modernc.org/sqlite, no CGo).
//
// The upstream data model is one document per user with embedded deck and
// card arrays. Here that becomes three tables with cascading foreign keys;
// the embedded card array maps to a position column, so cards keep their
// positional identity. Every card mutation runs in a single transaction
// that finishes by recomputing num_cards from the card table, which is what
// keeps num_cards equal to the card count no matter how the operation
// interleaves with others.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps a sql.DB connection pool and implements repository.DeckStore.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the database at dbPath and runs migrations.
// Use ":memory:" for tests.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets reads proceed while a card mutation transaction is writing.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Cascading deletes (user → decks → cards) depend on this.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool. The server calls this on shutdown.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL UNIQUE,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS decks (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
			title      TEXT NOT NULL,
			colour     TEXT NOT NULL,
			num_cards  INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_decks_user_id ON decks(user_id);

		CREATE TABLE IF NOT EXISTS cards (
			deck_id  TEXT NOT NULL REFERENCES decks(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			question TEXT NOT NULL,
			answer   TEXT NOT NULL,
			PRIMARY KEY (deck_id, position)
		);
	`)
	if err != nil {
		return fmt.Errorf("creating tables: %w", err)
	}
	return nil
}

// querier is satisfied by both *sql.DB and *sql.Tx, so lookup helpers work
// inside and outside transactions.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}
