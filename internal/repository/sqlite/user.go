package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/achowdhury/flashgen/internal/apperror"
	"github.com/achowdhury/flashgen/internal/model"
)

// CreateUser registers an external identity. The identity provider's
// subject (userID) is the natural key; the generated xid is our record id,
// returned to the client as insertedId.
func (db *DB) CreateUser(ctx context.Context, userID string) (*model.User, error) {
	var existing string
	err := db.conn.QueryRowContext(ctx,
		`SELECT id FROM users WHERE user_id = ?`, userID,
	).Scan(&existing)
	if err == nil {
		return nil, apperror.Conflict("user", userID)
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("sqlite: looking up user %s: %w", userID, err)
	}

	user := &model.User{
		ID:        xid.New().String(),
		UserID:    userID,
		Decks:     []model.Deck{},
		CreatedAt: time.Now(),
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO users (id, user_id, created_at) VALUES (?, ?, ?)`,
		user.ID, user.UserID, user.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: inserting user %s: %w", userID, err)
	}

	return user, nil
}

// DeleteUser removes the user row; decks and cards go with it via the
// cascading foreign keys, so the whole account disappears in one statement.
func (db *DB) DeleteUser(ctx context.Context, userID string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM users WHERE user_id = ?`, userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting user %s: %w", userID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("user", userID)
	}

	return nil
}

// userExists reports whether the identity is registered. Runs against the
// DB or a transaction, so mutations can gate on it atomically.
func userExists(ctx context.Context, q querier, userID string) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx,
		`SELECT 1 FROM users WHERE user_id = ?`, userID,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("sqlite: looking up user %s: %w", userID, err)
	}
	return true, nil
}
