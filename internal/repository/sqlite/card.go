package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/achowdhury/flashgen/internal/apperror"
	"github.com/achowdhury/flashgen/internal/model"
)

// Card mutations. Each runs in a single transaction: existence checks,
// the positional update, and the num_cards recount all commit or roll back
// together. Position shifts go through a negate-then-flip two-step because
// (deck_id, position) is the primary key and SQLite checks uniqueness
// per-row during an UPDATE, in no particular order.

// AddCard inserts card at position 0 of the deck; every existing card
// shifts up by one. Returns the updated deck.
func (db *DB) AddCard(ctx context.Context, userID, deckID string, card model.Card) (*model.Deck, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := deckExists(ctx, tx, userID, deckID); err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE cards SET position = -(position + 1) WHERE deck_id = ?`, deckID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: shifting cards up: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO cards (deck_id, position, question, answer) VALUES (?, 0, ?, ?)`,
		deckID, card.Question, card.Answer,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: inserting card: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE cards SET position = -position WHERE deck_id = ? AND position < 0`, deckID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: restoring card positions: %w", err)
	}

	if err := recountCards(ctx, tx, deckID); err != nil {
		return nil, err
	}

	deck, err := getDeck(ctx, tx, userID, deckID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("sqlite: committing card insert: %w", err)
	}
	return deck, nil
}

// EditCard replaces the question/answer of the card at index. Position and
// num_cards are unchanged. Returns the updated deck.
func (db *DB) EditCard(ctx context.Context, userID, deckID string, index int, card model.Card) (*model.Deck, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := deckExists(ctx, tx, userID, deckID); err != nil {
		return nil, err
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE cards SET question = ?, answer = ? WHERE deck_id = ? AND position = ?`,
		card.Question, card.Answer, deckID, index,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: updating card %d: %w", index, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, apperror.NotFound("card", strconv.Itoa(index))
	}

	deck, err := getDeck(ctx, tx, userID, deckID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("sqlite: committing card update: %w", err)
	}
	return deck, nil
}

// DeleteCard removes the card at index; cards after it shift down by one
// and num_cards is recomputed from the remaining list. Returns the updated
// deck.
func (db *DB) DeleteCard(ctx context.Context, userID, deckID string, index int) (*model.Deck, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := deckExists(ctx, tx, userID, deckID); err != nil {
		return nil, err
	}

	result, err := tx.ExecContext(ctx,
		`DELETE FROM cards WHERE deck_id = ? AND position = ?`,
		deckID, index,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: deleting card %d: %w", index, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, apperror.NotFound("card", strconv.Itoa(index))
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE cards SET position = -(position - 1) WHERE deck_id = ? AND position > ?`,
		deckID, index,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: shifting cards down: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE cards SET position = -position WHERE deck_id = ? AND position < 0`, deckID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: restoring card positions: %w", err)
	}

	if err := recountCards(ctx, tx, deckID); err != nil {
		return nil, err
	}

	deck, err := getDeck(ctx, tx, userID, deckID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("sqlite: committing card delete: %w", err)
	}
	return deck, nil
}

// deckExists distinguishes a missing user from a missing deck so handlers
// report the right resource in the 404.
func deckExists(ctx context.Context, q querier, userID, deckID string) error {
	exists, err := userExists(ctx, q, userID)
	if err != nil {
		return err
	}
	if !exists {
		return apperror.NotFound("user", userID)
	}

	var one int
	err = q.QueryRowContext(ctx,
		`SELECT 1 FROM decks WHERE id = ? AND user_id = ?`, deckID, userID,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return apperror.NotFound("deck", deckID)
	}
	if err != nil {
		return fmt.Errorf("sqlite: looking up deck %s: %w", deckID, err)
	}
	return nil
}

// recountCards sets num_cards from the card table, inside the mutation's
// transaction. Counting the resulting list, rather than incrementing or
// decrementing, is what makes the invariant self-repairing.
func recountCards(ctx context.Context, q querier, deckID string) error {
	_, err := q.ExecContext(ctx,
		`UPDATE decks
		 SET num_cards = (SELECT COUNT(*) FROM cards WHERE deck_id = ?)
		 WHERE id = ?`,
		deckID, deckID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: recounting cards for deck %s: %w", deckID, err)
	}
	return nil
}
