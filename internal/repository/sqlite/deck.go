package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/achowdhury/flashgen/internal/apperror"
	"github.com/achowdhury/flashgen/internal/model"
	"github.com/achowdhury/flashgen/internal/repository"
)

// compile-time check that *DB implements repository.DeckStore
var _ repository.DeckStore = (*DB)(nil)

// CreateDeck persists deck and its cards for the user in one transaction.
// Assigns deck.ID and deck.CreatedAt; num_cards is stored as the length of
// the card list, whatever the caller put in the field.
func (db *DB) CreateDeck(ctx context.Context, userID string, deck *model.Deck) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}
	defer tx.Rollback()

	exists, err := userExists(ctx, tx, userID)
	if err != nil {
		return err
	}
	if !exists {
		return apperror.NotFound("user", userID)
	}

	deck.ID = xid.New().String()
	deck.CreatedAt = time.Now()
	deck.NumCards = len(deck.Cards)

	_, err = tx.ExecContext(ctx,
		`INSERT INTO decks (id, user_id, title, colour, num_cards, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		deck.ID, userID, deck.Title, deck.Colour, deck.NumCards, deck.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting deck: %w", err)
	}

	for i, card := range deck.Cards {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO cards (deck_id, position, question, answer) VALUES (?, ?, ?, ?)`,
			deck.ID, i, card.Question, card.Answer,
		)
		if err != nil {
			return fmt.Errorf("sqlite: inserting card %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing deck insert: %w", err)
	}
	return nil
}

// ListDecks returns the user's decks with their cards, oldest deck first.
func (db *DB) ListDecks(ctx context.Context, userID string) ([]model.Deck, error) {
	exists, err := userExists(ctx, db.conn, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperror.NotFound("user", userID)
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, title, colour, num_cards, created_at
		 FROM decks
		 WHERE user_id = ?
		 ORDER BY created_at, id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing decks for %s: %w", userID, err)
	}
	defer rows.Close()

	decks := []model.Deck{}
	for rows.Next() {
		var d model.Deck
		if err := rows.Scan(&d.ID, &d.Title, &d.Colour, &d.NumCards, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning deck row: %w", err)
		}
		decks = append(decks, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating decks: %w", err)
	}

	for i := range decks {
		cards, err := loadCards(ctx, db.conn, decks[i].ID)
		if err != nil {
			return nil, err
		}
		decks[i].Cards = cards
	}

	return decks, nil
}

// GetDeck returns one deck with its cards, matched by deck id within the
// user's list. A deck id that exists under a different user is NotFound.
func (db *DB) GetDeck(ctx context.Context, userID, deckID string) (*model.Deck, error) {
	exists, err := userExists(ctx, db.conn, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperror.NotFound("user", userID)
	}

	return getDeck(ctx, db.conn, userID, deckID)
}

// DeleteDeck removes the deck; its cards cascade.
func (db *DB) DeleteDeck(ctx context.Context, userID, deckID string) error {
	exists, err := userExists(ctx, db.conn, userID)
	if err != nil {
		return err
	}
	if !exists {
		return apperror.NotFound("user", userID)
	}

	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM decks WHERE id = ? AND user_id = ?`,
		deckID, userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting deck %s: %w", deckID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("deck", deckID)
	}

	return nil
}

// getDeck loads a deck row and its cards. Works inside a transaction so
// card mutations can return the post-mutation deck from the same snapshot.
func getDeck(ctx context.Context, q querier, userID, deckID string) (*model.Deck, error) {
	var d model.Deck
	err := q.QueryRowContext(ctx,
		`SELECT id, title, colour, num_cards, created_at
		 FROM decks
		 WHERE id = ? AND user_id = ?`,
		deckID, userID,
	).Scan(&d.ID, &d.Title, &d.Colour, &d.NumCards, &d.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("deck", deckID)
		}
		return nil, fmt.Errorf("sqlite: getting deck %s: %w", deckID, err)
	}

	cards, err := loadCards(ctx, q, deckID)
	if err != nil {
		return nil, err
	}
	d.Cards = cards

	return &d, nil
}

func loadCards(ctx context.Context, q querier, deckID string) ([]model.Card, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT question, answer FROM cards WHERE deck_id = ? ORDER BY position`,
		deckID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: loading cards for deck %s: %w", deckID, err)
	}
	defer rows.Close()

	cards := []model.Card{}
	for rows.Next() {
		var c model.Card
		if err := rows.Scan(&c.Question, &c.Answer); err != nil {
			return nil, fmt.Errorf("sqlite: scanning card row: %w", err)
		}
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating cards: %w", err)
	}

	return cards, nil
}
