// Package repository declares the persistence interfaces the service layer
// depends on. The sqlite subpackage implements them.
package repository

import (
	"context"

	"github.com/achowdhury/flashgen/internal/model"
)

// DeckStore owns all reads and writes for users, decks and cards.
//
// Invariants the implementation must hold:
//   - a deck's num_cards equals the length of its card list after every
//     mutation, recomputed from the stored list rather than adjusted blindly
//   - card positions within a deck are contiguous from 0
//   - each mutation is atomic; a failed operation leaves no partial state
type DeckStore interface {
	// CreateUser creates a user with an empty deck list. Fails with
	// apperror.ErrConflict if the identity is already registered.
	CreateUser(ctx context.Context, userID string) (*model.User, error)

	// DeleteUser removes the user and every deck they own.
	DeleteUser(ctx context.Context, userID string) error

	// CreateDeck persists deck (including its cards) for the user, assigning
	// deck.ID and deck.CreatedAt.
	CreateDeck(ctx context.Context, userID string, deck *model.Deck) error

	// ListDecks returns the user's decks in creation order, oldest first.
	ListDecks(ctx context.Context, userID string) ([]model.Deck, error)

	// GetDeck returns one deck, matched by id, with its cards.
	GetDeck(ctx context.Context, userID, deckID string) (*model.Deck, error)

	// AddCard inserts card at position 0; existing cards shift up by one.
	// Returns the updated deck.
	AddCard(ctx context.Context, userID, deckID string, card model.Card) (*model.Deck, error)

	// EditCard replaces the question/answer of the card at index in place.
	// Returns the updated deck.
	EditCard(ctx context.Context, userID, deckID string, index int, card model.Card) (*model.Deck, error)

	// DeleteCard removes the card at index; later cards shift down by one.
	// Returns the updated deck.
	DeleteCard(ctx context.Context, userID, deckID string, index int) (*model.Deck, error)

	// DeleteDeck removes the deck and its cards.
	DeleteDeck(ctx context.Context, userID, deckID string) error
}
