// Package model defines the data structures shared across the application.
// JSON tags follow the wire format the web client expects (num_cards,
// created_at), so these structs marshal directly into API responses.
package model

import "time"

// Card is a single question/answer pair. Cards carry no id of their own —
// a card is addressed by its position within its deck's card list.
type Card struct {
	Question string `json:"question" db:"question"`
	Answer   string `json:"answer"   db:"answer"`
}

// Deck is a named, colour-tagged collection of flashcards owned by one user.
//
// NumCards always equals len(Cards) after any mutation; the store recomputes
// it from the card list inside the same transaction as the mutation.
type Deck struct {
	ID        string    `json:"id"         db:"id"`
	Title     string    `json:"title"      db:"title"`
	Colour    string    `json:"colour"     db:"colour"`
	NumCards  int       `json:"num_cards"  db:"num_cards"`
	Cards     []Card    `json:"cards"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// User ties an external identity to its decks.
//
// UserID is the identity provider's subject (e.g. "auth0|abc123") and is
// unique across users. ID is our own record id, generated at creation; it is
// what createUser returns as insertedId.
type User struct {
	ID        string    `json:"-"          db:"id"`
	UserID    string    `json:"userID"     db:"user_id"`
	Decks     []Deck    `json:"decks"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Colours a deck may be tagged with.
var Colours = []string{"red", "green", "blue", "yellow", "purple"}

// ValidColour reports whether c is one of the supported deck colours.
func ValidColour(c string) bool {
	for _, v := range Colours {
		if c == v {
			return true
		}
	}
	return false
}
