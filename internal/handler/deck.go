package handler

import (
	"net/http"
)

type createDeckRequest struct {
	UserID   string `json:"userID" validate:"required"`
	Title    string `json:"title" validate:"required"`
	Colour   string `json:"colour" validate:"required"`
	NumCards int    `json:"num_cards" validate:"required"`
	Content  string `json:"content" validate:"required"`
}

type generateDeckRequest struct {
	Title    string `json:"title"`
	Colour   string `json:"colour"`
	NumCards int    `json:"num_cards" validate:"required"`
	Content  string `json:"content" validate:"required"`
}

// HandleCreateDeck generates cards from the submitted content and stores
// them as a new deck for the user.
//
// POST /api/createDeck {userID, title, colour, num_cards, content}
// → 201 {message, deck}
func (h *DeckHandler) HandleCreateDeck(w http.ResponseWriter, r *http.Request) {
	var req createDeckRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	deck, err := h.service.CreateDeck(r.Context(), req.UserID, req.Title, req.Colour, req.NumCards, req.Content)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Deck created successfully",
		"deck":    deck,
	})
}

// HandleGenerateDeck generates a deck without persisting it, for guests
// studying without an account.
//
// POST /api/generateDeck {num_cards, content[, title, colour]}
// → 200 {message, deck}
func (h *DeckHandler) HandleGenerateDeck(w http.ResponseWriter, r *http.Request) {
	var req generateDeckRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	deck, err := h.service.GenerateDeck(r.Context(), req.Title, req.Colour, req.NumCards, req.Content)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Deck generated successfully",
		"deck":    deck,
	})
}

// HandleGetUserDecks returns all of a user's decks, oldest first.
//
// GET /api/getUserDecks/{userID} → 200 {message, decks}
func (h *DeckHandler) HandleGetUserDecks(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")

	decks, err := h.service.ListDecks(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Decks retrieved successfully",
		"decks":   decks,
	})
}

// HandleGetDeck returns one deck by id.
//
// GET /api/getDeck/{userID}/{deckID} → 200 {message, deck}
func (h *DeckHandler) HandleGetDeck(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	deckID := r.PathValue("deckID")

	deck, err := h.service.GetDeck(r.Context(), userID, deckID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Deck retrieved successfully",
		"deck":    deck,
	})
}

// HandleDeleteDeck removes a deck and all its cards.
//
// DELETE /api/deck/{userID}/{deckID} → 200 {message}
func (h *DeckHandler) HandleDeleteDeck(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	deckID := r.PathValue("deckID")

	if err := h.service.DeleteDeck(r.Context(), userID, deckID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Deck deleted successfully",
	})
}
