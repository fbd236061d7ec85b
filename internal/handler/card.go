package handler

import (
	"net/http"
	"strconv"

	"github.com/achowdhury/flashgen/internal/apperror"
)

type cardRequest struct {
	Question string `json:"question" validate:"required"`
	Answer   string `json:"answer" validate:"required"`
}

// cardIndex parses the cardIndex path segment. Cards have no id of their
// own; the index into the deck's card list is the only handle a client has.
func cardIndex(r *http.Request) (int, error) {
	raw := r.PathValue("cardIndex")
	index, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperror.ValidationFailed("cardIndex", "valid cardIndex is required")
	}
	return index, nil
}

// HandleAddCard inserts a new card at the top of the deck.
//
// POST /api/card/{userID}/{deckID} {question, answer}
// → 201 {message, card, deck}
func (h *DeckHandler) HandleAddCard(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	deckID := r.PathValue("deckID")

	var req cardRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	card, deck, err := h.service.AddCard(r.Context(), userID, deckID, req.Question, req.Answer)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Card added successfully",
		"card":    card,
		"deck":    deck,
	})
}

// HandleEditCard replaces the question/answer of the card at cardIndex.
//
// PUT /api/card/{userID}/{deckID}/{cardIndex} {question, answer}
// → 200 {message, card, deck}
func (h *DeckHandler) HandleEditCard(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	deckID := r.PathValue("deckID")

	index, err := cardIndex(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req cardRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	card, deck, err := h.service.EditCard(r.Context(), userID, deckID, index, req.Question, req.Answer)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Card updated successfully",
		"card":    card,
		"deck":    deck,
	})
}

// HandleDeleteCard removes the card at cardIndex; later cards shift down.
//
// DELETE /api/card/{userID}/{deckID}/{cardIndex} → 200 {message, deck}
func (h *DeckHandler) HandleDeleteCard(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("userID")
	deckID := r.PathValue("deckID")

	index, err := cardIndex(r)
	if err != nil {
		writeError(w, err)
		return
	}

	deck, err := h.service.DeleteCard(r.Context(), userID, deckID, index)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Card deleted successfully",
		"deck":    deck,
	})
}
