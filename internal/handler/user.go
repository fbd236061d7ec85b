// Package handler translates HTTP requests into DeckService calls and
// domain errors into status codes. No business logic lives here.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/achowdhury/flashgen/internal/service"
)

// DeckHandler serves the user, deck and card endpoints.
type DeckHandler struct {
	service *service.DeckService
	logger  *slog.Logger
}

func NewDeckHandler(svc *service.DeckService, logger *slog.Logger) *DeckHandler {
	return &DeckHandler{service: svc, logger: logger}
}

type userRequest struct {
	UserID string `json:"userID" validate:"required"`
}

// HandleCreateUser registers a new identity.
//
// POST /api/createUser {"userID": "..."} → 201 {message, user, insertedId}
func (h *DeckHandler) HandleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.service.CreateUser(r.Context(), req.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message":    "User created successfully",
		"user":       user,
		"insertedId": user.ID,
	})
}

// HandleDeleteUser removes an account and all its decks.
//
// DELETE /api/deleteUser {"userID": "..."} → 200 {message}
func (h *DeckHandler) HandleDeleteUser(w http.ResponseWriter, r *http.Request) {
	var req userRequest
	if err := decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.DeleteUser(r.Context(), req.UserID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "User deleted successfully",
	})
}
