// Package service contains the business logic layer: validation and
// orchestration between the deck store and the flashcard generator.
// Methods accept primitives and return domain errors, never HTTP types.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/achowdhury/flashgen/internal/apperror"
	"github.com/achowdhury/flashgen/internal/generator"
	"github.com/achowdhury/flashgen/internal/model"
	"github.com/achowdhury/flashgen/internal/repository"
)

const (
	MaxTitleLength = 100
	MinCardCount   = 1
	MaxCardCount   = 50
	// MaxContentLength bounds the study text sent to the generator.
	MaxContentLength = 50000
)

// DeckService handles business logic for users, decks and cards.
type DeckService struct {
	store  repository.DeckStore
	gen    generator.Generator
	logger *slog.Logger
}

func NewDeckService(store repository.DeckStore, gen generator.Generator, logger *slog.Logger) *DeckService {
	return &DeckService{
		store:  store,
		gen:    gen,
		logger: logger,
	}
}

// CreateUser registers a new identity with an empty deck list.
func (s *DeckService) CreateUser(ctx context.Context, userID string) (*model.User, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperror.ValidationFailed("userID", "valid userID is required")
	}

	user, err := s.store.CreateUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user created", slog.String("userID", user.UserID))
	return user, nil
}

// DeleteUser removes the user and all their decks.
func (s *DeckService) DeleteUser(ctx context.Context, userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return apperror.ValidationFailed("userID", "valid userID is required")
	}

	if err := s.store.DeleteUser(ctx, userID); err != nil {
		return err
	}

	s.logger.Info("user deleted", slog.String("userID", userID))
	return nil
}

// CreateDeck generates numCards cards from content and persists them as a
// new deck for the user. If generation fails, nothing is persisted.
func (s *DeckService) CreateDeck(ctx context.Context, userID, title, colour string, numCards int, content string) (*model.Deck, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperror.ValidationFailed("userID", "valid userID is required")
	}
	title = strings.TrimSpace(title)
	if err := validateDeckInput(title, colour, numCards, content); err != nil {
		return nil, err
	}

	cards, err := s.gen.Generate(ctx, content, numCards)
	if err != nil {
		s.logger.Error("flashcard generation failed",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	deck := &model.Deck{
		Title:  title,
		Colour: colour,
		Cards:  cards,
	}
	if err := s.store.CreateDeck(ctx, userID, deck); err != nil {
		return nil, fmt.Errorf("creating deck: %w", err)
	}

	s.logger.Info("deck created",
		slog.String("userID", userID),
		slog.String("deckID", deck.ID),
		slog.Int("num_cards", deck.NumCards),
	)
	return deck, nil
}

// GenerateDeck builds a deck without persisting it, for clients studying
// without an account. Title and colour are optional and echoed back.
func (s *DeckService) GenerateDeck(ctx context.Context, title, colour string, numCards int, content string) (*model.Deck, error) {
	title = strings.TrimSpace(title)
	if colour != "" && !model.ValidColour(colour) {
		return nil, apperror.ValidationFailed("colour",
			"colour must be one of: "+strings.Join(model.Colours, ", "))
	}
	if err := validateCountAndContent(numCards, content); err != nil {
		return nil, err
	}

	cards, err := s.gen.Generate(ctx, content, numCards)
	if err != nil {
		s.logger.Error("flashcard generation failed", slog.String("error", err.Error()))
		return nil, err
	}

	deck := &model.Deck{
		ID:        xid.New().String(),
		Title:     title,
		Colour:    colour,
		NumCards:  len(cards),
		Cards:     cards,
		CreatedAt: time.Now(),
	}

	s.logger.Info("ephemeral deck generated", slog.Int("num_cards", deck.NumCards))
	return deck, nil
}

// ListDecks returns the user's decks in creation order, oldest first.
func (s *DeckService) ListDecks(ctx context.Context, userID string) ([]model.Deck, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperror.ValidationFailed("userID", "valid userID is required")
	}

	decks, err := s.store.ListDecks(ctx, userID)
	if err != nil {
		return nil, err
	}
	return decks, nil
}

// GetDeck returns one deck by id.
func (s *DeckService) GetDeck(ctx context.Context, userID, deckID string) (*model.Deck, error) {
	if err := validateIDs(userID, deckID); err != nil {
		return nil, err
	}
	return s.store.GetDeck(ctx, userID, deckID)
}

// AddCard inserts a new card at the head of the deck, so freshly added
// material surfaces first in the editing view.
func (s *DeckService) AddCard(ctx context.Context, userID, deckID, question, answer string) (*model.Card, *model.Deck, error) {
	if err := validateIDs(userID, deckID); err != nil {
		return nil, nil, err
	}
	card, err := validateCard(question, answer)
	if err != nil {
		return nil, nil, err
	}

	deck, err := s.store.AddCard(ctx, userID, deckID, card)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("card added", slog.String("deckID", deckID), slog.Int("num_cards", deck.NumCards))
	return &card, deck, nil
}

// EditCard replaces the card at index in place.
func (s *DeckService) EditCard(ctx context.Context, userID, deckID string, index int, question, answer string) (*model.Card, *model.Deck, error) {
	if err := validateIDs(userID, deckID); err != nil {
		return nil, nil, err
	}
	if index < 0 {
		return nil, nil, apperror.ValidationFailed("cardIndex", "cardIndex must not be negative")
	}
	card, err := validateCard(question, answer)
	if err != nil {
		return nil, nil, err
	}

	deck, err := s.store.EditCard(ctx, userID, deckID, index, card)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("card updated", slog.String("deckID", deckID), slog.Int("index", index))
	return &card, deck, nil
}

// DeleteCard removes the card at index; later cards shift down by one.
func (s *DeckService) DeleteCard(ctx context.Context, userID, deckID string, index int) (*model.Deck, error) {
	if err := validateIDs(userID, deckID); err != nil {
		return nil, err
	}
	if index < 0 {
		return nil, apperror.ValidationFailed("cardIndex", "cardIndex must not be negative")
	}

	deck, err := s.store.DeleteCard(ctx, userID, deckID, index)
	if err != nil {
		return nil, err
	}

	s.logger.Info("card deleted", slog.String("deckID", deckID), slog.Int("index", index))
	return deck, nil
}

// DeleteDeck removes the deck and all its cards.
func (s *DeckService) DeleteDeck(ctx context.Context, userID, deckID string) error {
	if err := validateIDs(userID, deckID); err != nil {
		return err
	}

	if err := s.store.DeleteDeck(ctx, userID, deckID); err != nil {
		return err
	}

	s.logger.Info("deck deleted", slog.String("userID", userID), slog.String("deckID", deckID))
	return nil
}

func validateIDs(userID, deckID string) error {
	if strings.TrimSpace(userID) == "" {
		return apperror.ValidationFailed("userID", "valid userID is required")
	}
	if strings.TrimSpace(deckID) == "" {
		return apperror.ValidationFailed("deckID", "valid deckID is required")
	}
	return nil
}

func validateDeckInput(title, colour string, numCards int, content string) error {
	if title == "" {
		return apperror.ValidationFailed("title", "valid title is required")
	}
	if len(title) > MaxTitleLength {
		return apperror.ValidationFailed("title",
			fmt.Sprintf("title must be %d characters or less", MaxTitleLength))
	}
	if !model.ValidColour(colour) {
		return apperror.ValidationFailed("colour",
			"colour must be one of: "+strings.Join(model.Colours, ", "))
	}
	return validateCountAndContent(numCards, content)
}

func validateCountAndContent(numCards int, content string) error {
	if numCards < MinCardCount || numCards > MaxCardCount {
		return apperror.ValidationFailed("num_cards",
			fmt.Sprintf("num_cards must be between %d and %d", MinCardCount, MaxCardCount))
	}
	if strings.TrimSpace(content) == "" {
		return apperror.ValidationFailed("content", "valid content is required")
	}
	if len(content) > MaxContentLength {
		return apperror.ValidationFailed("content",
			fmt.Sprintf("content must be %d characters or less", MaxContentLength))
	}
	return nil
}

func validateCard(question, answer string) (model.Card, error) {
	question = strings.TrimSpace(question)
	answer = strings.TrimSpace(answer)
	if question == "" {
		return model.Card{}, apperror.ValidationFailed("question", "valid question is required")
	}
	if answer == "" {
		return model.Card{}, apperror.ValidationFailed("answer", "valid answer is required")
	}
	return model.Card{Question: question, Answer: answer}, nil
}
