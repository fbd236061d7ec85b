package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/achowdhury/flashgen/internal/apperror"
	"github.com/achowdhury/flashgen/internal/model"
)

// mockDeckStore implements repository.DeckStore in memory, honouring the
// same invariants as the sqlite store.
type mockDeckStore struct {
	users  map[string]*model.User
	nextID int
}

func newMockStore() *mockDeckStore {
	return &mockDeckStore{users: make(map[string]*model.User)}
}

func (m *mockDeckStore) CreateUser(_ context.Context, userID string) (*model.User, error) {
	if _, ok := m.users[userID]; ok {
		return nil, apperror.Conflict("user", userID)
	}
	m.nextID++
	user := &model.User{
		ID:        fmt.Sprintf("mock-%d", m.nextID),
		UserID:    userID,
		Decks:     []model.Deck{},
		CreatedAt: time.Now(),
	}
	m.users[userID] = user
	result := *user
	return &result, nil
}

func (m *mockDeckStore) DeleteUser(_ context.Context, userID string) error {
	if _, ok := m.users[userID]; !ok {
		return apperror.NotFound("user", userID)
	}
	delete(m.users, userID)
	return nil
}

func (m *mockDeckStore) CreateDeck(_ context.Context, userID string, deck *model.Deck) error {
	user, ok := m.users[userID]
	if !ok {
		return apperror.NotFound("user", userID)
	}
	m.nextID++
	deck.ID = fmt.Sprintf("mock-%d", m.nextID)
	deck.CreatedAt = time.Now()
	deck.NumCards = len(deck.Cards)
	user.Decks = append(user.Decks, *deck)
	return nil
}

func (m *mockDeckStore) ListDecks(_ context.Context, userID string) ([]model.Deck, error) {
	user, ok := m.users[userID]
	if !ok {
		return nil, apperror.NotFound("user", userID)
	}
	return append([]model.Deck{}, user.Decks...), nil
}

func (m *mockDeckStore) GetDeck(_ context.Context, userID, deckID string) (*model.Deck, error) {
	deck, err := m.deck(userID, deckID)
	if err != nil {
		return nil, err
	}
	result := *deck
	return &result, nil
}

func (m *mockDeckStore) AddCard(_ context.Context, userID, deckID string, card model.Card) (*model.Deck, error) {
	deck, err := m.deck(userID, deckID)
	if err != nil {
		return nil, err
	}
	deck.Cards = append([]model.Card{card}, deck.Cards...)
	deck.NumCards = len(deck.Cards)
	result := *deck
	return &result, nil
}

func (m *mockDeckStore) EditCard(_ context.Context, userID, deckID string, index int, card model.Card) (*model.Deck, error) {
	deck, err := m.deck(userID, deckID)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(deck.Cards) {
		return nil, apperror.NotFound("card", strconv.Itoa(index))
	}
	deck.Cards[index] = card
	result := *deck
	return &result, nil
}

func (m *mockDeckStore) DeleteCard(_ context.Context, userID, deckID string, index int) (*model.Deck, error) {
	deck, err := m.deck(userID, deckID)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(deck.Cards) {
		return nil, apperror.NotFound("card", strconv.Itoa(index))
	}
	deck.Cards = append(deck.Cards[:index], deck.Cards[index+1:]...)
	deck.NumCards = len(deck.Cards)
	result := *deck
	return &result, nil
}

func (m *mockDeckStore) DeleteDeck(_ context.Context, userID, deckID string) error {
	user, ok := m.users[userID]
	if !ok {
		return apperror.NotFound("user", userID)
	}
	for i := range user.Decks {
		if user.Decks[i].ID == deckID {
			user.Decks = append(user.Decks[:i], user.Decks[i+1:]...)
			return nil
		}
	}
	return apperror.NotFound("deck", deckID)
}

func (m *mockDeckStore) deck(userID, deckID string) (*model.Deck, error) {
	user, ok := m.users[userID]
	if !ok {
		return nil, apperror.NotFound("user", userID)
	}
	for i := range user.Decks {
		if user.Decks[i].ID == deckID {
			return &user.Decks[i], nil
		}
	}
	return nil, apperror.NotFound("deck", deckID)
}

// mockGenerator returns count synthetic cards, or a canned error.
type mockGenerator struct {
	err   error
	calls int
}

func (g *mockGenerator) Generate(_ context.Context, content string, count int) ([]model.Card, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	cards := make([]model.Card, count)
	for i := range cards {
		cards[i] = model.Card{
			Question: fmt.Sprintf("Q%d", i),
			Answer:   fmt.Sprintf("A%d", i),
		}
	}
	return cards, nil
}

func newTestService(t *testing.T) (*DeckService, *mockDeckStore, *mockGenerator) {
	t.Helper()
	store := newMockStore()
	gen := &mockGenerator{}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewDeckService(store, gen, logger), store, gen
}

// longContent is study text comfortably over the 300-character mark.
var longContent = strings.Repeat("The Krebs cycle oxidises acetyl-CoA to carbon dioxide. ", 8)

func TestCreateUser_Success(t *testing.T) {
	svc, _, _ := newTestService(t)

	user, err := svc.CreateUser(context.Background(), "u1")
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	if user.UserID != "u1" {
		t.Errorf("UserID = %q, want %q", user.UserID, "u1")
	}
	if user.ID == "" {
		t.Error("expected user to have a record ID")
	}
}

func TestCreateUser_EmptyID(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.CreateUser(context.Background(), "   ")
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("error = %v, want ErrValidation", err)
	}
}

func TestCreateUser_Duplicate(t *testing.T) {
	svc, _, _ := newTestService(t)

	if _, err := svc.CreateUser(context.Background(), "u1"); err != nil {
		t.Fatalf("setup: CreateUser() error = %v", err)
	}
	_, err := svc.CreateUser(context.Background(), "u1")
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("error = %v, want ErrConflict", err)
	}
}

func TestCreateDeck_RoundTrip(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	svc.CreateUser(ctx, "u1")

	deck, err := svc.CreateDeck(ctx, "u1", "Bio", "green", 3, longContent)
	if err != nil {
		t.Fatalf("CreateDeck() error = %v", err)
	}

	if deck.Colour != "green" {
		t.Errorf("Colour = %q, want green", deck.Colour)
	}
	if deck.NumCards != 3 || len(deck.Cards) != 3 {
		t.Errorf("NumCards = %d, len(Cards) = %d; want 3, 3", deck.NumCards, len(deck.Cards))
	}
	for i, c := range deck.Cards {
		if c.Question == "" || c.Answer == "" {
			t.Errorf("card %d has empty question or answer", i)
		}
	}

	decks, err := svc.ListDecks(ctx, "u1")
	if err != nil {
		t.Fatalf("ListDecks() error = %v", err)
	}
	if len(decks) != 1 || decks[0].ID != deck.ID {
		t.Errorf("ListDecks() = %d decks, want the one just created", len(decks))
	}
}

func TestCreateDeck_GenerationFails_NothingPersisted(t *testing.T) {
	svc, _, gen := newTestService(t)
	ctx := context.Background()
	svc.CreateUser(ctx, "u1")
	gen.err = apperror.GenerationFailed("upstream down")

	_, err := svc.CreateDeck(ctx, "u1", "Bio", "green", 3, longContent)
	if !errors.Is(err, apperror.ErrGeneration) {
		t.Fatalf("error = %v, want ErrGeneration", err)
	}

	decks, err := svc.ListDecks(ctx, "u1")
	if err != nil {
		t.Fatalf("ListDecks() error = %v", err)
	}
	if len(decks) != 0 {
		t.Errorf("deck list has %d decks after failed generation, want 0", len(decks))
	}
}

func TestCreateDeck_UserNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.CreateDeck(context.Background(), "nobody", "Bio", "green", 3, longContent)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestCreateDeck_Validation(t *testing.T) {
	svc, _, gen := newTestService(t)
	ctx := context.Background()
	svc.CreateUser(ctx, "u1")

	tests := []struct {
		name     string
		title    string
		colour   string
		numCards int
		content  string
	}{
		{"empty title", "", "green", 3, longContent},
		{"bad colour", "Bio", "magenta", 3, longContent},
		{"zero cards", "Bio", "green", 0, longContent},
		{"negative cards", "Bio", "green", -1, longContent},
		{"too many cards", "Bio", "green", 51, longContent},
		{"empty content", "Bio", "green", 3, "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateDeck(ctx, "u1", tt.title, tt.colour, tt.numCards, tt.content)
			if !errors.Is(err, apperror.ErrValidation) {
				t.Errorf("error = %v, want ErrValidation", err)
			}
		})
	}

	// Validation failures never reach the generator.
	if gen.calls != 0 {
		t.Errorf("generator called %d times on invalid input, want 0", gen.calls)
	}
}

func TestGenerateDeck_Ephemeral(t *testing.T) {
	svc, store, _ := newTestService(t)

	deck, err := svc.GenerateDeck(context.Background(), "Guest deck", "purple", 5, longContent)
	if err != nil {
		t.Fatalf("GenerateDeck() error = %v", err)
	}

	if deck.ID == "" {
		t.Error("ephemeral deck should still get a fresh id")
	}
	if deck.NumCards != 5 || len(deck.Cards) != 5 {
		t.Errorf("NumCards = %d, len(Cards) = %d; want 5, 5", deck.NumCards, len(deck.Cards))
	}
	if len(store.users) != 0 {
		t.Error("GenerateDeck() must not touch the store")
	}
}

func TestGenerateDeck_NoUserNeeded(t *testing.T) {
	svc, _, _ := newTestService(t)

	// Title and colour are optional for the guest flow.
	deck, err := svc.GenerateDeck(context.Background(), "", "", 3, longContent)
	if err != nil {
		t.Fatalf("GenerateDeck() error = %v", err)
	}
	if deck.NumCards != 3 {
		t.Errorf("NumCards = %d, want 3", deck.NumCards)
	}
}

func TestEditCard_MiddleOfDeck(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	svc.CreateUser(ctx, "u1")
	deck, _ := svc.CreateDeck(ctx, "u1", "Bio", "green", 3, longContent)

	card, updated, err := svc.EditCard(ctx, "u1", deck.ID, 1, "editedQ", "editedA")
	if err != nil {
		t.Fatalf("EditCard() error = %v", err)
	}
	if card.Question != "editedQ" || card.Answer != "editedA" {
		t.Errorf("card = %+v, want editedQ/editedA", card)
	}

	// Only index 1 changed.
	fetched, err := svc.GetDeck(ctx, "u1", deck.ID)
	if err != nil {
		t.Fatalf("GetDeck() error = %v", err)
	}
	if fetched.Cards[0] != deck.Cards[0] {
		t.Errorf("cards[0] changed: %+v", fetched.Cards[0])
	}
	if fetched.Cards[2] != deck.Cards[2] {
		t.Errorf("cards[2] changed: %+v", fetched.Cards[2])
	}
	if updated.NumCards != 3 {
		t.Errorf("NumCards = %d, want 3", updated.NumCards)
	}
}

func TestEditCard_IndexOutOfRange(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	svc.CreateUser(ctx, "u1")
	deck, _ := svc.CreateDeck(ctx, "u1", "Bio", "green", 3, longContent)

	_, _, err := svc.EditCard(ctx, "u1", deck.ID, 5, "Q", "A")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestEditCard_NegativeIndex(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	svc.CreateUser(ctx, "u1")
	deck, _ := svc.CreateDeck(ctx, "u1", "Bio", "green", 3, longContent)

	_, _, err := svc.EditCard(ctx, "u1", deck.ID, -1, "Q", "A")
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("error = %v, want ErrValidation", err)
	}
}

func TestAddCard_SurfacesFirst(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	svc.CreateUser(ctx, "u1")
	deck, _ := svc.CreateDeck(ctx, "u1", "Bio", "green", 2, longContent)
	previousHead := deck.Cards[0]

	card, updated, err := svc.AddCard(ctx, "u1", deck.ID, "freshQ", "freshA")
	if err != nil {
		t.Fatalf("AddCard() error = %v", err)
	}

	if updated.Cards[0] != *card {
		t.Errorf("cards[0] = %+v, want the new card", updated.Cards[0])
	}
	if updated.Cards[1] != previousHead {
		t.Errorf("cards[1] = %+v, want previous head", updated.Cards[1])
	}
	if updated.NumCards != 3 {
		t.Errorf("NumCards = %d, want 3", updated.NumCards)
	}
}

func TestAddCard_EmptyQuestion(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	svc.CreateUser(ctx, "u1")
	deck, _ := svc.CreateDeck(ctx, "u1", "Bio", "green", 2, longContent)

	_, _, err := svc.AddCard(ctx, "u1", deck.ID, "  ", "A")
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("error = %v, want ErrValidation", err)
	}
}

func TestDeleteCard_SingleCardDeck(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	svc.CreateUser(ctx, "u1")
	deck, _ := svc.CreateDeck(ctx, "u1", "solo", "red", 1, longContent)

	updated, err := svc.DeleteCard(ctx, "u1", deck.ID, 0)
	if err != nil {
		t.Fatalf("DeleteCard() error = %v", err)
	}
	if updated.NumCards != 0 || len(updated.Cards) != 0 {
		t.Errorf("NumCards = %d, len = %d; want 0, 0", updated.NumCards, len(updated.Cards))
	}
}

func TestDeleteDeck(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	svc.CreateUser(ctx, "u1")
	deck, _ := svc.CreateDeck(ctx, "u1", "Bio", "green", 2, longContent)

	if err := svc.DeleteDeck(ctx, "u1", deck.ID); err != nil {
		t.Fatalf("DeleteDeck() error = %v", err)
	}

	_, err := svc.GetDeck(ctx, "u1", deck.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetDeck() after delete: error = %v, want ErrNotFound", err)
	}
}

func TestDeleteUser_Cascades(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	svc.CreateUser(ctx, "u1")
	svc.CreateDeck(ctx, "u1", "Bio", "green", 2, longContent)

	if err := svc.DeleteUser(ctx, "u1"); err != nil {
		t.Fatalf("DeleteUser() error = %v", err)
	}

	_, err := svc.ListDecks(ctx, "u1")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("ListDecks() after delete: error = %v, want ErrNotFound", err)
	}
}
