package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/achowdhury/flashgen/internal/apperror"
	"github.com/achowdhury/flashgen/internal/config"
	"github.com/achowdhury/flashgen/internal/model"
)

var _ Generator = (*OpenAIClient)(nil)

// OpenAIClient generates flashcards through the chat completions API.
// The json_schema response format constrains the model to return a
// {"flashcards": [{question, answer}]} object, so parsing is a plain
// json.Unmarshal rather than prompt-output scraping.
type OpenAIClient struct {
	cfg    config.OpenAIConfig
	http   *http.Client
	logger *slog.Logger
}

func NewOpenAIClient(cfg config.OpenAIConfig, logger *slog.Logger) *OpenAIClient {
	return &OpenAIClient{
		cfg: cfg,
		http: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type       string     `json:"type"`
	JSONSchema jsonSchema `json:"json_schema"`
}

type jsonSchema struct {
	Name   string          `json:"name"`
	Schema json.RawMessage `json:"schema"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

type deckPayload struct {
	Flashcards []model.Card `json:"flashcards"`
}

// deckSchema constrains completions to an array of question/answer objects.
var deckSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"flashcards": {
			"type": "array",
			"description": "An array of flashcards based on the provided study content",
			"items": {
				"type": "object",
				"properties": {
					"question": {
						"type": "string",
						"description": "A clear, concise question about a key concept in the content"
					},
					"answer": {
						"type": "string",
						"description": "A comprehensive yet concise answer to the question"
					}
				},
				"required": ["question", "answer"]
			}
		}
	},
	"required": ["flashcards"]
}`)

const systemPrompt = "You are an educational assistant that creates high-quality flashcards from study content."

// Generate asks the completion service for count cards built from content.
// Excess cards are truncated; fewer than count, or any card with an empty
// question or answer, fails with ErrGeneration so callers never persist a
// deck that disagrees with what was requested.
func (c *OpenAIClient) Generate(ctx context.Context, content string, count int) ([]model.Card, error) {
	reqBody := chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: fmt.Sprintf("Create %d flashcards based on this content: %s", count, content)},
		},
		ResponseFormat: &responseFormat{
			Type: "json_schema",
			JSONSchema: jsonSchema{
				Name:   "deck_schema",
				Schema: deckSchema,
			},
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("openai: encoding request: %w", err)
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/v1/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("openai: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("flashcard generation request failed", slog.String("error", err.Error()))
		return nil, apperror.GenerationFailed("failed to generate flashcards")
	}
	defer resp.Body.Close()

	// Read before status check so upstream error bodies can be logged.
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperror.GenerationFailed("failed to read generation response")
	}

	var completion chatResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		c.logger.Error("malformed completion response",
			slog.Int("status", resp.StatusCode),
			slog.String("error", err.Error()),
		)
		return nil, apperror.GenerationFailed("malformed response from generation service")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := ""
		if completion.Error != nil {
			msg = completion.Error.Message
		}
		c.logger.Error("generation service returned an error",
			slog.Int("status", resp.StatusCode),
			slog.String("upstream_error", msg),
		)
		return nil, apperror.GenerationFailed("failed to generate flashcards")
	}

	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		return nil, apperror.GenerationFailed("empty response from generation service")
	}

	var deck deckPayload
	if err := json.Unmarshal([]byte(completion.Choices[0].Message.Content), &deck); err != nil {
		c.logger.Error("completion content is not a flashcard payload", slog.String("error", err.Error()))
		return nil, apperror.GenerationFailed("malformed flashcards from generation service")
	}

	if len(deck.Flashcards) < count {
		return nil, apperror.GenerationFailed(
			fmt.Sprintf("generation service produced %d of %d requested cards", len(deck.Flashcards), count))
	}

	cards := deck.Flashcards[:count]
	for _, card := range cards {
		if strings.TrimSpace(card.Question) == "" || strings.TrimSpace(card.Answer) == "" {
			return nil, apperror.GenerationFailed("generation service produced an empty card")
		}
	}

	return cards, nil
}
