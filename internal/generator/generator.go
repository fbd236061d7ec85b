// Package generator converts free-form study text into question/answer
// flashcards by calling an external completion service. It is stateless:
// nothing here touches the store.
package generator

import (
	"context"

	"github.com/achowdhury/flashgen/internal/model"
)

// Generator produces exactly count cards from the given content, or fails
// with apperror.ErrGeneration. It never returns a partial or padded list.
type Generator interface {
	Generate(ctx context.Context, content string, count int) ([]model.Card, error)
}
