package engine

import (
	"context"

	"github.com/Veraticus/spice-categorizer/internal/model"
)

// Oracle suggests a category for free text. Implementations must honor ctx
// cancellation; the engine bounds every call with the policy oracle timeout.
type Oracle interface {
	SuggestCategory(ctx context.Context, text string) (model.Suggestion, error)
}
