package ai

import (
	"context"

	"github.com/amishk599/kpiadvisor/internal/model"
)

// TextGenerator turns a rendered prompt, plus the prior exchanges of the
// conversation, into free text.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string, history []model.Exchange) (string, error)
}
