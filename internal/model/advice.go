package model

import (
	"context"
	"time"
)

// BusinessContext describes the company asking for advice (industry, size,
// main product, ...). No keys are required.
type BusinessContext map[string]string

// KPISnapshot maps a KPI name to its current value. Values are usually
// strings ("15%") or numbers and are passed through untouched.
type KPISnapshot map[string]any

// Exchange is one remembered query/answer pair.
type Exchange struct {
	ID        string    `json:"id"`
	Input     string    `json:"input"`  // raw user query
	Output    string    `json:"output"` // generated advice
	CreatedAt time.Time `json:"created_at"`
}

// ConversationStore keeps the ordered, append-only log of exchanges that
// gives the generator conversational context.
type ConversationStore interface {
	History(ctx context.Context) ([]Exchange, error)
	Append(ctx context.Context, ex Exchange) error
	// Buffer returns the accumulated conversation as plain text.
	Buffer(ctx context.Context) (string, error)
	Clear(ctx context.Context) error
}
