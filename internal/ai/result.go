package ai

import (
	"errors"
	"time"

	"github.com/amishk599/kpiadvisor/internal/model"
)

// ErrorPrefix starts the flattened text of every failed query.
const ErrorPrefix = "Error procesando la consulta: "

// Result is the outcome of one advisor query: either generated Text or a
// *model.GenerationError in Err, never both.
type Result struct {
	Text         string
	Err          error
	Prompt       string        // rendered prompt, empty if rendering failed
	PromptTokens int           // tokens in Prompt, 0 if unknown
	Duration     time.Duration // wall time of the whole query
}

// OK reports whether the query produced advice.
func (r Result) OK() bool {
	return r.Err == nil
}

// Stage returns the stage a failed query stopped at, or "" on success.
func (r Result) Stage() string {
	var genErr *model.GenerationError
	if errors.As(r.Err, &genErr) {
		return genErr.Stage
	}
	return ""
}

// String renders the result as plain text: the advice itself, or
// ErrorPrefix followed by the failure message.
func (r Result) String() string {
	if r.Err != nil {
		return ErrorPrefix + r.Err.Error()
	}
	return r.Text
}
