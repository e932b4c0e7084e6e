package model

// Stages at which a query can fail.
const (
	StageRender   = "render"
	StageHistory  = "history"
	StageGenerate = "generate"
)

// GenerationError wraps any failure surfaced while producing advice.
// Error returns the wrapped message unchanged so callers relying on the
// flattened text see the collaborator's own wording.
type GenerationError struct {
	Stage string
	Err   error
}

func (e *GenerationError) Error() string {
	if e.Err == nil {
		return "generation failed at " + e.Stage
	}
	return e.Err.Error()
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}
