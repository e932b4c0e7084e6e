package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/template"
	"time"

	"github.com/google/uuid"

	"github.com/amishk599/kpiadvisor/internal/metrics"
	"github.com/amishk599/kpiadvisor/internal/model"
)

// KPIAdvisor answers business questions about KPIs using a TextGenerator and
// keeps the exchanges in a ConversationStore.
//
// The advisor does not coordinate overlapping calls: concurrent queries on
// one advisor append to memory in unspecified order.
type KPIAdvisor struct {
	generator TextGenerator
	memory    model.ConversationStore
	tmpl      *template.Template
	recorder  metrics.Recorder
	logger    *slog.Logger
}

// NewKPIAdvisor creates an advisor. A nil recorder or logger disables
// metrics or logging respectively.
func NewKPIAdvisor(generator TextGenerator, memory model.ConversationStore, recorder metrics.Recorder, logger *slog.Logger) *KPIAdvisor {
	if recorder == nil {
		recorder = metrics.NopRecorder{}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &KPIAdvisor{
		generator: generator,
		memory:    memory,
		tmpl:      KPIAdviceTemplate,
		recorder:  recorder,
		logger:    logger,
	}
}

// ProcessQuery returns the generated advice, or ErrorPrefix followed by the
// failure message. It never returns an error.
func (a *KPIAdvisor) ProcessQuery(ctx context.Context, userInput string, bizCtx model.BusinessContext, kpis model.KPISnapshot) string {
	return a.Advise(ctx, userInput, bizCtx, kpis).String()
}

// Advise runs one query and returns the structured outcome.
func (a *KPIAdvisor) Advise(ctx context.Context, userInput string, bizCtx model.BusinessContext, kpis model.KPISnapshot) (res Result) {
	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			res.Text = ""
			res.Err = &model.GenerationError{Stage: model.StageGenerate, Err: fmt.Errorf("%v", p)}
		}
		res.Duration = time.Since(start)
		a.recorder.ObserveQuery(res.Duration, res.PromptTokens, res.Err)
		if res.Err != nil {
			a.logger.Warn("query failed", "stage", res.Stage(), "duration", res.Duration, "error", res.Err)
		} else {
			a.logger.Debug("query answered", "duration", res.Duration, "prompt_tokens", res.PromptTokens, "answer_len", len(res.Text))
		}
	}()

	prompt, err := a.RenderPrompt(userInput, bizCtx, kpis)
	if err != nil {
		res.Err = &model.GenerationError{Stage: model.StageRender, Err: err}
		return res
	}
	res.Prompt = prompt
	res.PromptTokens = CountTokens(prompt)

	history, err := a.memory.History(ctx)
	if err != nil {
		res.Err = &model.GenerationError{Stage: model.StageHistory, Err: err}
		return res
	}

	a.logger.Debug("sending prompt", "prompt_tokens", res.PromptTokens, "history", len(history))

	text, err := a.generator.Generate(ctx, prompt, history)
	if err != nil {
		res.Err = &model.GenerationError{Stage: model.StageGenerate, Err: err}
		return res
	}
	res.Text = text

	ex := model.Exchange{
		ID:        uuid.NewString(),
		Input:     userInput,
		Output:    text,
		CreatedAt: time.Now(),
	}
	if err := a.memory.Append(ctx, ex); err != nil {
		// The answer is still valid; only the memory is behind.
		a.logger.Warn("failed to record exchange", "id", ex.ID, "error", err)
	}
	return res
}

// RenderPrompt fills the advice template. The output depends only on its
// arguments: map keys are serialized in sorted order.
func (a *KPIAdvisor) RenderPrompt(userInput string, bizCtx model.BusinessContext, kpis model.KPISnapshot) (string, error) {
	var promptBuf bytes.Buffer
	if err := a.tmpl.Execute(&promptBuf, promptData{
		Preamble: RolePreamble,
		Context:  serialize(bizCtx),
		KPIs:     serialize(kpis),
		Query:    userInput,
	}); err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return promptBuf.String(), nil
}

// MemorySummary returns the raw conversation buffer kept by the store.
func (a *KPIAdvisor) MemorySummary(ctx context.Context) (string, error) {
	return a.memory.Buffer(ctx)
}

// ClearMemory forgets every exchange. Clearing an empty memory is a no-op.
func (a *KPIAdvisor) ClearMemory(ctx context.Context) error {
	return a.memory.Clear(ctx)
}

// serialize renders a map as a JSON object with sorted keys. Values JSON
// cannot represent (NaN, channels, ...) fall back to fmt's map formatting,
// which is also key-sorted.
func serialize[M ~map[string]V, V any](m M) string {
	if len(m) == 0 {
		return "{}"
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(m); err != nil {
		return fmt.Sprintf("%v", map[string]V(m))
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
