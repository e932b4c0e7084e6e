package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"github.com/amishk599/kpiadvisor/internal/config"
	"github.com/amishk599/kpiadvisor/internal/model"
)

// ErrMissingCredential is returned when no API key is configured.
var ErrMissingCredential = errors.New("openai api key is not set (ai.api_key or OPENAI_API_KEY)")

// Ensure OpenAIGenerator implements TextGenerator.
var _ TextGenerator = (*OpenAIGenerator)(nil)

// OpenAIGenerator calls the OpenAI /v1/chat/completions endpoint. Prior
// exchanges are replayed as user/assistant turns ahead of the new prompt.
type OpenAIGenerator struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
}

// NewOpenAIGenerator creates a generator from cfg. The credential and the
// sampling temperature are fixed for the generator's lifetime.
func NewOpenAIGenerator(cfg config.AIConfig, httpClient *http.Client) (*OpenAIGenerator, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingCredential
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if httpClient != nil {
		clientCfg.HTTPClient = httpClient
	}

	return &OpenAIGenerator{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
	}, nil
}

// Generate sends the conversation and returns the first choice verbatim.
func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string, history []model.Exchange) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)*2+1)
	for _, ex := range history {
		messages = append(messages,
			openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: ex.Input},
			openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: ex.Output},
		)
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Messages:    messages,
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("llm returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
