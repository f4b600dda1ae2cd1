package ai

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/jhoicas/demo-data-assistant/internal/domain"
)

// OpenAICompleter usa la API de chat de OpenAI (o un proveedor compatible vía baseURL).
type OpenAICompleter struct {
	api   *openai.Client
	model string
}

// NewOpenAICompleter construye el adaptador. baseURL vacío usa el endpoint oficial.
func NewOpenAICompleter(apiKey, model, baseURL string) *OpenAICompleter {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAICompleter{api: openai.NewClientWithConfig(cfg), model: model}
}

// Complete pide una respuesta en modo JSON.
func (o *OpenAICompleter) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := o.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
		Temperature:    0.9,
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("AI: timeout o cancelación: %w", ctx.Err())
		}
		return "", fmt.Errorf("%w: %v", domain.ErrGeneratorUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("AI: OpenAI devolvió respuesta vacía")
	}
	return resp.Choices[0].Message.Content, nil
}
