package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jhoicas/demo-data-assistant/internal/domain"
)

const (
	anthropicMessagesURL = "https://api.anthropic.com/v1/messages"
	anthropicVersion     = "2023-06-01"
)

// AnthropicCompleter usa la Messages API de Anthropic sobre net/http.
type AnthropicCompleter struct {
	apiKey     string
	model      string
	url        string
	httpClient *http.Client
}

// NewAnthropicCompleter construye el adaptador.
func NewAnthropicCompleter(apiKey, model string) *AnthropicCompleter {
	return &AnthropicCompleter{
		apiKey:     apiKey,
		model:      model,
		url:        anthropicMessagesURL,
		httpClient: &http.Client{Timeout: 150 * time.Second},
	}
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Complete devuelve el texto del primer bloque de contenido. El modelo puede
// envolver el JSON en markdown; el Generator lo limpia.
func (a *AnthropicCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	if a.apiKey == "" {
		return "", fmt.Errorf("%w: ANTHROPIC_API_KEY no configurado", domain.ErrGeneratorUnavailable)
	}

	body, err := json.Marshal(anthropicRequest{
		Model:     a.model,
		MaxTokens: 8192,
		System:    system,
		Messages:  []anthropicMessage{{Role: "user", Content: user}},
	})
	if err != nil {
		return "", fmt.Errorf("AI: serializar request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("AI: crear HTTP request: %w", err)
	}
	req.Header.Set("x-api-key", a.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	req.Header.Set("content-type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("AI: timeout o cancelación: %w", ctx.Err())
		}
		return "", fmt.Errorf("%w: %v", domain.ErrGeneratorUnavailable, err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("AI: leer respuesta: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp anthropicResponse
		if jsonErr := json.Unmarshal(rawBody, &errResp); jsonErr == nil && errResp.Error != nil {
			return "", fmt.Errorf("%w: Anthropic error (%s): %s", domain.ErrGeneratorUnavailable, errResp.Error.Type, errResp.Error.Message)
		}
		return "", fmt.Errorf("%w: Anthropic HTTP %d", domain.ErrGeneratorUnavailable, resp.StatusCode)
	}

	var anthResp anthropicResponse
	if err := json.Unmarshal(rawBody, &anthResp); err != nil {
		return "", fmt.Errorf("AI: deserializar respuesta Anthropic: %w", err)
	}
	if len(anthResp.Content) == 0 {
		return "", fmt.Errorf("AI: Anthropic devolvió respuesta vacía")
	}
	return anthResp.Content[0].Text, nil
}
