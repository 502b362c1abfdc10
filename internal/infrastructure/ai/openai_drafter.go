package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jhoicas/retail-backoffice-api/internal/application/ports"
)

var _ ports.MessageDrafter = (*OpenAIDrafter)(nil)

// OpenAIDrafter adaptador para servidores con API tipo OpenAI (/chat/completions), por ejemplo LM Studio local.
type OpenAIDrafter struct {
	baseURL    string
	model      string
	apiKey     string
	httpClient *http.Client
}

// NewOpenAIDrafter construye el adaptador. baseURL sin la ruta final, ej. http://localhost:1234/v1.
func NewOpenAIDrafter(baseURL, model, apiKey string) *OpenAIDrafter {
	return &OpenAIDrafter{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		apiKey:  apiKey,
		// Modelos locales pueden tardar; el caso de uso corta antes con su propio timeout.
		httpClient: newHTTPClient(60 * time.Second),
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// DraftMessage envía system + user prompt y devuelve el contenido del primer choice.
func (d *OpenAIDrafter) DraftMessage(ctx context.Context, prompt string) (string, error) {
	payload := chatRequest{
		Model: d.model,
		Messages: []chatMessage{
			{Role: "system", Content: draftSystemPrompt},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   draftMaxTokens,
		Temperature: draftTemperature,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("AI: serializar request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("AI: crear HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if d.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+d.apiKey)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("AI: timeout o cancelación: %w", ctx.Err())
		}
		return "", fmt.Errorf("AI: llamada HTTP fallida: %w", err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("AI: leer respuesta: %w", err)
	}

	var out chatResponse
	if resp.StatusCode != http.StatusOK {
		if jsonErr := json.Unmarshal(rawBody, &out); jsonErr == nil && out.Error != nil {
			return "", fmt.Errorf("AI: chat/completions error: %s", out.Error.Message)
		}
		return "", fmt.Errorf("AI: chat/completions HTTP %d", resp.StatusCode)
	}
	if err := json.Unmarshal(rawBody, &out); err != nil {
		return "", fmt.Errorf("AI: deserializar respuesta: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", errEmpty("chat/completions")
	}
	text := cleanDraft(out.Choices[0].Message.Content)
	if text == "" {
		return "", errEmpty("chat/completions")
	}
	return text, nil
}
