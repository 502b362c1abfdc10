package ai

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jhoicas/retail-backoffice-api/internal/application/ports"
	"github.com/jhoicas/retail-backoffice-api/pkg/config"
)

// draftSystemPrompt rol del modelo para recordatorios de cobro por WhatsApp.
const draftSystemPrompt = `Eres un asistente de cobranza de una tienda minorista.
Redactas mensajes de WhatsApp en español, breves (máximo 400 caracteres), cordiales y profesionales.
Conserva exactamente los montos, fechas y números de documento que recibas.
Devuelve solo el texto del mensaje, sin comillas, sin markdown y sin firma.`

const (
	draftMaxTokens   = 256
	draftTemperature = 0.4
	maxResponseBytes = 64 * 1024
)

// NewDrafter elige el adaptador según AI_PROVIDER. Devuelve nil si no hay proveedor configurado;
// el caso de uso entonces siempre usa la plantilla.
func NewDrafter(cfg config.AIConfig) ports.MessageDrafter {
	switch strings.ToLower(cfg.Provider) {
	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			return nil
		}
		return NewAnthropicService(cfg.AnthropicAPIKey, cfg.AnthropicModel)
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			return nil
		}
		return NewGeminiService(cfg.GeminiAPIKey, cfg.GeminiModel)
	case "openai", "lmstudio":
		if cfg.BaseURL == "" {
			return nil
		}
		return NewOpenAIDrafter(cfg.BaseURL, cfg.Model, cfg.APIKey)
	}
	return nil
}

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// cleanDraft quita comillas envolventes y espacios que algunos modelos agregan.
func cleanDraft(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "\"“”")
	return strings.TrimSpace(s)
}

func errEmpty(provider string) error {
	return fmt.Errorf("AI: %s devolvió respuesta vacía", provider)
}
