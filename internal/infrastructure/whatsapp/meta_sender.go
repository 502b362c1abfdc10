// Package whatsapp envía mensajes de texto por la API de WhatsApp Cloud de Meta.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jhoicas/retail-backoffice-api/internal/application/ports"
)

var _ ports.MessageSender = (*MetaSender)(nil)

const defaultGraphURL = "https://graph.facebook.com"

// ErrNotConfigured falta WHATSAPP_TOKEN o WHATSAPP_PHONE_NUMBER_ID.
var ErrNotConfigured = errors.New("WhatsApp no está configurado: falta WHATSAPP_TOKEN o WHATSAPP_PHONE_NUMBER_ID")

// MetaSender adaptador de MessageSender sobre Graph API.
type MetaSender struct {
	token         string
	phoneNumberID string
	apiVersion    string
	graphURL      string
	httpClient    *http.Client
}

// NewMetaSender construye el adaptador. apiVersion vacío usa v20.0.
func NewMetaSender(token, phoneNumberID, apiVersion string) *MetaSender {
	if apiVersion == "" {
		apiVersion = "v20.0"
	}
	return &MetaSender{
		token:         token,
		phoneNumberID: phoneNumberID,
		apiVersion:    apiVersion,
		graphURL:      defaultGraphURL,
		httpClient:    &http.Client{Timeout: 15 * time.Second},
	}
}

// WithGraphURL cambia el host de Graph API (servidor de pruebas).
func (s *MetaSender) WithGraphURL(u string) *MetaSender {
	s.graphURL = strings.TrimRight(u, "/")
	return s
}

type textMessage struct {
	MessagingProduct string   `json:"messaging_product"`
	To               string   `json:"to"`
	Type             string   `json:"type"`
	Text             textBody `json:"text"`
}

type textBody struct {
	PreviewURL bool   `json:"preview_url"`
	Body       string `json:"body"`
}

type sendResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

// SendMessage envía un texto simple. Una respuesta no 2xx o una falla de red se devuelven como
// Success=false con el detalle en RawResponse; solo la falta de configuración o de datos es error.
func (s *MetaSender) SendMessage(ctx context.Context, phone, text string) (*ports.SendOutcome, error) {
	if s.token == "" || s.phoneNumberID == "" {
		return nil, ErrNotConfigured
	}
	if phone == "" || text == "" {
		return nil, fmt.Errorf("whatsapp: telefono y mensaje son requeridos")
	}

	body, err := json.Marshal(textMessage{
		MessagingProduct: "whatsapp",
		To:               phone,
		Type:             "text",
		Text:             textBody{PreviewURL: false, Body: text},
	})
	if err != nil {
		return nil, fmt.Errorf("whatsapp: serializar request: %w", err)
	}

	url := fmt.Sprintf("%s/%s/%s/messages", s.graphURL, s.apiVersion, s.phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("whatsapp: crear HTTP request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		raw, _ := json.Marshal(map[string]string{"error": err.Error()})
		return &ports.SendOutcome{Success: false, RawResponse: string(raw)}, nil
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return nil, fmt.Errorf("whatsapp: leer respuesta: %w", err)
	}
	out := &ports.SendOutcome{RawResponse: string(rawBody)}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return out, nil
	}

	out.Success = true
	var parsed sendResponse
	if json.Unmarshal(rawBody, &parsed) == nil && len(parsed.Messages) > 0 {
		out.ProviderMessageID = parsed.Messages[0].ID
	}
	return out, nil
}
