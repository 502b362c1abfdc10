package whatsapp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetaSender_EnvioExitoso(t *testing.T) {
	var got textMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v20.0/12345/messages", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"messaging_product":"whatsapp","messages":[{"id":"wamid.ABC"}]}`))
	}))
	defer srv.Close()

	out, err := NewMetaSender("tok", "12345", "").WithGraphURL(srv.URL).SendMessage(context.Background(), "50255550000", "hola")

	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Equal(t, "wamid.ABC", out.ProviderMessageID)
	assert.Equal(t, "whatsapp", got.MessagingProduct)
	assert.Equal(t, "50255550000", got.To)
	assert.Equal(t, "text", got.Type)
	assert.False(t, got.Text.PreviewURL)
	assert.Equal(t, "hola", got.Text.Body)
}

func TestMetaSender_ErrorDelProveedor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid phone"}}`))
	}))
	defer srv.Close()

	out, err := NewMetaSender("tok", "1", "v19.0").WithGraphURL(srv.URL).SendMessage(context.Background(), "1", "hola")

	require.NoError(t, err)
	assert.False(t, out.Success)
	assert.Contains(t, out.RawResponse, "invalid phone")
}

func TestMetaSender_SinConfiguracion(t *testing.T) {
	_, err := NewMetaSender("", "", "").SendMessage(context.Background(), "1", "hola")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestMetaSender_FallaDeRed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	out, err := NewMetaSender("tok", "1", "").WithGraphURL(url).SendMessage(context.Background(), "1", "hola")

	require.NoError(t, err)
	assert.False(t, out.Success)
	assert.Contains(t, out.RawResponse, "error")
}
