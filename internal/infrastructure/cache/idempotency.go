package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const pendingMarker = "__pending__"

// ErrInProgress otra solicitud con la misma clave todavía se está procesando.
var ErrInProgress = errors.New("idempotency: solicitud en curso con la misma clave")

// StoredResponse respuesta guardada para repetirla ante un reintento.
type StoredResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// IdempotencyStore reserva claves Idempotency-Key y guarda la respuesta final.
type IdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewIdempotencyStore construye el store. ttl <= 0 usa 24 h.
func NewIdempotencyStore(client *redis.Client, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &IdempotencyStore{client: client, ttl: ttl, prefix: "idem"}
}

// Key arma la clave con empresa, ruta y clave del cliente.
func (s *IdempotencyStore) Key(empresaID, method, path, clientKey string) string {
	return fmt.Sprintf("%s:%s:%s:%s:%s", s.prefix, empresaID, method, path, clientKey)
}

// Begin reserva la clave. Si ya había una respuesta guardada la devuelve (replay);
// si la clave está reservada por otra solicitud devuelve ErrInProgress.
func (s *IdempotencyStore) Begin(ctx context.Context, key string) (*StoredResponse, error) {
	ok, err := s.client.SetNX(ctx, key, pendingMarker, s.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("idempotency: reservar clave: %w", err)
	}
	if ok {
		return nil, nil
	}

	raw, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		// Expiró entre SETNX y GET: se intenta una vez más.
		return s.Begin(ctx, key)
	}
	if err != nil {
		return nil, fmt.Errorf("idempotency: leer clave: %w", err)
	}
	if raw == pendingMarker {
		return nil, ErrInProgress
	}
	var stored StoredResponse
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		return nil, fmt.Errorf("idempotency: respuesta guardada inválida: %w", err)
	}
	return &stored, nil
}

// Complete guarda la respuesta final con el mismo TTL.
func (s *IdempotencyStore) Complete(ctx context.Context, key string, resp StoredResponse) error {
	raw, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("idempotency: serializar respuesta: %w", err)
	}
	if err := s.client.Set(ctx, key, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("idempotency: guardar respuesta: %w", err)
	}
	return nil
}

// Release libera la clave sin guardar respuesta (errores 5xx: el cliente puede reintentar).
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("idempotency: liberar clave: %w", err)
	}
	return nil
}
