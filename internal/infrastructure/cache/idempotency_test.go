package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*IdempotencyStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewIdempotencyStore(client, time.Hour), mr
}

func TestIdempotency_PrimeraSolicitudReservaLaClave(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()
	key := store.Key("emp-1", "POST", "/api/compras", "abc")

	stored, err := store.Begin(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, stored)
	assert.True(t, mr.Exists(key))
	assert.Equal(t, time.Hour, mr.TTL(key))
}

func TestIdempotency_SolicitudConcurrenteEnCurso(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	key := store.Key("emp-1", "POST", "/api/compras", "abc")

	_, err := store.Begin(ctx, key)
	require.NoError(t, err)

	_, err = store.Begin(ctx, key)
	assert.ErrorIs(t, err, ErrInProgress)
}

func TestIdempotency_ReintentoDevuelveRespuestaGuardada(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	key := store.Key("emp-1", "POST", "/api/compras", "abc")

	_, err := store.Begin(ctx, key)
	require.NoError(t, err)
	require.NoError(t, store.Complete(ctx, key, StoredResponse{
		Status: 201, ContentType: "application/json", Body: []byte(`{"id":"c-1"}`),
	}))

	stored, err := store.Begin(ctx, key)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, 201, stored.Status)
	assert.JSONEq(t, `{"id":"c-1"}`, string(stored.Body))
}

func TestIdempotency_ReleasePermiteReintentar(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	key := store.Key("emp-1", "POST", "/api/ventas", "k")

	_, err := store.Begin(ctx, key)
	require.NoError(t, err)
	require.NoError(t, store.Release(ctx, key))

	stored, err := store.Begin(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestIdempotency_ClaveAisladaPorEmpresa(t *testing.T) {
	store, _ := newTestStore(t)
	assert.NotEqual(t,
		store.Key("emp-1", "POST", "/api/compras", "abc"),
		store.Key("emp-2", "POST", "/api/compras", "abc"))
}
