package http

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/retail-backoffice-api/internal/application/dto"
	"github.com/jhoicas/retail-backoffice-api/internal/infrastructure/cache"
	"github.com/jhoicas/retail-backoffice-api/internal/observability"
)

// HeaderIdempotencyKey cabecera con la clave de idempotencia del cliente.
const HeaderIdempotencyKey = "Idempotency-Key"

const maxIdempotencyKeyLen = 128

// RequestLogger registra cada petición y alimenta las métricas HTTP por ruta.
func RequestLogger(log zerolog.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		if err != nil {
			// Deja que el ErrorHandler de Fiber fije el status antes de medir.
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		status := c.Response().StatusCode()
		elapsed := time.Since(start)
		route := c.Route().Path

		metrics.ObserveHTTP(c.Method(), route, status, elapsed)

		ev := log.Info()
		if status >= fiber.StatusInternalServerError {
			ev = log.Error()
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Str("route", route).
			Int("status", status).
			Dur("latency", elapsed).
			Str("empresa_id", GetCompanyID(c)).
			Msg("request")
		return nil
	}
}

// Idempotency repite la respuesta guardada cuando llega de nuevo la misma Idempotency-Key.
// Sin cabecera o sin store la petición pasa tal cual. Las respuestas 5xx liberan la clave
// para permitir el reintento; si Redis falla se atiende la petición sin protección.
func Idempotency(store *cache.IdempotencyStore, log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		clientKey := strings.TrimSpace(c.Get(HeaderIdempotencyKey))
		if store == nil || clientKey == "" {
			return c.Next()
		}
		if len(clientKey) > maxIdempotencyKeyLen {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "Idempotency-Key demasiado larga"})
		}

		ctx := c.UserContext()
		key := store.Key(GetCompanyID(c), c.Method(), c.Path(), clientKey)
		stored, err := store.Begin(ctx, key)
		switch {
		case errors.Is(err, cache.ErrInProgress):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: "ya hay una solicitud en curso con esta Idempotency-Key"})
		case err != nil:
			log.Warn().Err(err).Msg("idempotencia no disponible")
			return c.Next()
		case stored != nil:
			c.Set("Idempotent-Replayed", "true")
			if stored.ContentType != "" {
				c.Set(fiber.HeaderContentType, stored.ContentType)
			}
			return c.Status(stored.Status).Send(stored.Body)
		}

		if err := c.Next(); err != nil {
			_ = store.Release(ctx, key)
			return err
		}
		status := c.Response().StatusCode()
		if status >= fiber.StatusInternalServerError {
			if rerr := store.Release(ctx, key); rerr != nil {
				log.Warn().Err(rerr).Msg("liberar clave de idempotencia")
			}
			return nil
		}
		body := append([]byte(nil), c.Response().Body()...)
		if cerr := store.Complete(ctx, key, cache.StoredResponse{
			Status:      status,
			ContentType: string(c.Response().Header.ContentType()),
			Body:        body,
		}); cerr != nil {
			log.Warn().Err(cerr).Msg("guardar respuesta idempotente")
		}
		return nil
	}
}
