package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/retail-backoffice-api/internal/application/dto"
	"github.com/jhoicas/retail-backoffice-api/internal/domain"
)

// writeError traduce un error de caso de uso a su respuesta HTTP. Las fallas internas
// se registran completas y al cliente solo le llega un mensaje genérico.
func writeError(c *fiber.Ctx, log zerolog.Logger, err error) error {
	kind := domain.KindOf(err)
	status, code := fiber.StatusInternalServerError, "INTERNAL"
	switch kind {
	case domain.KindValidation:
		status, code = fiber.StatusBadRequest, "VALIDATION"
	case domain.KindNotFound:
		status, code = fiber.StatusNotFound, "NOT_FOUND"
	case domain.KindConflict:
		status, code = fiber.StatusConflict, "CONFLICT"
	case domain.KindForbidden:
		status, code = fiber.StatusForbidden, "FORBIDDEN"
	}
	if status == fiber.StatusInternalServerError {
		log.Error().Err(err).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Str("empresa_id", GetCompanyID(c)).
			Msg("error interno")
		return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: "error interno del servidor"})
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: domain.Message(err)})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: msg})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
}
