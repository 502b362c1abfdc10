package http

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/retail-backoffice-api/internal/domain"
)

var validate = validator.New()

// validateStruct devuelve el primer campo inválido como error de validación.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		fe := verrs[0]
		return domain.Validationf("campo %s inválido (%s)", fe.Field(), fe.Tag())
	}
	return domain.Validation(err.Error())
}

// tenant devuelve empresa y usuario del token; ok=false si faltan.
func tenant(c *fiber.Ctx) (empresaID, usuarioID string, ok bool) {
	empresaID, usuarioID = GetCompanyID(c), GetUserID(c)
	return empresaID, usuarioID, empresaID != ""
}

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02"}

// parseDate acepta fecha simple (YYYY-MM-DD) o fecha-hora. Vacío devuelve nil.
func parseDate(field, raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, domain.Validationf("%s debe tener formato YYYY-MM-DD", field)
}

// parseRange interpreta fecha_desde/fecha_hasta. Una fecha simple en "hasta" cubre el día completo.
func parseRange(desde, hasta string) (*time.Time, *time.Time, error) {
	d, err := parseDate("fecha_desde", desde)
	if err != nil {
		return nil, nil, err
	}
	h, err := parseDate("fecha_hasta", hasta)
	if err != nil {
		return nil, nil, err
	}
	if h != nil && len(strings.TrimSpace(hasta)) == len("2006-01-02") {
		end := h.Add(24*time.Hour - time.Nanosecond)
		h = &end
	}
	if d != nil && h != nil && h.Before(*d) {
		return nil, nil, domain.Validation("fecha_hasta debe ser posterior a fecha_desde")
	}
	return d, h, nil
}

// asValidation trata como error de validación lo que no trae tipo (p. ej. fallas del QueryParser).
func asValidation(err error) error {
	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}
	return domain.Validation("parámetros inválidos")
}
