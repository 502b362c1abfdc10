package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/retail-backoffice-api/internal/application/alerts"
	"github.com/jhoicas/retail-backoffice-api/internal/application/dto"
	"github.com/jhoicas/retail-backoffice-api/internal/domain/repository"
)

// AlertHandler maneja /api/alertas: configuración y eventos.
type AlertHandler struct {
	uc  *alerts.UseCase
	log zerolog.Logger
}

// NewAlertHandler construye el handler.
func NewAlertHandler(uc *alerts.UseCase, log zerolog.Logger) *AlertHandler {
	return &AlertHandler{uc: uc, log: log}
}

// GetConfig godoc
// @Summary      Configuración de alertas
// @Tags         alertas
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.DataResponse
// @Router       /api/alertas/configuracion [get]
func (h *AlertHandler) GetConfig(c *fiber.Ctx) error {
	empresaID, _, ok := tenant(c)
	if !ok {
		return unauthorized(c)
	}
	list, err := h.uc.GetConfig(c.UserContext(), empresaID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.DataResponse{OK: true, Data: list})
}

// ReplaceConfig godoc
// @Summary      Reemplazar configuración de alertas
// @Description  Sustituye toda la configuración de la empresa por la lista enviada.
// @Tags         alertas
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AlertConfigRequest  true  "configuraciones"
// @Success      200  {object}  dto.DataResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/alertas/configuracion [put]
func (h *AlertHandler) ReplaceConfig(c *fiber.Ctx) error {
	empresaID, _, ok := tenant(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.AlertConfigRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "cuerpo inválido")
	}
	if err := validateStruct(in); err != nil {
		return writeError(c, h.log, err)
	}
	items := make([]alerts.ConfigInput, 0, len(in.Configuraciones))
	for _, it := range in.Configuraciones {
		items = append(items, alerts.ConfigInput{
			TipoAlerta:             it.TipoAlerta,
			Nombre:                 it.Nombre,
			Descripcion:            it.Descripcion,
			DiasAntesVencimiento:   it.DiasAntesVencimiento,
			PeriodoSinRotacionDias: it.PeriodoSinRotacionDias,
			EnviarApp:              it.EnviarApp,
			EnviarEmail:            it.EnviarEmail,
			EnviarWhatsApp:         it.EnviarWhatsApp,
			Activo:                 it.Activo,
		})
	}
	list, err := h.uc.ReplaceConfig(c.UserContext(), empresaID, items)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.DataResponse{OK: true, Data: list})
}

// List godoc
// @Summary      Eventos de alerta
// @Tags         alertas
// @Security     Bearer
// @Produce      json
// @Param        tipo_alerta  query  string  false  "tipo"
// @Param        leida        query  bool    false  "leídas / no leídas"
// @Param        fecha_desde  query  string  false  "YYYY-MM-DD"
// @Param        fecha_hasta  query  string  false  "YYYY-MM-DD"
// @Success      200  {object}  dto.ListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/alertas [get]
func (h *AlertHandler) List(c *fiber.Ctx) error {
	empresaID, _, ok := tenant(c)
	if !ok {
		return unauthorized(c)
	}
	var q dto.AlertQuery
	if err := c.QueryParser(&q); err != nil {
		return badRequest(c, "parámetros inválidos")
	}
	if err := validateStruct(q); err != nil {
		return writeError(c, h.log, err)
	}
	desde, hasta, err := parseRange(q.FechaDesde, q.FechaHasta)
	if err != nil {
		return writeError(c, h.log, err)
	}
	f := repository.AlertEventFilter{TipoAlerta: q.TipoAlerta, Desde: desde, Hasta: hasta}
	if q.Leida != "" {
		leida, _ := strconv.ParseBool(q.Leida)
		f.Leida = &leida
	}
	list, err := h.uc.ListEvents(c.UserContext(), empresaID, f)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.ListResponse{OK: true, Total: len(list), Data: list})
}

// Get godoc
// @Summary      Detalle de alerta
// @Tags         alertas
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "alerta"
// @Success      200  {object}  dto.DataResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/alertas/{id} [get]
func (h *AlertHandler) Get(c *fiber.Ctx) error {
	empresaID, _, ok := tenant(c)
	if !ok {
		return unauthorized(c)
	}
	e, err := h.uc.GetEvent(c.UserContext(), empresaID, c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.DataResponse{OK: true, Data: e})
}

// MarkRead godoc
// @Summary      Marcar alerta como leída
// @Description  Un usuario que no es admin solo puede marcar alertas generales o dirigidas a él.
// @Tags         alertas
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "alerta"
// @Success      200  {object}  dto.DataResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/alertas/{id}/leer [post]
func (h *AlertHandler) MarkRead(c *fiber.Ctx) error {
	empresaID, usuarioID, ok := tenant(c)
	if !ok {
		return unauthorized(c)
	}
	e, err := h.uc.MarkRead(c.UserContext(), empresaID, usuarioID, isAdmin(c), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.DataResponse{OK: true, Data: e})
}
