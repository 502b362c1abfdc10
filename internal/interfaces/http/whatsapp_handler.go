package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/retail-backoffice-api/internal/application/dto"
	"github.com/jhoicas/retail-backoffice-api/internal/application/notifications"
	"github.com/jhoicas/retail-backoffice-api/internal/domain/repository"
)

// WhatsAppHandler maneja /api/whatsapp.
type WhatsAppHandler struct {
	uc  *notifications.UseCase
	log zerolog.Logger
}

// NewWhatsAppHandler construye el handler.
func NewWhatsAppHandler(uc *notifications.UseCase, log zerolog.Logger) *WhatsAppHandler {
	return &WhatsAppHandler{uc: uc, log: log}
}

// SendTest godoc
// @Summary      Enviar mensaje de prueba
// @Tags         whatsapp
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SendTestRequest  true  "telefono_destino y mensaje"
// @Success      201  {object}  dto.DataResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/whatsapp/test [post]
func (h *WhatsAppHandler) SendTest(c *fiber.Ctx) error {
	empresaID, usuarioID, ok := tenant(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.SendTestRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "cuerpo inválido")
	}
	if err := validateStruct(in); err != nil {
		return writeError(c, h.log, err)
	}
	n, err := h.uc.SendTest(c.UserContext(), notifications.SendTestInput{
		EmpresaID: empresaID,
		UsuarioID: usuarioID,
		Telefono:  in.TelefonoDestino,
		Mensaje:   in.Mensaje,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.DataResponse{OK: true, Data: n})
}

// SendCustomerReminder godoc
// @Summary      Recordatorio de saldo al cliente
// @Description  Arma el mensaje con plantilla (o IA si usar_ia) para una venta a crédito con saldo y lo envía.
// @Tags         whatsapp
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReminderRequest  true  "venta_id"
// @Success      201  {object}  dto.DataResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/whatsapp/recordatorio-cliente [post]
func (h *WhatsAppHandler) SendCustomerReminder(c *fiber.Ctx) error {
	in, err := h.reminderInput(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	n, err := h.uc.SendCustomerReminder(c.UserContext(), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.DataResponse{OK: true, Data: n})
}

// PreviewCustomerReminder godoc
// @Summary      Vista previa del recordatorio
// @Tags         whatsapp
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReminderRequest  true  "venta_id"
// @Success      200  {object}  dto.DataResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/whatsapp/recordatorio-cliente/preview [post]
func (h *WhatsAppHandler) PreviewCustomerReminder(c *fiber.Ctx) error {
	in, err := h.reminderInput(c)
	if err != nil {
		return writeError(c, h.log, err)
	}
	p, err := h.uc.PreviewCustomerReminder(c.UserContext(), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.DataResponse{OK: true, Data: p})
}

func (h *WhatsAppHandler) reminderInput(c *fiber.Ctx) (notifications.ReminderInput, error) {
	var in dto.ReminderRequest
	if err := c.BodyParser(&in); err != nil {
		return notifications.ReminderInput{}, asValidation(err)
	}
	if err := validateStruct(in); err != nil {
		return notifications.ReminderInput{}, err
	}
	return notifications.ReminderInput{
		EmpresaID: GetCompanyID(c),
		UsuarioID: GetUserID(c),
		VentaID:   in.VentaID,
		UsarIA:    in.UsarIA,
	}, nil
}

// List godoc
// @Summary      Historial de notificaciones
// @Tags         whatsapp
// @Security     Bearer
// @Produce      json
// @Param        estado             query  string  false  "PENDIENTE | ENVIADO | ERROR"
// @Param        tipo_destinatario  query  string  false  "CLIENTE | PROVEEDOR | ADMIN"
// @Param        fecha_desde        query  string  false  "YYYY-MM-DD"
// @Param        fecha_hasta        query  string  false  "YYYY-MM-DD"
// @Success      200  {object}  dto.ListResponse
// @Router       /api/whatsapp/notificaciones [get]
func (h *WhatsAppHandler) List(c *fiber.Ctx) error {
	empresaID, _, ok := tenant(c)
	if !ok {
		return unauthorized(c)
	}
	var q dto.NotificationQuery
	if err := c.QueryParser(&q); err != nil {
		return badRequest(c, "parámetros inválidos")
	}
	desde, hasta, err := parseRange(q.FechaDesde, q.FechaHasta)
	if err != nil {
		return writeError(c, h.log, err)
	}
	list, err := h.uc.List(c.UserContext(), empresaID, repository.NotificationFilter{
		Estado:           q.Estado,
		TipoDestinatario: q.TipoDestinatario,
		Desde:            desde,
		Hasta:            hasta,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.ListResponse{OK: true, Total: len(list), Data: list})
}

// Get godoc
// @Summary      Detalle de notificación
// @Tags         whatsapp
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "notificación"
// @Success      200  {object}  dto.DataResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/whatsapp/notificaciones/{id} [get]
func (h *WhatsAppHandler) Get(c *fiber.Ctx) error {
	empresaID, _, ok := tenant(c)
	if !ok {
		return unauthorized(c)
	}
	n, err := h.uc.Get(c.UserContext(), empresaID, c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.DataResponse{OK: true, Data: n})
}
