package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/retail-backoffice-api/internal/application/dto"
	"github.com/jhoicas/retail-backoffice-api/internal/application/sales"
	"github.com/jhoicas/retail-backoffice-api/internal/domain/repository"
)

// SaleHandler maneja /api/ventas.
type SaleHandler struct {
	uc  *sales.UseCase
	log zerolog.Logger
}

// NewSaleHandler construye el handler.
func NewSaleHandler(uc *sales.UseCase, log zerolog.Logger) *SaleHandler {
	return &SaleHandler{uc: uc, log: log}
}

// Create godoc
// @Summary      Registrar venta
// @Description  Crea la venta con su detalle y descuenta el stock de cada línea.
// @Description  Las ventas a crédito requieren cliente_id y fecha_vencimiento.
// @Tags         ventas
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string                 false  "clave de idempotencia"
// @Param        body             body    dto.CreateSaleRequest  true   "venta"
// @Success      201  {object}  dto.DataResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/ventas [post]
func (h *SaleHandler) Create(c *fiber.Ctx) error {
	empresaID, usuarioID, ok := tenant(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.CreateSaleRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "cuerpo inválido")
	}
	fecha, err := parseDate("fecha_venta", in.FechaVenta)
	if err != nil {
		return writeError(c, h.log, err)
	}
	vence, err := parseDate("fecha_vencimiento", in.FechaVencimiento)
	if err != nil {
		return writeError(c, h.log, err)
	}
	items := make([]sales.LineInput, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, sales.LineInput{
			ProductoID:     it.ProductoID,
			UnidadMedidaID: it.UnidadMedidaID,
			Cantidad:       it.Cantidad,
			PrecioUnitario: it.PrecioUnitario,
			Descuento:      it.Descuento,
		})
	}
	res, err := h.uc.CreateSale(c.UserContext(), sales.CreateInput{
		EmpresaID:        empresaID,
		UsuarioID:        usuarioID,
		SucursalID:       in.SucursalID,
		ClienteID:        in.ClienteID,
		TipoVenta:        in.TipoVenta,
		FechaVenta:       fecha,
		FechaVencimiento: vence,
		NumeroDocumento:  in.NumeroDocumento,
		Observaciones:    in.Observaciones,
		Items:            items,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.DataResponse{OK: true, Data: res})
}

// List godoc
// @Summary      Listar ventas
// @Tags         ventas
// @Security     Bearer
// @Produce      json
// @Param        cliente_id   query  string  false  "cliente"
// @Param        sucursal_id  query  string  false  "sucursal"
// @Param        tipo_venta   query  string  false  "CONTADO | CREDITO"
// @Param        estado       query  string  false  "PAGADA | PENDIENTE | PARCIAL | ANULADA"
// @Param        fecha_desde  query  string  false  "YYYY-MM-DD"
// @Param        fecha_hasta  query  string  false  "YYYY-MM-DD"
// @Param        limit        query  int     false  "máximo de filas"
// @Param        offset       query  int     false  "desplazamiento"
// @Success      200  {object}  dto.ListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/ventas [get]
func (h *SaleHandler) List(c *fiber.Ctx) error {
	empresaID, _, ok := tenant(c)
	if !ok {
		return unauthorized(c)
	}
	var q dto.DocumentListQuery
	if err := c.QueryParser(&q); err != nil {
		return badRequest(c, "parámetros inválidos")
	}
	if err := validateStruct(q); err != nil {
		return writeError(c, h.log, err)
	}
	q.DefaultPage()
	desde, hasta, err := parseRange(q.FechaDesde, q.FechaHasta)
	if err != nil {
		return writeError(c, h.log, err)
	}
	list, err := h.uc.List(c.UserContext(), empresaID, repository.DocumentFilter{
		ContraparteID: q.ClienteID,
		SucursalID:    q.SucursalID,
		Tipo:          q.TipoVenta,
		Estado:        q.Estado,
		Desde:         desde,
		Hasta:         hasta,
		Limit:         q.Limit,
		Offset:        q.Offset,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.ListResponse{OK: true, Total: len(list), Data: list})
}

// Detail godoc
// @Summary      Detalle de venta
// @Tags         ventas
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "venta"
// @Success      200  {object}  dto.DataResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/ventas/{id} [get]
func (h *SaleHandler) Detail(c *fiber.Ctx) error {
	empresaID, _, ok := tenant(c)
	if !ok {
		return unauthorized(c)
	}
	res, err := h.uc.Detail(c.UserContext(), empresaID, c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.DataResponse{OK: true, Data: res})
}

// Void godoc
// @Summary      Anular venta
// @Description  Devuelve al stock lo vendido en cada línea.
// @Tags         ventas
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "venta"
// @Success      200  {object}  dto.DataResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/ventas/{id}/anular [post]
func (h *SaleHandler) Void(c *fiber.Ctx) error {
	empresaID, usuarioID, ok := tenant(c)
	if !ok {
		return unauthorized(c)
	}
	res, err := h.uc.VoidSale(c.UserContext(), empresaID, usuarioID, c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.DataResponse{OK: true, Data: res})
}

// RegisterPayment godoc
// @Summary      Registrar abono de cliente
// @Tags         ventas
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string              false  "clave de idempotencia"
// @Param        id               path    string              true   "venta"
// @Param        body             body    dto.PaymentRequest  true   "pago"
// @Success      201  {object}  dto.DataResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/ventas/{id}/pagos [post]
func (h *SaleHandler) RegisterPayment(c *fiber.Ctx) error {
	empresaID, usuarioID, ok := tenant(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.PaymentRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "cuerpo inválido")
	}
	fecha, err := parseDate("fecha_pago", in.FechaPago)
	if err != nil {
		return writeError(c, h.log, err)
	}
	res, err := h.uc.RegisterPayment(c.UserContext(), sales.PaymentInput{
		EmpresaID:     empresaID,
		UsuarioID:     usuarioID,
		VentaID:       c.Params("id"),
		FechaPago:     fecha,
		Monto:         in.Monto,
		MetodoPago:    in.MetodoPago,
		Referencia:    in.Referencia,
		Observaciones: in.Observaciones,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.DataResponse{OK: true, Data: res})
}

// ListPayments godoc
// @Summary      Abonos de una venta
// @Tags         ventas
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "venta"
// @Success      200  {object}  dto.ListResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/ventas/{id}/pagos [get]
func (h *SaleHandler) ListPayments(c *fiber.Ctx) error {
	empresaID, _, ok := tenant(c)
	if !ok {
		return unauthorized(c)
	}
	list, err := h.uc.ListPayments(c.UserContext(), empresaID, c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.ListResponse{OK: true, Total: len(list), Data: list})
}

// Receipt godoc
// @Summary      Comprobante de venta en PDF
// @Tags         ventas
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "venta"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/ventas/{id}/comprobante [get]
func (h *SaleHandler) Receipt(c *fiber.Ctx) error {
	empresaID, _, ok := tenant(c)
	if !ok {
		return unauthorized(c)
	}
	id := c.Params("id")
	pdf, err := h.uc.Receipt(c.UserContext(), empresaID, id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="venta-`+id+`.pdf"`)
	return c.Send(pdf)
}
