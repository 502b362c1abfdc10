package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/retail-backoffice-api/internal/application/dto"
	"github.com/jhoicas/retail-backoffice-api/internal/application/purchasing"
	"github.com/jhoicas/retail-backoffice-api/internal/domain/repository"
)

// PurchaseHandler maneja /api/compras.
type PurchaseHandler struct {
	uc  *purchasing.UseCase
	log zerolog.Logger
}

// NewPurchaseHandler construye el handler.
func NewPurchaseHandler(uc *purchasing.UseCase, log zerolog.Logger) *PurchaseHandler {
	return &PurchaseHandler{uc: uc, log: log}
}

// Create godoc
// @Summary      Registrar compra a proveedor
// @Description  Crea la compra con su detalle y registra la entrada de stock de cada línea.
// @Tags         compras
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string                     false  "clave de idempotencia"
// @Param        body             body    dto.CreatePurchaseRequest  true   "compra"
// @Success      201  {object}  dto.DataResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/compras [post]
func (h *PurchaseHandler) Create(c *fiber.Ctx) error {
	empresaID, usuarioID, ok := tenant(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.CreatePurchaseRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "cuerpo inválido")
	}
	fecha, err := parseDate("fecha_compra", in.FechaCompra)
	if err != nil {
		return writeError(c, h.log, err)
	}
	vence, err := parseDate("fecha_vencimiento", in.FechaVencimiento)
	if err != nil {
		return writeError(c, h.log, err)
	}
	items := make([]purchasing.LineInput, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, purchasing.LineInput{
			ProductoID:     it.ProductoID,
			UnidadMedidaID: it.UnidadMedidaID,
			Cantidad:       it.Cantidad,
			CostoUnitario:  it.CostoUnitario,
			Descuento:      it.Descuento,
		})
	}
	res, err := h.uc.CreatePurchase(c.UserContext(), purchasing.CreateInput{
		EmpresaID:        empresaID,
		UsuarioID:        usuarioID,
		SucursalID:       in.SucursalID,
		ProveedorID:      in.ProveedorID,
		TipoCompra:       in.TipoCompra,
		FechaCompra:      fecha,
		FechaVencimiento: vence,
		NumeroFactura:    in.NumeroFactura,
		Observaciones:    in.Observaciones,
		Items:            items,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.DataResponse{OK: true, Data: res})
}

// List godoc
// @Summary      Listar compras
// @Tags         compras
// @Security     Bearer
// @Produce      json
// @Param        proveedor_id  query  string  false  "proveedor"
// @Param        sucursal_id   query  string  false  "sucursal"
// @Param        tipo_compra   query  string  false  "CONTADO | CREDITO"
// @Param        estado        query  string  false  "PAGADA | PENDIENTE | PARCIAL | ANULADA"
// @Param        fecha_desde   query  string  false  "YYYY-MM-DD"
// @Param        fecha_hasta   query  string  false  "YYYY-MM-DD"
// @Param        limit         query  int     false  "máximo de filas"
// @Param        offset        query  int     false  "desplazamiento"
// @Success      200  {object}  dto.ListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/compras [get]
func (h *PurchaseHandler) List(c *fiber.Ctx) error {
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
		ContraparteID: q.ProveedorID,
		SucursalID:    q.SucursalID,
		Tipo:          q.TipoCompra,
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
// @Summary      Detalle de compra
// @Tags         compras
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "compra"
// @Success      200  {object}  dto.DataResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/compras/{id} [get]
func (h *PurchaseHandler) Detail(c *fiber.Ctx) error {
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
// @Summary      Anular compra
// @Description  Revierte la entrada de stock de cada línea. Una compra anulada no se puede volver a anular.
// @Tags         compras
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "compra"
// @Success      200  {object}  dto.DataResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/compras/{id}/anular [post]
func (h *PurchaseHandler) Void(c *fiber.Ctx) error {
	empresaID, usuarioID, ok := tenant(c)
	if !ok {
		return unauthorized(c)
	}
	res, err := h.uc.VoidPurchase(c.UserContext(), empresaID, usuarioID, c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.DataResponse{OK: true, Data: res})
}

// RegisterPayment godoc
// @Summary      Registrar pago a proveedor
// @Tags         compras
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string              false  "clave de idempotencia"
// @Param        id               path    string              true   "compra"
// @Param        body             body    dto.PaymentRequest  true   "pago"
// @Success      201  {object}  dto.DataResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/compras/{id}/pagos [post]
func (h *PurchaseHandler) RegisterPayment(c *fiber.Ctx) error {
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
	res, err := h.uc.RegisterPayment(c.UserContext(), purchasing.PaymentInput{
		EmpresaID:     empresaID,
		UsuarioID:     usuarioID,
		CompraID:      c.Params("id"),
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
// @Summary      Pagos de una compra
// @Tags         compras
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "compra"
// @Success      200  {object}  dto.ListResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/compras/{id}/pagos [get]
func (h *PurchaseHandler) ListPayments(c *fiber.Ctx) error {
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
