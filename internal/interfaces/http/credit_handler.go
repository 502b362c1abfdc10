package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/retail-backoffice-api/internal/application/credits"
	"github.com/jhoicas/retail-backoffice-api/internal/application/dto"
)

// CreditHandler consultas de cuentas por cobrar (/api/creditos/clientes) y por pagar (/api/creditos/proveedores).
type CreditHandler struct {
	uc  *credits.UseCase
	log zerolog.Logger
}

// NewCreditHandler construye el handler.
func NewCreditHandler(uc *credits.UseCase, log zerolog.Logger) *CreditHandler {
	return &CreditHandler{uc: uc, log: log}
}

func (h *CreditHandler) filter(c *fiber.Ctx, contraparte func(q dto.CreditListQuery) string) (credits.Filter, error) {
	var q dto.CreditListQuery
	if err := c.QueryParser(&q); err != nil {
		return credits.Filter{}, err
	}
	desde, hasta, err := parseRange(q.FechaDesde, q.FechaHasta)
	if err != nil {
		return credits.Filter{}, err
	}
	return credits.Filter{
		ContraparteID: contraparte(q),
		SucursalID:    q.SucursalID,
		Estado:        q.Estado,
		Vencidos:      q.Vencidos,
		Desde:         desde,
		Hasta:         hasta,
	}, nil
}

// ListCustomerCredits godoc
// @Summary      Créditos de clientes
// @Description  Ventas a crédito. Sin estado solo devuelve las que tienen saldo; vencidos=true filtra por fecha de vencimiento pasada.
// @Tags         creditos
// @Security     Bearer
// @Produce      json
// @Param        cliente_id   query  string  false  "cliente"
// @Param        sucursal_id  query  string  false  "sucursal"
// @Param        estado       query  string  false  "PENDIENTE | PARCIAL | PAGADA | ANULADA"
// @Param        vencidos     query  bool    false  "solo vencidos"
// @Param        fecha_desde  query  string  false  "YYYY-MM-DD"
// @Param        fecha_hasta  query  string  false  "YYYY-MM-DD"
// @Success      200  {object}  dto.ListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/creditos/clientes [get]
func (h *CreditHandler) ListCustomerCredits(c *fiber.Ctx) error {
	empresaID, _, ok := tenant(c)
	if !ok {
		return unauthorized(c)
	}
	f, err := h.filter(c, func(q dto.CreditListQuery) string { return q.ClienteID })
	if err != nil {
		return writeError(c, h.log, asValidation(err))
	}
	list, err := h.uc.ListCustomerCredits(c.UserContext(), empresaID, f)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.ListResponse{OK: true, Total: len(list), Data: list})
}

// CustomerCreditDetail godoc
// @Summary      Detalle de crédito de cliente
// @Tags         creditos
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "venta"
// @Success      200  {object}  dto.DataResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/creditos/clientes/{id} [get]
func (h *CreditHandler) CustomerCreditDetail(c *fiber.Ctx) error {
	empresaID, _, ok := tenant(c)
	if !ok {
		return unauthorized(c)
	}
	res, err := h.uc.CustomerCreditDetail(c.UserContext(), empresaID, c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.DataResponse{OK: true, Data: res})
}

// ListSupplierCredits godoc
// @Summary      Créditos con proveedores
// @Tags         creditos
// @Security     Bearer
// @Produce      json
// @Param        proveedor_id  query  string  false  "proveedor"
// @Param        sucursal_id   query  string  false  "sucursal"
// @Param        estado        query  string  false  "PENDIENTE | PARCIAL | PAGADA | ANULADA"
// @Param        vencidos      query  bool    false  "solo vencidos"
// @Param        fecha_desde   query  string  false  "YYYY-MM-DD"
// @Param        fecha_hasta   query  string  false  "YYYY-MM-DD"
// @Success      200  {object}  dto.ListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/creditos/proveedores [get]
func (h *CreditHandler) ListSupplierCredits(c *fiber.Ctx) error {
	empresaID, _, ok := tenant(c)
	if !ok {
		return unauthorized(c)
	}
	f, err := h.filter(c, func(q dto.CreditListQuery) string { return q.ProveedorID })
	if err != nil {
		return writeError(c, h.log, asValidation(err))
	}
	list, err := h.uc.ListSupplierCredits(c.UserContext(), empresaID, f)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.ListResponse{OK: true, Total: len(list), Data: list})
}

// SupplierCreditDetail godoc
// @Summary      Detalle de crédito con proveedor
// @Tags         creditos
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "compra"
// @Success      200  {object}  dto.DataResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/creditos/proveedores/{id} [get]
func (h *CreditHandler) SupplierCreditDetail(c *fiber.Ctx) error {
	empresaID, _, ok := tenant(c)
	if !ok {
		return unauthorized(c)
	}
	res, err := h.uc.SupplierCreditDetail(c.UserContext(), empresaID, c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.DataResponse{OK: true, Data: res})
}
