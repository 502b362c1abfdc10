package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/retail-backoffice-api/internal/application/dto"
	"github.com/jhoicas/retail-backoffice-api/internal/application/inventory"
	"github.com/jhoicas/retail-backoffice-api/internal/domain/repository"
)

// InventoryHandler maneja /api/inventario: ajustes, traspasos, stock y kardex.
type InventoryHandler struct {
	uc            *inventory.UseCase
	replenishment *inventory.ReplenishmentUseCase
	log           zerolog.Logger
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.UseCase, replenishment *inventory.ReplenishmentUseCase, log zerolog.Logger) *InventoryHandler {
	return &InventoryHandler{uc: uc, replenishment: replenishment, log: log}
}

// RegisterAdjustment godoc
// @Summary      Registrar ajuste de inventario
// @Description  cantidad positiva suma stock, negativa lo descuenta. motivo por defecto AJUSTE.
// @Tags         inventario
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string                 false  "clave de idempotencia"
// @Param        body             body    dto.AdjustmentRequest  true   "ajuste"
// @Success      201  {object}  dto.DataResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventario/ajustes [post]
func (h *InventoryHandler) RegisterAdjustment(c *fiber.Ctx) error {
	empresaID, usuarioID, ok := tenant(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.AdjustmentRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "cuerpo inválido")
	}
	res, err := h.uc.RegisterAdjustment(c.UserContext(), inventory.AdjustmentInput{
		EmpresaID:      empresaID,
		UsuarioID:      usuarioID,
		SucursalID:     in.SucursalID,
		ProductoID:     in.ProductoID,
		Cantidad:       in.Cantidad,
		Motivo:         in.Motivo,
		ReferenciaTipo: in.ReferenciaTipo,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.DataResponse{OK: true, Data: res})
}

// RegisterTransfer godoc
// @Summary      Traspaso entre sucursales
// @Tags         inventario
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key  header  string               false  "clave de idempotencia"
// @Param        body             body    dto.TransferRequest  true   "traspaso"
// @Success      201  {object}  dto.DataResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventario/traspasos [post]
func (h *InventoryHandler) RegisterTransfer(c *fiber.Ctx) error {
	empresaID, usuarioID, ok := tenant(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.TransferRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "cuerpo inválido")
	}
	res, err := h.uc.RegisterTransfer(c.UserContext(), inventory.TransferInput{
		EmpresaID:         empresaID,
		UsuarioID:         usuarioID,
		SucursalOrigenID:  in.SucursalOrigenID,
		SucursalDestinoID: in.SucursalDestinoID,
		ProductoID:        in.ProductoID,
		Cantidad:          in.Cantidad,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.DataResponse{OK: true, Data: res})
}

// GetStock godoc
// @Summary      Stock por sucursal
// @Tags         inventario
// @Security     Bearer
// @Produce      json
// @Param        sucursal_id   query  string  false  "sucursal"
// @Param        producto_id   query  string  false  "producto"
// @Param        categoria_id  query  string  false  "categoría"
// @Success      200  {object}  dto.ListResponse
// @Router       /api/inventario/stock [get]
func (h *InventoryHandler) GetStock(c *fiber.Ctx) error {
	empresaID, _, ok := tenant(c)
	if !ok {
		return unauthorized(c)
	}
	var q dto.StockQuery
	if err := c.QueryParser(&q); err != nil {
		return badRequest(c, "parámetros inválidos")
	}
	if err := validateStruct(q); err != nil {
		return writeError(c, h.log, err)
	}
	list, err := h.uc.GetStock(c.UserContext(), empresaID, repository.StockFilter{
		SucursalID:  q.SucursalID,
		ProductoID:  q.ProductoID,
		CategoriaID: q.CategoriaID,
		Limit:       q.Limit,
		Offset:      q.Offset,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.ListResponse{OK: true, Total: len(list), Data: list})
}

// BelowMinimum godoc
// @Summary      Productos bajo mínimo
// @Description  Filas con stock_actual < stock_minimo y la cantidad sugerida para reponer, mayor déficit primero.
// @Tags         inventario
// @Security     Bearer
// @Produce      json
// @Param        sucursal_id  query  string  false  "sucursal; vacío = todas"
// @Success      200  {object}  dto.ListResponse
// @Router       /api/inventario/stock/bajo-minimo [get]
func (h *InventoryHandler) BelowMinimum(c *fiber.Ctx) error {
	empresaID, _, ok := tenant(c)
	if !ok {
		return unauthorized(c)
	}
	list, err := h.replenishment.BelowMinimum(c.UserContext(), empresaID, c.Query("sucursal_id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.ListResponse{OK: true, Total: len(list), Data: list})
}

// GetMovements godoc
// @Summary      Kardex de movimientos
// @Tags         inventario
// @Security     Bearer
// @Produce      json
// @Param        sucursal_id  query  string  false  "sucursal"
// @Param        producto_id  query  string  false  "producto"
// @Param        tipo         query  string  false  "ENTRADA | SALIDA"
// @Param        motivo       query  string  false  "COMPRA, VENTA, AJUSTE, ..."
// @Param        fecha_desde  query  string  false  "YYYY-MM-DD"
// @Param        fecha_hasta  query  string  false  "YYYY-MM-DD"
// @Param        limit        query  int     false  "máximo de filas"
// @Param        offset       query  int     false  "desplazamiento"
// @Success      200  {object}  dto.ListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventario/movimientos [get]
func (h *InventoryHandler) GetMovements(c *fiber.Ctx) error {
	empresaID, _, ok := tenant(c)
	if !ok {
		return unauthorized(c)
	}
	var q dto.MovementQuery
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
	list, err := h.uc.GetMovements(c.UserContext(), empresaID, repository.MovementFilter{
		SucursalID: q.SucursalID,
		ProductoID: q.ProductoID,
		Tipo:       q.Tipo,
		Motivo:     q.Motivo,
		Desde:      desde,
		Hasta:      hasta,
		Limit:      q.Limit,
		Offset:     q.Offset,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.ListResponse{OK: true, Total: len(list), Data: list})
}

// GetMovement godoc
// @Summary      Detalle de movimiento
// @Tags         inventario
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "movimiento"
// @Success      200  {object}  dto.DataResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventario/movimientos/{id} [get]
func (h *InventoryHandler) GetMovement(c *fiber.Ctx) error {
	empresaID, _, ok := tenant(c)
	if !ok {
		return unauthorized(c)
	}
	mov, err := h.uc.GetMovementByID(c.UserContext(), empresaID, c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.DataResponse{OK: true, Data: mov})
}
