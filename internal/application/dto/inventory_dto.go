package dto

import "github.com/shopspring/decimal"

// AdjustmentRequest body para POST /api/inventario/ajustes. Cantidad con signo.
type AdjustmentRequest struct {
	SucursalID     string           `json:"sucursal_id"`
	ProductoID     string           `json:"producto_id"`
	Cantidad       *decimal.Decimal `json:"cantidad"`
	Motivo         string           `json:"motivo,omitempty"`
	ReferenciaTipo string           `json:"referencia_tipo,omitempty"`
}

// TransferRequest body para POST /api/inventario/traspasos.
type TransferRequest struct {
	SucursalOrigenID  string           `json:"sucursal_origen_id"`
	SucursalDestinoID string           `json:"sucursal_destino_id"`
	ProductoID        string           `json:"producto_id"`
	Cantidad          *decimal.Decimal `json:"cantidad"`
}

// StockQuery filtros de GET /api/inventario/stock.
type StockQuery struct {
	SucursalID  string `query:"sucursal_id"`
	ProductoID  string `query:"producto_id"`
	CategoriaID string `query:"categoria_id"`
	PageRequest
}

// MovementQuery filtros de GET /api/inventario/movimientos.
type MovementQuery struct {
	SucursalID string `query:"sucursal_id"`
	ProductoID string `query:"producto_id"`
	Tipo       string `query:"tipo"`
	Motivo     string `query:"motivo"`
	FechaDesde string `query:"fecha_desde"`
	FechaHasta string `query:"fecha_hasta"`
	PageRequest
}
