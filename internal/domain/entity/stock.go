package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// BranchStock saldo de un producto en una sucursal (tabla inventario_sucursal).
// StockActual puede ser negativo; solo el mutador de stock lo modifica.
type BranchStock struct {
	EmpresaID   string           `json:"empresa_id"`
	SucursalID  string           `json:"sucursal_id"`
	ProductoID  string           `json:"producto_id"`
	StockActual decimal.Decimal  `json:"stock_actual"`
	StockMinimo decimal.Decimal  `json:"stock_minimo"`
	StockMaximo *decimal.Decimal `json:"stock_maximo,omitempty"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// BelowMinimum indica si el saldo está por debajo del mínimo configurado.
func (s *BranchStock) BelowMinimum() bool {
	return s.StockActual.LessThan(s.StockMinimo)
}

// StockView fila de consulta de stock con datos de producto y sucursal.
type StockView struct {
	BranchStock
	SucursalNombre string `json:"sucursal_nombre"`
	ProductoNombre string `json:"producto_nombre"`
	SKU            string `json:"sku"`
	CategoriaID    string `json:"categoria_id,omitempty"`
}
