package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo de la empresa.
// PrecioCompraReferencia se copia como costo en cada línea de venta (margen histórico).
type Product struct {
	ID                     string           `json:"id"`
	EmpresaID              string           `json:"empresa_id"`
	CategoriaID            string           `json:"categoria_id,omitempty"`
	SKU                    string           `json:"sku"`
	Nombre                 string           `json:"nombre"`
	PrecioVenta            decimal.Decimal  `json:"precio_venta"`
	PrecioCompraReferencia *decimal.Decimal `json:"precio_compra_referencia,omitempty"`
	StockMinimoGeneral     *decimal.Decimal `json:"stock_minimo_general,omitempty"`
	Activo                 bool             `json:"activo"`
	CreatedAt              time.Time        `json:"created_at"`
	UpdatedAt              time.Time        `json:"updated_at"`
}

// ReferenceCost costo de referencia vigente (cero si no está definido).
func (p *Product) ReferenceCost() decimal.Decimal {
	if p.PrecioCompraReferencia == nil {
		return decimal.Zero
	}
	return *p.PrecioCompraReferencia
}

// DefaultMinimum mínimo general usado al crear la fila de stock de una sucursal.
func (p *Product) DefaultMinimum() decimal.Decimal {
	if p.StockMinimoGeneral == nil {
		return decimal.Zero
	}
	return *p.StockMinimoGeneral
}
