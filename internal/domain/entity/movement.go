package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Dirección del movimiento.
const (
	MovementEntrada = "ENTRADA"
	MovementSalida  = "SALIDA"
)

// Motivos de movimiento.
const (
	MotivoCompra              = "COMPRA"
	MotivoVenta               = "VENTA"
	MotivoAjuste              = "AJUSTE"
	MotivoTraspasoEntrada     = "TRASPASO_ENTRADA"
	MotivoTraspasoSalida      = "TRASPASO_SALIDA"
	MotivoDevolucionCliente   = "DEVOLUCION_CLIENTE"
	MotivoDevolucionProveedor = "DEVOLUCION_PROVEEDOR"
)

// Tipos de referencia al documento de origen.
const (
	ReferenciaCompra   = "COMPRA"
	ReferenciaVenta    = "VENTA"
	ReferenciaAjuste   = "AJUSTE"
	ReferenciaTraspaso = "TRASPASO"
)

// Movement registro inmutable del kardex (movimientos_inventario).
// Cantidad es siempre positiva; la dirección la da Tipo. StockDespues es el saldo tras aplicarlo.
type Movement struct {
	ID              string           `json:"id"`
	EmpresaID       string           `json:"empresa_id"`
	SucursalID      string           `json:"sucursal_id"`
	ProductoID      string           `json:"producto_id"`
	Tipo            string           `json:"tipo"`
	Motivo          string           `json:"motivo"`
	ReferenciaTipo  *string          `json:"referencia_tipo"`
	ReferenciaID    *string          `json:"referencia_id"`
	Cantidad        decimal.Decimal  `json:"cantidad"`
	CostoUnitario   *decimal.Decimal `json:"costo_unitario"`
	PrecioUnitario  *decimal.Decimal `json:"precio_unitario"`
	StockDespues    decimal.Decimal  `json:"stock_despues"`
	FechaMovimiento time.Time        `json:"fecha_movimiento"`
	UsuarioID       string           `json:"usuario_id"`
	CreatedAt       time.Time        `json:"created_at"`
}

// Signed cantidad con signo (+ entrada, - salida).
func (m *Movement) Signed() decimal.Decimal {
	if m.Tipo == MovementSalida {
		return m.Cantidad.Neg()
	}
	return m.Cantidad
}
