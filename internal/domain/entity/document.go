package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Condición de pago del documento.
const (
	TipoContado = "CONTADO"
	TipoCredito = "CREDITO"
)

// Estados del documento. ANULADA es terminal.
const (
	EstadoPagada    = "PAGADA"
	EstadoPendiente = "PENDIENTE"
	EstadoParcial   = "PARCIAL"
	EstadoAnulada   = "ANULADA"
)

// Métodos de pago.
const (
	MetodoEfectivo      = "EFECTIVO"
	MetodoTransferencia = "TRANSFERENCIA"
	MetodoTarjeta       = "TARJETA"
	MetodoOtro          = "OTRO"
)

// BalancePatch únicos campos mutables de un documento después de creado.
// UpdatedAt lo pone quien aplica el cambio, con su reloj.
type BalancePatch struct {
	SaldoPendiente decimal.Decimal
	Estado         string
	UpdatedAt      time.Time
}

// Purchase encabezado de compra a proveedor.
type Purchase struct {
	ID               string          `json:"id"`
	EmpresaID        string          `json:"empresa_id"`
	SucursalID       string          `json:"sucursal_id"`
	ProveedorID      string          `json:"proveedor_id"`
	ProveedorNombre  string          `json:"proveedor_nombre,omitempty"`
	UsuarioID        string          `json:"usuario_id"`
	TipoCompra       string          `json:"tipo_compra"`
	FechaCompra      time.Time       `json:"fecha_compra"`
	FechaVencimiento *time.Time      `json:"fecha_vencimiento"`
	NumeroFactura    string          `json:"numero_factura,omitempty"`
	Observaciones    string          `json:"observaciones,omitempty"`
	TotalBruto       decimal.Decimal `json:"total_bruto"`
	DescuentoTotal   decimal.Decimal `json:"descuento_total"`
	TotalNeto        decimal.Decimal `json:"total_neto"`
	SaldoPendiente   decimal.Decimal `json:"saldo_pendiente"`
	Estado           string          `json:"estado"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// PurchaseLine detalle de compra (inmutable).
type PurchaseLine struct {
	ID             string          `json:"id"`
	EmpresaID      string          `json:"empresa_id"`
	CompraID       string          `json:"compra_id"`
	ProductoID     string          `json:"producto_id"`
	ProductoNombre string          `json:"producto_nombre,omitempty"`
	UnidadMedidaID string          `json:"unidad_medida_id"`
	Cantidad       decimal.Decimal `json:"cantidad"`
	CostoUnitario  decimal.Decimal `json:"costo_unitario"`
	Descuento      decimal.Decimal `json:"descuento"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

// PurchasePayment abono a una compra a crédito (pagos_proveedor, solo inserción).
type PurchasePayment struct {
	ID            string          `json:"id"`
	EmpresaID     string          `json:"empresa_id"`
	CompraID      string          `json:"compra_id"`
	ProveedorID   string          `json:"proveedor_id"`
	FechaPago     time.Time       `json:"fecha_pago"`
	Monto         decimal.Decimal `json:"monto"`
	MetodoPago    string          `json:"metodo_pago"`
	Referencia    string          `json:"referencia,omitempty"`
	Observaciones string          `json:"observaciones,omitempty"`
	UsuarioID     string          `json:"usuario_id"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Sale encabezado de venta. ClienteID es nil en ventas de contado anónimas.
type Sale struct {
	ID               string          `json:"id"`
	EmpresaID        string          `json:"empresa_id"`
	SucursalID       string          `json:"sucursal_id"`
	ClienteID        *string         `json:"cliente_id"`
	ClienteNombre    string          `json:"cliente_nombre,omitempty"`
	UsuarioID        string          `json:"usuario_id"`
	TipoVenta        string          `json:"tipo_venta"`
	FechaVenta       time.Time       `json:"fecha_venta"`
	FechaVencimiento *time.Time      `json:"fecha_vencimiento"`
	NumeroDocumento  string          `json:"numero_documento,omitempty"`
	Observaciones    string          `json:"observaciones,omitempty"`
	TotalBruto       decimal.Decimal `json:"total_bruto"`
	DescuentoTotal   decimal.Decimal `json:"descuento_total"`
	TotalNeto        decimal.Decimal `json:"total_neto"`
	SaldoPendiente   decimal.Decimal `json:"saldo_pendiente"`
	Estado           string          `json:"estado"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// SaleLine detalle de venta. CostoUnitario es la foto del costo de referencia al vender.
type SaleLine struct {
	ID             string          `json:"id"`
	EmpresaID      string          `json:"empresa_id"`
	VentaID        string          `json:"venta_id"`
	ProductoID     string          `json:"producto_id"`
	ProductoNombre string          `json:"producto_nombre,omitempty"`
	UnidadMedidaID string          `json:"unidad_medida_id"`
	Cantidad       decimal.Decimal `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	CostoUnitario  decimal.Decimal `json:"costo_unitario"`
	Descuento      decimal.Decimal `json:"descuento"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

// SalePayment abono de un cliente a una venta a crédito (pagos_cliente).
type SalePayment struct {
	ID            string          `json:"id"`
	EmpresaID     string          `json:"empresa_id"`
	VentaID       string          `json:"venta_id"`
	ClienteID     *string         `json:"cliente_id"`
	FechaPago     time.Time       `json:"fecha_pago"`
	Monto         decimal.Decimal `json:"monto"`
	MetodoPago    string          `json:"metodo_pago"`
	Referencia    string          `json:"referencia,omitempty"`
	Observaciones string          `json:"observaciones,omitempty"`
	UsuarioID     string          `json:"usuario_id"`
	CreatedAt     time.Time       `json:"created_at"`
}
