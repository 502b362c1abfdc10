package dto

import "github.com/shopspring/decimal"

// PurchaseItemRequest ítem de compra.
type PurchaseItemRequest struct {
	ProductoID     string           `json:"producto_id"`
	UnidadMedidaID string           `json:"unidad_medida_id"`
	Cantidad       *decimal.Decimal `json:"cantidad"`
	CostoUnitario  *decimal.Decimal `json:"costo_unitario"`
	Descuento      *decimal.Decimal `json:"descuento,omitempty"`
}

// CreatePurchaseRequest body para POST /api/compras. Fechas en YYYY-MM-DD o RFC 3339.
type CreatePurchaseRequest struct {
	SucursalID       string                `json:"sucursal_id"`
	ProveedorID      string                `json:"proveedor_id"`
	TipoCompra       string                `json:"tipo_compra"`
	FechaCompra      string                `json:"fecha_compra"`
	FechaVencimiento string                `json:"fecha_vencimiento,omitempty"`
	NumeroFactura    string                `json:"numero_factura,omitempty"`
	Observaciones    string                `json:"observaciones,omitempty"`
	Items            []PurchaseItemRequest `json:"items"`
}

// SaleItemRequest ítem de venta.
type SaleItemRequest struct {
	ProductoID     string           `json:"producto_id"`
	UnidadMedidaID string           `json:"unidad_medida_id"`
	Cantidad       *decimal.Decimal `json:"cantidad"`
	PrecioUnitario *decimal.Decimal `json:"precio_unitario"`
	Descuento      *decimal.Decimal `json:"descuento,omitempty"`
}

// CreateSaleRequest body para POST /api/ventas. cliente_id vacío = venta anónima de contado.
type CreateSaleRequest struct {
	SucursalID       string            `json:"sucursal_id"`
	ClienteID        string            `json:"cliente_id,omitempty"`
	TipoVenta        string            `json:"tipo_venta"`
	FechaVenta       string            `json:"fecha_venta"`
	FechaVencimiento string            `json:"fecha_vencimiento,omitempty"`
	NumeroDocumento  string            `json:"numero_documento,omitempty"`
	Observaciones    string            `json:"observaciones,omitempty"`
	Items            []SaleItemRequest `json:"items"`
}

// PaymentRequest body para POST /api/compras/:id/pagos y /api/ventas/:id/pagos.
type PaymentRequest struct {
	FechaPago     string           `json:"fecha_pago"`
	Monto         *decimal.Decimal `json:"monto"`
	MetodoPago    string           `json:"metodo_pago,omitempty"`
	Referencia    string           `json:"referencia_pago,omitempty"`
	Observaciones string           `json:"observaciones,omitempty"`
}

// DocumentListQuery filtros de GET /api/compras y /api/ventas.
type DocumentListQuery struct {
	ProveedorID string `query:"proveedor_id"`
	ClienteID   string `query:"cliente_id"`
	SucursalID  string `query:"sucursal_id"`
	TipoCompra  string `query:"tipo_compra"`
	TipoVenta   string `query:"tipo_venta"`
	Estado      string `query:"estado"`
	FechaDesde  string `query:"fecha_desde"`
	FechaHasta  string `query:"fecha_hasta"`
	PageRequest
}

// CreditListQuery filtros de GET /api/creditos/clientes y /api/creditos/proveedores.
type CreditListQuery struct {
	ClienteID   string `query:"cliente_id"`
	ProveedorID string `query:"proveedor_id"`
	SucursalID  string `query:"sucursal_id"`
	Estado      string `query:"estado"`
	Vencidos    bool   `query:"vencidos"`
	FechaDesde  string `query:"fecha_desde"`
	FechaHasta  string `query:"fecha_hasta"`
}
