package entity

import "time"

// Tipos de alerta soportados.
const (
	AlertaStockMinimo             = "STOCK_MINIMO"
	AlertaCreditoClienteVencido   = "CREDITO_CLIENTE_VENCIDO"
	AlertaCreditoProveedorVencido = "CREDITO_PROVEEDOR_VENCIDO"
	AlertaProductoSinRotacion     = "PRODUCTO_SIN_ROTACION"
)

// AlertTypes lista de tipos válidos en el orden en que se documentan.
var AlertTypes = []string{
	AlertaStockMinimo,
	AlertaCreditoClienteVencido,
	AlertaCreditoProveedorVencido,
	AlertaProductoSinRotacion,
}

// AlertConfig configuración de un tipo de alerta para la empresa.
type AlertConfig struct {
	ID                     string `json:"id"`
	EmpresaID              string `json:"empresa_id"`
	TipoAlerta             string `json:"tipo_alerta"`
	Nombre                 string `json:"nombre"`
	Descripcion            string `json:"descripcion,omitempty"`
	DiasAntesVencimiento   *int   `json:"dias_antes_vencimiento"`
	PeriodoSinRotacionDias *int   `json:"periodo_sin_rotacion_dias"`
	EnviarApp              bool   `json:"enviar_app"`
	EnviarEmail            bool   `json:"enviar_email"`
	EnviarWhatsApp         bool   `json:"enviar_whatsapp"`
	Activo                 bool   `json:"activo"`
}

// AlertEvent alerta generada (alertas_eventos).
type AlertEvent struct {
	ID               string     `json:"id"`
	EmpresaID        string     `json:"empresa_id"`
	TipoAlerta       string     `json:"tipo_alerta"`
	Titulo           string     `json:"titulo"`
	Mensaje          string     `json:"mensaje"`
	SucursalID       *string    `json:"sucursal_id"`
	ProductoID       *string    `json:"producto_id"`
	ReferenciaTipo   *string    `json:"referencia_tipo"`
	ReferenciaID     *string    `json:"referencia_id"`
	UsuarioDestinoID *string    `json:"usuario_destino_id"`
	Leida            bool       `json:"leida"`
	FechaLeida       *time.Time `json:"fecha_leida"`
	CreatedAt        time.Time  `json:"created_at"`
}
