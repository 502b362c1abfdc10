package entity

import "time"

// Estados de una notificación de WhatsApp.
const (
	NotificacionPendiente = "PENDIENTE"
	NotificacionEnviado   = "ENVIADO"
	NotificacionError     = "ERROR"
)

// Destinatarios.
const (
	DestinatarioCliente   = "CLIENTE"
	DestinatarioProveedor = "PROVEEDOR"
	DestinatarioAdmin     = "ADMIN"
)

// Plantillas conocidas.
const (
	PlantillaTest                = "TEST"
	PlantillaRecordatorioCliente = "RECORDATORIO_CREDITO_CLIENTE"
)

// Notification mensaje de WhatsApp registrado (whatsapp_notificaciones).
type Notification struct {
	ID               string    `json:"id"`
	EmpresaID        string    `json:"empresa_id"`
	TipoDestinatario string    `json:"tipo_destinatario"`
	ClienteID        *string   `json:"cliente_id"`
	ProveedorID      *string   `json:"proveedor_id"`
	UsuarioDestinoID *string   `json:"usuario_destino_id"`
	TelefonoDestino  string    `json:"telefono_destino"`
	PlantillaCodigo  string    `json:"plantilla_codigo"`
	MensajeEnviado   string    `json:"mensaje_enviado"`
	FechaEnvio       time.Time `json:"fecha_envio"`
	Estado           string    `json:"estado"`
	ErrorDetalle     *string   `json:"error_detalle"`
	CreatedAt        time.Time `json:"created_at"`
}
