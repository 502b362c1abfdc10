package dto

// SendTestRequest body para POST /api/whatsapp/test.
type SendTestRequest struct {
	TelefonoDestino string `json:"telefono_destino" validate:"required,min=7,max=20"`
	Mensaje         string `json:"mensaje" validate:"required,max=4096"`
}

// ReminderRequest body para POST /api/whatsapp/recordatorio-cliente (y su preview).
type ReminderRequest struct {
	VentaID string `json:"venta_id" validate:"required"`
	UsarIA  bool   `json:"usar_ia"`
}

// NotificationQuery filtros de GET /api/whatsapp/notificaciones.
type NotificationQuery struct {
	Estado           string `query:"estado"`
	TipoDestinatario string `query:"tipo_destinatario"`
	FechaDesde       string `query:"fecha_desde"`
	FechaHasta       string `query:"fecha_hasta"`
}

// AlertConfigItem una entrada de PUT /api/alertas/configuracion.
type AlertConfigItem struct {
	TipoAlerta             string `json:"tipo_alerta" validate:"required"`
	Nombre                 string `json:"nombre,omitempty" validate:"max=120"`
	Descripcion            string `json:"descripcion,omitempty"`
	DiasAntesVencimiento   *int   `json:"dias_antes_vencimiento,omitempty" validate:"omitempty,min=0,max=365"`
	PeriodoSinRotacionDias *int   `json:"periodo_sin_rotacion_dias,omitempty" validate:"omitempty,min=1,max=3650"`
	EnviarApp              *bool  `json:"enviar_app,omitempty"`
	EnviarEmail            *bool  `json:"enviar_email,omitempty"`
	EnviarWhatsApp         *bool  `json:"enviar_whatsapp,omitempty"`
	Activo                 *bool  `json:"activo,omitempty"`
}

// AlertConfigRequest body para PUT /api/alertas/configuracion.
type AlertConfigRequest struct {
	Configuraciones []AlertConfigItem `json:"configuraciones" validate:"dive"`
}

// AlertQuery filtros de GET /api/alertas.
type AlertQuery struct {
	TipoAlerta string `query:"tipo_alerta"`
	Leida      string `query:"leida" validate:"omitempty,oneof=true false 1 0"`
	FechaDesde string `query:"fecha_desde"`
	FechaHasta string `query:"fecha_hasta"`
}
