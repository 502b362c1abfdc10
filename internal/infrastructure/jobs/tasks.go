// Package jobs define las tareas asynq del back-office: entrega de WhatsApp y escaneo de alertas.
package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault cola única del worker.
	QueueDefault = "default"
	// TaskDeliverWhatsApp entrega una notificación ya persistida en PENDIENTE.
	TaskDeliverWhatsApp = "whatsapp:enviar"
	// TaskScanAlerts genera eventos de alerta; sin empresa escanea todas las configuradas.
	TaskScanAlerts = "alertas:escanear"
)

// DeliverPayload identifica la notificación a entregar.
type DeliverPayload struct {
	EmpresaID      string `json:"empresa_id"`
	NotificationID string `json:"notification_id"`
}

// ScanPayload empresa a escanear; vacío = todas.
type ScanPayload struct {
	EmpresaID string `json:"empresa_id,omitempty"`
}

// NewDeliverTask construye la tarea de entrega.
func NewDeliverTask(p DeliverPayload) (*asynq.Task, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskDeliverWhatsApp, data), nil
}

// NewScanTask construye la tarea de escaneo de alertas.
func NewScanTask(p ScanPayload) (*asynq.Task, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskScanAlerts, data), nil
}
