package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/jhoicas/retail-backoffice-api/internal/application/alerts"
	"github.com/jhoicas/retail-backoffice-api/internal/domain"
	"github.com/jhoicas/retail-backoffice-api/internal/domain/entity"
	"github.com/jhoicas/retail-backoffice-api/internal/observability"
)

// Deliverer entrega una notificación PENDIENTE (notifications.UseCase).
type Deliverer interface {
	Deliver(ctx context.Context, empresaID, id string) (*entity.Notification, error)
}

// Scanner genera eventos de alerta (alerts.UseCase).
type Scanner interface {
	Scan(ctx context.Context, empresaID string) (*alerts.ScanResult, error)
	ScanAll(ctx context.Context) ([]*alerts.ScanResult, error)
}

// Handlers procesadores de tareas del worker.
type Handlers struct {
	deliverer Deliverer
	scanner   Scanner
	metrics   *observability.Metrics
	log       zerolog.Logger
}

// NewHandlers construye los procesadores.
func NewHandlers(deliverer Deliverer, scanner Scanner, metrics *observability.Metrics, log zerolog.Logger) *Handlers {
	return &Handlers{deliverer: deliverer, scanner: scanner, metrics: metrics, log: log}
}

// HandleDeliver procesa TaskDeliverWhatsApp. Un envío fallido queda registrado como ERROR en la
// notificación y no se reintenta; solo los errores de persistencia vuelven a la cola.
func (h *Handlers) HandleDeliver(ctx context.Context, t *asynq.Task) (err error) {
	defer func() { h.metrics.JobFinished(TaskDeliverWhatsApp, err) }()

	var p DeliverPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil || p.EmpresaID == "" || p.NotificationID == "" {
		return fmt.Errorf("payload inválido: %w", asynq.SkipRetry)
	}

	n, err := h.deliverer.Deliver(ctx, p.EmpresaID, p.NotificationID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			h.log.Warn().Str("notification_id", p.NotificationID).Msg("notificación no encontrada; se descarta la tarea")
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		return err
	}
	h.log.Info().
		Str("empresa_id", p.EmpresaID).
		Str("notification_id", n.ID).
		Str("estado", n.Estado).
		Msg("notificación procesada")
	return nil
}

// HandleScan procesa TaskScanAlerts.
func (h *Handlers) HandleScan(ctx context.Context, t *asynq.Task) (err error) {
	defer func() { h.metrics.JobFinished(TaskScanAlerts, err) }()

	var p ScanPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &p); err != nil {
			return fmt.Errorf("payload inválido: %w", asynq.SkipRetry)
		}
	}

	if p.EmpresaID != "" {
		res, err := h.scanner.Scan(ctx, p.EmpresaID)
		if err != nil {
			return err
		}
		h.logScan(res)
		return nil
	}

	results, err := h.scanner.ScanAll(ctx)
	if err != nil {
		return err
	}
	for _, res := range results {
		h.logScan(res)
	}
	return nil
}

func (h *Handlers) logScan(res *alerts.ScanResult) {
	h.log.Info().
		Str("empresa_id", res.EmpresaID).
		Int("generados", res.Generados).
		Int("omitidos", res.Omitidos).
		Msg("escaneo de alertas")
}
