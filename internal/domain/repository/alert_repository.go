package repository

import (
	"context"
	"time"

	"github.com/jhoicas/retail-backoffice-api/internal/domain/entity"
)

// AlertEventFilter filtros de eventos de alerta.
type AlertEventFilter struct {
	TipoAlerta string
	Leida      *bool
	Desde      *time.Time
	Hasta      *time.Time
}

// AlertRepository puerto de configuración y eventos de alertas.
type AlertRepository interface {
	ListConfig(ctx context.Context, empresaID string) ([]*entity.AlertConfig, error)
	DeleteConfig(ctx context.Context, empresaID string) error
	InsertConfig(ctx context.Context, c *entity.AlertConfig) error
	// CreateEvent devuelve false si ya existe un evento no leído con el mismo tipo y referencia.
	CreateEvent(ctx context.Context, e *entity.AlertEvent) (bool, error)
	GetEvent(ctx context.Context, empresaID, id string) (*entity.AlertEvent, error)
	ListEvents(ctx context.Context, empresaID string, f AlertEventFilter) ([]*entity.AlertEvent, error)
	MarkEventRead(ctx context.Context, empresaID, id string, at time.Time) (bool, error)
	// ListCompaniesWithActiveConfig empresas con al menos una alerta activa (escaneo programado).
	ListCompaniesWithActiveConfig(ctx context.Context) ([]string, error)
}
