package repository

import (
	"context"
	"time"

	"github.com/jhoicas/retail-backoffice-api/internal/domain/entity"
)

// NotificationFilter filtros de notificaciones.
type NotificationFilter struct {
	Estado           string
	TipoDestinatario string
	Desde            *time.Time
	Hasta            *time.Time
}

// NotificationRepository puerto de whatsapp_notificaciones.
type NotificationRepository interface {
	Create(ctx context.Context, n *entity.Notification) error
	UpdateStatus(ctx context.Context, empresaID, id, estado string, errorDetalle *string) error
	GetByID(ctx context.Context, empresaID, id string) (*entity.Notification, error)
	List(ctx context.Context, empresaID string, f NotificationFilter) ([]*entity.Notification, error)
}
