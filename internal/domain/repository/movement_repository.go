package repository

import (
	"context"
	"time"

	"github.com/jhoicas/retail-backoffice-api/internal/domain/entity"
)

// MovementFilter filtros del kardex.
type MovementFilter struct {
	SucursalID string
	ProductoID string
	Tipo       string
	Motivo     string
	Desde      *time.Time
	Hasta      *time.Time
	Limit      int
	Offset     int
}

// MovementRepository puerto del log de movimientos (solo inserción).
type MovementRepository interface {
	Create(ctx context.Context, m *entity.Movement) error
	GetByID(ctx context.Context, empresaID, id string) (*entity.Movement, error)
	List(ctx context.Context, empresaID string, f MovementFilter) ([]*entity.Movement, error)
}
