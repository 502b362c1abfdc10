package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/retail-backoffice-api/internal/domain/entity"
)

// StockFilter filtros de consulta de stock.
type StockFilter struct {
	SucursalID  string
	ProductoID  string
	CategoriaID string
	Limit       int
	Offset      int
}

// StockRepository puerto de inventario_sucursal. Las escrituras solo se usan dentro de una
// unidad de trabajo y siempre después de GetForUpdate.
type StockRepository interface {
	// GetForUpdate bloquea la fila (SELECT FOR UPDATE). nil, nil si no existe.
	GetForUpdate(ctx context.Context, empresaID, sucursalID, productoID string) (*entity.BranchStock, error)
	// Insert crea la fila; no hace nada si otra transacción ya la creó.
	Insert(ctx context.Context, stock *entity.BranchStock) error
	UpdateBalance(ctx context.Context, empresaID, sucursalID, productoID string, stockActual decimal.Decimal, at time.Time) error
	List(ctx context.Context, empresaID string, f StockFilter) ([]*entity.StockView, error)
	ListBelowMinimum(ctx context.Context, empresaID, sucursalID string) ([]*entity.StockView, error)
}
