package repository

import (
	"context"
	"time"

	"github.com/jhoicas/retail-backoffice-api/internal/domain/entity"
)

// DocumentFilter filtros de listado de compras/ventas. ContraparteID es proveedor o cliente.
type DocumentFilter struct {
	ContraparteID string
	SucursalID    string
	Tipo          string
	Estado        string
	Desde         *time.Time
	Hasta         *time.Time
	Limit         int
	Offset        int
}

// CreditFilter filtros de cuentas por cobrar/pagar. Now se usa para "vencidos".
type CreditFilter struct {
	ContraparteID string
	SucursalID    string
	Estado        string
	Vencidos      bool
	Desde         *time.Time
	Hasta         *time.Time
	Now           time.Time
}

// PurchaseRepository puerto de compras, detalle y pagos a proveedor.
type PurchaseRepository interface {
	Create(ctx context.Context, p *entity.Purchase) error
	CreateLine(ctx context.Context, l *entity.PurchaseLine) error
	GetByID(ctx context.Context, empresaID, id string) (*entity.Purchase, error)
	// GetForUpdate bloquea el encabezado para anular o registrar pagos.
	GetForUpdate(ctx context.Context, empresaID, id string) (*entity.Purchase, error)
	ListLines(ctx context.Context, empresaID, compraID string) ([]*entity.PurchaseLine, error)
	UpdateBalance(ctx context.Context, empresaID, id string, patch entity.BalancePatch) error
	List(ctx context.Context, empresaID string, f DocumentFilter) ([]*entity.Purchase, error)
	ListCredits(ctx context.Context, empresaID string, f CreditFilter) ([]*entity.Purchase, error)
	CreatePayment(ctx context.Context, p *entity.PurchasePayment) error
	ListPayments(ctx context.Context, empresaID, compraID string) ([]*entity.PurchasePayment, error)
}

// SaleRepository puerto de ventas, detalle y pagos de cliente.
type SaleRepository interface {
	Create(ctx context.Context, s *entity.Sale) error
	CreateLine(ctx context.Context, l *entity.SaleLine) error
	GetByID(ctx context.Context, empresaID, id string) (*entity.Sale, error)
	GetForUpdate(ctx context.Context, empresaID, id string) (*entity.Sale, error)
	ListLines(ctx context.Context, empresaID, ventaID string) ([]*entity.SaleLine, error)
	UpdateBalance(ctx context.Context, empresaID, id string, patch entity.BalancePatch) error
	List(ctx context.Context, empresaID string, f DocumentFilter) ([]*entity.Sale, error)
	ListCredits(ctx context.Context, empresaID string, f CreditFilter) ([]*entity.Sale, error)
	CreatePayment(ctx context.Context, p *entity.SalePayment) error
	ListPayments(ctx context.Context, empresaID, ventaID string) ([]*entity.SalePayment, error)
}
