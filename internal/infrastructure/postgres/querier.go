package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/retail-backoffice-api/internal/domain/repository"
)

// Querier es lo común entre *pgxpool.Pool y pgx.Tx; los repositorios no saben si corren en transacción.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// NewSet construye todos los repositorios atados al mismo Querier.
func NewSet(q Querier) repository.Set {
	return repository.Set{
		Branches:      NewBranchRepository(q),
		Products:      NewProductRepository(q),
		Customers:     NewCustomerRepository(q),
		Suppliers:     NewSupplierRepository(q),
		Stock:         NewStockRepository(q),
		Movements:     NewMovementRepository(q),
		Purchases:     NewPurchaseRepository(q),
		Sales:         NewSaleRepository(q),
		Notifications: NewNotificationRepository(q),
		Alerts:        NewAlertRepository(q),
	}
}

// whereBuilder arma condiciones dinámicas con placeholders posicionales ($1, $2, ...).
type whereBuilder struct {
	conds []string
	args  []any
}

func newWhere(empresaCol, empresaID string) *whereBuilder {
	return &whereBuilder{conds: []string{empresaCol + " = $1"}, args: []any{empresaID}}
}

// add agrega "expr $n"; expr debe terminar en el operador (ej. "m.sucursal_id =").
func (w *whereBuilder) add(expr string, arg any) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, fmt.Sprintf("%s $%d", expr, len(w.args)))
}

func (w *whereBuilder) raw(cond string) {
	w.conds = append(w.conds, cond)
}

func (w *whereBuilder) String() string {
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// paginate agrega LIMIT/OFFSET si limit > 0.
func (w *whereBuilder) paginate(limit, offset int) string {
	if limit <= 0 {
		return ""
	}
	w.args = append(w.args, limit)
	s := fmt.Sprintf(" LIMIT $%d", len(w.args))
	if offset > 0 {
		w.args = append(w.args, offset)
		s += fmt.Sprintf(" OFFSET $%d", len(w.args))
	}
	return s
}
