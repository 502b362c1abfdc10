package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/retail-backoffice-api/internal/domain/entity"
	"github.com/jhoicas/retail-backoffice-api/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación del puerto StockRepository sobre inventario_sucursal.
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de persistencia para stock por sucursal.
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

const stockViewSelect = `
	SELECT i.empresa_id, i.sucursal_id, i.producto_id, i.stock_actual, i.stock_minimo, i.stock_maximo,
	       i.updated_at, s.nombre, p.nombre, p.sku, COALESCE(p.categoria_id::text, '')
	FROM inventario_sucursal i
	JOIN sucursales s ON s.id = i.sucursal_id
	JOIN productos p ON p.id = i.producto_id`

// GetForUpdate bloquea la fila hasta el fin de la transacción. nil, nil si no existe.
func (r *StockRepo) GetForUpdate(ctx context.Context, empresaID, sucursalID, productoID string) (*entity.BranchStock, error) {
	query := `
		SELECT empresa_id, sucursal_id, producto_id, stock_actual, stock_minimo, stock_maximo, updated_at
		FROM inventario_sucursal
		WHERE empresa_id = $1 AND sucursal_id = $2 AND producto_id = $3
		FOR UPDATE`
	var s entity.BranchStock
	err := r.q.QueryRow(ctx, query, empresaID, sucursalID, productoID).Scan(
		&s.EmpresaID, &s.SucursalID, &s.ProductoID, &s.StockActual, &s.StockMinimo, &s.StockMaximo, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock for update: %w", err)
	}
	return &s, nil
}

// Insert crea la fila de la sucursal. Si otra transacción la creó primero no hace nada;
// el llamador vuelve a bloquearla con GetForUpdate.
func (r *StockRepo) Insert(ctx context.Context, s *entity.BranchStock) error {
	query := `
		INSERT INTO inventario_sucursal (empresa_id, sucursal_id, producto_id, stock_actual, stock_minimo, stock_maximo, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (empresa_id, sucursal_id, producto_id) DO NOTHING`
	_, err := r.q.Exec(ctx, query,
		s.EmpresaID, s.SucursalID, s.ProductoID, s.StockActual, s.StockMinimo, s.StockMaximo, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert stock: %w", err)
	}
	return nil
}

// UpdateBalance escribe el nuevo saldo.
func (r *StockRepo) UpdateBalance(ctx context.Context, empresaID, sucursalID, productoID string, stockActual decimal.Decimal, at time.Time) error {
	query := `
		UPDATE inventario_sucursal SET stock_actual = $4, updated_at = $5
		WHERE empresa_id = $1 AND sucursal_id = $2 AND producto_id = $3`
	tag, err := r.q.Exec(ctx, query, empresaID, sucursalID, productoID, stockActual, at)
	if err != nil {
		return fmt.Errorf("update stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update stock: fila %s/%s no existe", sucursalID, productoID)
	}
	return nil
}

// List saldos con nombres de sucursal y producto, ordenados por sucursal y producto.
func (r *StockRepo) List(ctx context.Context, empresaID string, f repository.StockFilter) ([]*entity.StockView, error) {
	w := newWhere("i.empresa_id", empresaID)
	if f.SucursalID != "" {
		w.add("i.sucursal_id =", f.SucursalID)
	}
	if f.ProductoID != "" {
		w.add("i.producto_id =", f.ProductoID)
	}
	if f.CategoriaID != "" {
		w.add("p.categoria_id =", f.CategoriaID)
	}
	query := stockViewSelect + w.String() + " ORDER BY s.nombre, p.nombre"
	query += w.paginate(f.Limit, f.Offset)
	return r.queryViews(ctx, "list stock", query, w.args...)
}

// ListBelowMinimum filas con stock_actual < stock_minimo. sucursalID vacío = todas.
func (r *StockRepo) ListBelowMinimum(ctx context.Context, empresaID, sucursalID string) ([]*entity.StockView, error) {
	w := newWhere("i.empresa_id", empresaID)
	w.raw("i.stock_actual < i.stock_minimo")
	if sucursalID != "" {
		w.add("i.sucursal_id =", sucursalID)
	}
	query := stockViewSelect + w.String() + " ORDER BY s.nombre, p.nombre"
	return r.queryViews(ctx, "list stock bajo minimo", query, w.args...)
}

func (r *StockRepo) queryViews(ctx context.Context, op, query string, args ...any) ([]*entity.StockView, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var list []*entity.StockView
	for rows.Next() {
		var v entity.StockView
		if err := rows.Scan(
			&v.EmpresaID, &v.SucursalID, &v.ProductoID, &v.StockActual, &v.StockMinimo, &v.StockMaximo,
			&v.UpdatedAt, &v.SucursalNombre, &v.ProductoNombre, &v.SKU, &v.CategoriaID,
		); err != nil {
			return nil, fmt.Errorf("%s scan: %w", op, err)
		}
		list = append(list, &v)
	}
	return list, rows.Err()
}
