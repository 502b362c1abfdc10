package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/retail-backoffice-api/internal/domain/entity"
	"github.com/jhoicas/retail-backoffice-api/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo implementación del kardex sobre movimientos_inventario (solo inserción).
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador de persistencia para movimientos.
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

const movementColumns = `
	id, empresa_id, sucursal_id, producto_id, tipo_movimiento, motivo, referencia_tipo, referencia_id::text,
	cantidad, costo_unitario, precio_unitario, stock_despues, fecha_movimiento, usuario_id, created_at`

// Create registra un movimiento.
func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	query := `
		INSERT INTO movimientos_inventario (id, empresa_id, sucursal_id, producto_id, tipo_movimiento, motivo,
			referencia_tipo, referencia_id, cantidad, costo_unitario, precio_unitario, stock_despues,
			fecha_movimiento, usuario_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.EmpresaID, m.SucursalID, m.ProductoID, m.Tipo, m.Motivo,
		m.ReferenciaTipo, m.ReferenciaID, m.Cantidad, m.CostoUnitario, m.PrecioUnitario, m.StockDespues,
		m.FechaMovimiento, m.UsuarioID, m.CreatedAt,
	)
	if err != nil {
		return writeError("insert movimiento", err)
	}
	return nil
}

// GetByID obtiene un movimiento de la empresa. nil, nil si no existe.
func (r *MovementRepo) GetByID(ctx context.Context, empresaID, id string) (*entity.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM movimientos_inventario WHERE empresa_id = $1 AND id = $2`
	m, err := scanMovement(r.q.QueryRow(ctx, query, empresaID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get movimiento: %w", err)
	}
	return m, nil
}

// List kardex filtrado, más reciente primero. Desde/Hasta inclusivos sobre fecha_movimiento.
func (r *MovementRepo) List(ctx context.Context, empresaID string, f repository.MovementFilter) ([]*entity.Movement, error) {
	w := newWhere("empresa_id", empresaID)
	if f.SucursalID != "" {
		w.add("sucursal_id =", f.SucursalID)
	}
	if f.ProductoID != "" {
		w.add("producto_id =", f.ProductoID)
	}
	if f.Tipo != "" {
		w.add("tipo_movimiento =", f.Tipo)
	}
	if f.Motivo != "" {
		w.add("motivo =", f.Motivo)
	}
	if f.Desde != nil {
		w.add("fecha_movimiento >=", *f.Desde)
	}
	if f.Hasta != nil {
		w.add("fecha_movimiento <=", *f.Hasta)
	}
	query := `SELECT ` + movementColumns + ` FROM movimientos_inventario` + w.String() +
		` ORDER BY fecha_movimiento DESC, seq DESC`
	query += w.paginate(f.Limit, f.Offset)

	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list movimientos: %w", err)
	}
	defer rows.Close()

	var list []*entity.Movement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("list movimientos scan: %w", err)
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

func scanMovement(row pgx.Row) (*entity.Movement, error) {
	var m entity.Movement
	err := row.Scan(
		&m.ID, &m.EmpresaID, &m.SucursalID, &m.ProductoID, &m.Tipo, &m.Motivo, &m.ReferenciaTipo, &m.ReferenciaID,
		&m.Cantidad, &m.CostoUnitario, &m.PrecioUnitario, &m.StockDespues, &m.FechaMovimiento, &m.UsuarioID, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
