package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/retail-backoffice-api/internal/domain/entity"
	"github.com/jhoicas/retail-backoffice-api/internal/domain/repository"
)

var _ repository.PurchaseRepository = (*PurchaseRepo)(nil)

// PurchaseRepo implementación del puerto PurchaseRepository sobre compras, compra_detalle y pagos_proveedor.
type PurchaseRepo struct {
	q Querier
}

// NewPurchaseRepository construye el adaptador de persistencia para compras.
func NewPurchaseRepository(q Querier) *PurchaseRepo {
	return &PurchaseRepo{q: q}
}

const purchaseSelect = `
	SELECT c.id, c.empresa_id, c.sucursal_id, c.proveedor_id, COALESCE(pr.nombre, ''), c.usuario_id,
	       c.tipo_compra, c.fecha_compra, c.fecha_vencimiento, c.numero_factura, c.observaciones,
	       c.total_bruto, c.descuento_total, c.total_neto, c.saldo_pendiente, c.estado, c.created_at, c.updated_at
	FROM compras c
	LEFT JOIN proveedores pr ON pr.id = c.proveedor_id`

// Create persiste el encabezado.
func (r *PurchaseRepo) Create(ctx context.Context, p *entity.Purchase) error {
	query := `
		INSERT INTO compras (id, empresa_id, sucursal_id, proveedor_id, usuario_id, tipo_compra, fecha_compra,
			fecha_vencimiento, numero_factura, observaciones, total_bruto, descuento_total, total_neto,
			saldo_pendiente, estado, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.EmpresaID, p.SucursalID, p.ProveedorID, p.UsuarioID, p.TipoCompra, p.FechaCompra,
		p.FechaVencimiento, p.NumeroFactura, p.Observaciones, p.TotalBruto, p.DescuentoTotal, p.TotalNeto,
		p.SaldoPendiente, p.Estado, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return writeError("insert compra", err)
	}
	return nil
}

// CreateLine persiste una línea de detalle.
func (r *PurchaseRepo) CreateLine(ctx context.Context, l *entity.PurchaseLine) error {
	query := `
		INSERT INTO compra_detalle (id, empresa_id, compra_id, producto_id, unidad_medida_id, cantidad,
			costo_unitario, descuento, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		l.ID, l.EmpresaID, l.CompraID, l.ProductoID, l.UnidadMedidaID, l.Cantidad, l.CostoUnitario, l.Descuento, l.Subtotal,
	)
	if err != nil {
		return writeError("insert compra_detalle", err)
	}
	return nil
}

// GetByID obtiene una compra. nil, nil si no existe.
func (r *PurchaseRepo) GetByID(ctx context.Context, empresaID, id string) (*entity.Purchase, error) {
	return r.getOne(ctx, purchaseSelect+` WHERE c.empresa_id = $1 AND c.id = $2`, empresaID, id)
}

// GetForUpdate bloquea solo el encabezado de la compra.
func (r *PurchaseRepo) GetForUpdate(ctx context.Context, empresaID, id string) (*entity.Purchase, error) {
	return r.getOne(ctx, purchaseSelect+` WHERE c.empresa_id = $1 AND c.id = $2 FOR UPDATE OF c`, empresaID, id)
}

func (r *PurchaseRepo) getOne(ctx context.Context, query string, args ...any) (*entity.Purchase, error) {
	p, err := scanPurchase(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get compra: %w", err)
	}
	return p, nil
}

// ListLines detalle de la compra en orden de inserción.
func (r *PurchaseRepo) ListLines(ctx context.Context, empresaID, compraID string) ([]*entity.PurchaseLine, error) {
	query := `
		SELECT d.id, d.empresa_id, d.compra_id, d.producto_id, COALESCE(p.nombre, ''), d.unidad_medida_id,
		       d.cantidad, d.costo_unitario, d.descuento, d.subtotal
		FROM compra_detalle d
		LEFT JOIN productos p ON p.id = d.producto_id
		WHERE d.empresa_id = $1 AND d.compra_id = $2
		ORDER BY d.orden`
	rows, err := r.q.Query(ctx, query, empresaID, compraID)
	if err != nil {
		return nil, fmt.Errorf("list compra_detalle: %w", err)
	}
	defer rows.Close()

	list := []*entity.PurchaseLine{}
	for rows.Next() {
		var l entity.PurchaseLine
		if err := rows.Scan(&l.ID, &l.EmpresaID, &l.CompraID, &l.ProductoID, &l.ProductoNombre, &l.UnidadMedidaID,
			&l.Cantidad, &l.CostoUnitario, &l.Descuento, &l.Subtotal); err != nil {
			return nil, fmt.Errorf("scan compra_detalle: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}

// UpdateBalance solo toca saldo_pendiente, estado y updated_at.
func (r *PurchaseRepo) UpdateBalance(ctx context.Context, empresaID, id string, patch entity.BalancePatch) error {
	query := `
		UPDATE compras SET saldo_pendiente = $3, estado = $4, updated_at = $5
		WHERE empresa_id = $1 AND id = $2`
	tag, err := r.q.Exec(ctx, query, empresaID, id, patch.SaldoPendiente, patch.Estado, patch.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update saldo compra: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update saldo compra: %s no existe", id)
	}
	return nil
}

// List compras filtradas, más recientes primero.
func (r *PurchaseRepo) List(ctx context.Context, empresaID string, f repository.DocumentFilter) ([]*entity.Purchase, error) {
	w := newWhere("c.empresa_id", empresaID)
	if f.ContraparteID != "" {
		w.add("c.proveedor_id =", f.ContraparteID)
	}
	if f.SucursalID != "" {
		w.add("c.sucursal_id =", f.SucursalID)
	}
	if f.Tipo != "" {
		w.add("c.tipo_compra =", f.Tipo)
	}
	if f.Estado != "" {
		w.add("c.estado =", f.Estado)
	}
	if f.Desde != nil {
		w.add("c.fecha_compra >=", *f.Desde)
	}
	if f.Hasta != nil {
		w.add("c.fecha_compra <=", *f.Hasta)
	}
	query := purchaseSelect + w.String() + ` ORDER BY c.fecha_compra DESC, c.created_at DESC`
	query += w.paginate(f.Limit, f.Offset)
	return r.queryList(ctx, "list compras", query, w.args...)
}

// ListCredits cuentas por pagar: compras a crédito, por vencimiento (NULL al final) y fecha.
func (r *PurchaseRepo) ListCredits(ctx context.Context, empresaID string, f repository.CreditFilter) ([]*entity.Purchase, error) {
	w := newWhere("c.empresa_id", empresaID)
	if f.ContraparteID != "" {
		w.add("c.proveedor_id =", f.ContraparteID)
	}
	if f.SucursalID != "" {
		w.add("c.sucursal_id =", f.SucursalID)
	}
	creditConditions(w, "c", "tipo_compra", "fecha_compra", f)
	query := purchaseSelect + w.String() + ` ORDER BY c.fecha_vencimiento ASC NULLS LAST, c.fecha_compra ASC`
	return r.queryList(ctx, "list creditos proveedor", query, w.args...)
}

func (r *PurchaseRepo) queryList(ctx context.Context, op, query string, args ...any) ([]*entity.Purchase, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	list := []*entity.Purchase{}
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, fmt.Errorf("%s scan: %w", op, err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// CreatePayment inserta un abono (pagos_proveedor es solo inserción).
func (r *PurchaseRepo) CreatePayment(ctx context.Context, p *entity.PurchasePayment) error {
	query := `
		INSERT INTO pagos_proveedor (id, empresa_id, compra_id, proveedor_id, fecha_pago, monto, metodo_pago,
			referencia, observaciones, usuario_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.EmpresaID, p.CompraID, p.ProveedorID, p.FechaPago, p.Monto, p.MetodoPago,
		p.Referencia, p.Observaciones, p.UsuarioID, p.CreatedAt,
	)
	if err != nil {
		return writeError("insert pago proveedor", err)
	}
	return nil
}

// ListPayments abonos de la compra por fecha de pago.
func (r *PurchaseRepo) ListPayments(ctx context.Context, empresaID, compraID string) ([]*entity.PurchasePayment, error) {
	query := `
		SELECT id, empresa_id, compra_id, proveedor_id, fecha_pago, monto, metodo_pago, referencia,
		       observaciones, usuario_id, created_at
		FROM pagos_proveedor
		WHERE empresa_id = $1 AND compra_id = $2
		ORDER BY fecha_pago ASC, created_at ASC`
	rows, err := r.q.Query(ctx, query, empresaID, compraID)
	if err != nil {
		return nil, fmt.Errorf("list pagos proveedor: %w", err)
	}
	defer rows.Close()

	list := []*entity.PurchasePayment{}
	for rows.Next() {
		var p entity.PurchasePayment
		if err := rows.Scan(&p.ID, &p.EmpresaID, &p.CompraID, &p.ProveedorID, &p.FechaPago, &p.Monto, &p.MetodoPago,
			&p.Referencia, &p.Observaciones, &p.UsuarioID, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan pago proveedor: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}

func scanPurchase(row pgx.Row) (*entity.Purchase, error) {
	var p entity.Purchase
	err := row.Scan(
		&p.ID, &p.EmpresaID, &p.SucursalID, &p.ProveedorID, &p.ProveedorNombre, &p.UsuarioID,
		&p.TipoCompra, &p.FechaCompra, &p.FechaVencimiento, &p.NumeroFactura, &p.Observaciones,
		&p.TotalBruto, &p.DescuentoTotal, &p.TotalNeto, &p.SaldoPendiente, &p.Estado, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// creditConditions filtros comunes de cuentas por cobrar/pagar sobre la tabla con alias t.
// Sin estado explícito solo entran documentos abiertos (PENDIENTE o PARCIAL con saldo).
func creditConditions(w *whereBuilder, t, tipoCol, fechaCol string, f repository.CreditFilter) {
	col := func(name string) string { return t + "." + name }
	w.add(col(tipoCol)+" =", entity.TipoCredito)
	if f.Estado == "" {
		w.raw(col("saldo_pendiente") + " > 0")
		w.raw(fmt.Sprintf("%s IN ('%s', '%s')", col("estado"), entity.EstadoPendiente, entity.EstadoParcial))
	} else {
		w.add(col("estado")+" =", f.Estado)
	}
	if f.Vencidos {
		w.add(col("fecha_vencimiento")+" <", f.Now)
		w.raw(col("saldo_pendiente") + " > 0")
	}
	if f.Desde != nil {
		w.add(col(fechaCol)+" >=", *f.Desde)
	}
	if f.Hasta != nil {
		w.add(col(fechaCol)+" <=", *f.Hasta)
	}
}
