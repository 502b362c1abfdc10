package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/retail-backoffice-api/internal/domain/entity"
	"github.com/jhoicas/retail-backoffice-api/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo implementación del puerto SaleRepository sobre ventas, venta_detalle y pagos_cliente.
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador de persistencia para ventas.
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

const saleSelect = `
	SELECT v.id, v.empresa_id, v.sucursal_id, v.cliente_id::text, COALESCE(cl.nombre, ''), v.usuario_id,
	       v.tipo_venta, v.fecha_venta, v.fecha_vencimiento, v.numero_documento, v.observaciones,
	       v.total_bruto, v.descuento_total, v.total_neto, v.saldo_pendiente, v.estado, v.created_at, v.updated_at
	FROM ventas v
	LEFT JOIN clientes cl ON cl.id = v.cliente_id`

// Create persiste el encabezado.
func (r *SaleRepo) Create(ctx context.Context, s *entity.Sale) error {
	query := `
		INSERT INTO ventas (id, empresa_id, sucursal_id, cliente_id, usuario_id, tipo_venta, fecha_venta,
			fecha_vencimiento, numero_documento, observaciones, total_bruto, descuento_total, total_neto,
			saldo_pendiente, estado, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := r.q.Exec(ctx, query,
		s.ID, s.EmpresaID, s.SucursalID, s.ClienteID, s.UsuarioID, s.TipoVenta, s.FechaVenta,
		s.FechaVencimiento, s.NumeroDocumento, s.Observaciones, s.TotalBruto, s.DescuentoTotal, s.TotalNeto,
		s.SaldoPendiente, s.Estado, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return writeError("insert venta", err)
	}
	return nil
}

// CreateLine persiste una línea con la foto del costo de referencia.
func (r *SaleRepo) CreateLine(ctx context.Context, l *entity.SaleLine) error {
	query := `
		INSERT INTO venta_detalle (id, empresa_id, venta_id, producto_id, unidad_medida_id, cantidad,
			precio_unitario, costo_unitario, descuento, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		l.ID, l.EmpresaID, l.VentaID, l.ProductoID, l.UnidadMedidaID, l.Cantidad,
		l.PrecioUnitario, l.CostoUnitario, l.Descuento, l.Subtotal,
	)
	if err != nil {
		return writeError("insert venta_detalle", err)
	}
	return nil
}

// GetByID obtiene una venta. nil, nil si no existe.
func (r *SaleRepo) GetByID(ctx context.Context, empresaID, id string) (*entity.Sale, error) {
	return r.getOne(ctx, saleSelect+` WHERE v.empresa_id = $1 AND v.id = $2`, empresaID, id)
}

// GetForUpdate bloquea solo el encabezado de la venta.
func (r *SaleRepo) GetForUpdate(ctx context.Context, empresaID, id string) (*entity.Sale, error) {
	return r.getOne(ctx, saleSelect+` WHERE v.empresa_id = $1 AND v.id = $2 FOR UPDATE OF v`, empresaID, id)
}

func (r *SaleRepo) getOne(ctx context.Context, query string, args ...any) (*entity.Sale, error) {
	s, err := scanSale(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get venta: %w", err)
	}
	return s, nil
}

// ListLines detalle de la venta en orden de inserción.
func (r *SaleRepo) ListLines(ctx context.Context, empresaID, ventaID string) ([]*entity.SaleLine, error) {
	query := `
		SELECT d.id, d.empresa_id, d.venta_id, d.producto_id, COALESCE(p.nombre, ''), d.unidad_medida_id,
		       d.cantidad, d.precio_unitario, d.costo_unitario, d.descuento, d.subtotal
		FROM venta_detalle d
		LEFT JOIN productos p ON p.id = d.producto_id
		WHERE d.empresa_id = $1 AND d.venta_id = $2
		ORDER BY d.orden`
	rows, err := r.q.Query(ctx, query, empresaID, ventaID)
	if err != nil {
		return nil, fmt.Errorf("list venta_detalle: %w", err)
	}
	defer rows.Close()

	list := []*entity.SaleLine{}
	for rows.Next() {
		var l entity.SaleLine
		if err := rows.Scan(&l.ID, &l.EmpresaID, &l.VentaID, &l.ProductoID, &l.ProductoNombre, &l.UnidadMedidaID,
			&l.Cantidad, &l.PrecioUnitario, &l.CostoUnitario, &l.Descuento, &l.Subtotal); err != nil {
			return nil, fmt.Errorf("scan venta_detalle: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}

// UpdateBalance solo toca saldo_pendiente, estado y updated_at.
func (r *SaleRepo) UpdateBalance(ctx context.Context, empresaID, id string, patch entity.BalancePatch) error {
	query := `
		UPDATE ventas SET saldo_pendiente = $3, estado = $4, updated_at = $5
		WHERE empresa_id = $1 AND id = $2`
	tag, err := r.q.Exec(ctx, query, empresaID, id, patch.SaldoPendiente, patch.Estado, patch.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update saldo venta: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update saldo venta: %s no existe", id)
	}
	return nil
}

// List ventas filtradas, más recientes primero.
func (r *SaleRepo) List(ctx context.Context, empresaID string, f repository.DocumentFilter) ([]*entity.Sale, error) {
	w := newWhere("v.empresa_id", empresaID)
	if f.ContraparteID != "" {
		w.add("v.cliente_id =", f.ContraparteID)
	}
	if f.SucursalID != "" {
		w.add("v.sucursal_id =", f.SucursalID)
	}
	if f.Tipo != "" {
		w.add("v.tipo_venta =", f.Tipo)
	}
	if f.Estado != "" {
		w.add("v.estado =", f.Estado)
	}
	if f.Desde != nil {
		w.add("v.fecha_venta >=", *f.Desde)
	}
	if f.Hasta != nil {
		w.add("v.fecha_venta <=", *f.Hasta)
	}
	query := saleSelect + w.String() + ` ORDER BY v.fecha_venta DESC, v.created_at DESC`
	query += w.paginate(f.Limit, f.Offset)
	return r.queryList(ctx, "list ventas", query, w.args...)
}

// ListCredits cuentas por cobrar: ventas a crédito, por vencimiento (NULL al final) y fecha.
func (r *SaleRepo) ListCredits(ctx context.Context, empresaID string, f repository.CreditFilter) ([]*entity.Sale, error) {
	w := newWhere("v.empresa_id", empresaID)
	if f.ContraparteID != "" {
		w.add("v.cliente_id =", f.ContraparteID)
	}
	if f.SucursalID != "" {
		w.add("v.sucursal_id =", f.SucursalID)
	}
	creditConditions(w, "v", "tipo_venta", "fecha_venta", f)
	query := saleSelect + w.String() + ` ORDER BY v.fecha_vencimiento ASC NULLS LAST, v.fecha_venta ASC`
	return r.queryList(ctx, "list creditos cliente", query, w.args...)
}

func (r *SaleRepo) queryList(ctx context.Context, op, query string, args ...any) ([]*entity.Sale, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	list := []*entity.Sale{}
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("%s scan: %w", op, err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// CreatePayment inserta un abono de cliente.
func (r *SaleRepo) CreatePayment(ctx context.Context, p *entity.SalePayment) error {
	query := `
		INSERT INTO pagos_cliente (id, empresa_id, venta_id, cliente_id, fecha_pago, monto, metodo_pago,
			referencia, observaciones, usuario_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.EmpresaID, p.VentaID, p.ClienteID, p.FechaPago, p.Monto, p.MetodoPago,
		p.Referencia, p.Observaciones, p.UsuarioID, p.CreatedAt,
	)
	if err != nil {
		return writeError("insert pago cliente", err)
	}
	return nil
}

// ListPayments abonos de la venta por fecha de pago.
func (r *SaleRepo) ListPayments(ctx context.Context, empresaID, ventaID string) ([]*entity.SalePayment, error) {
	query := `
		SELECT id, empresa_id, venta_id, cliente_id::text, fecha_pago, monto, metodo_pago, referencia,
		       observaciones, usuario_id, created_at
		FROM pagos_cliente
		WHERE empresa_id = $1 AND venta_id = $2
		ORDER BY fecha_pago ASC, created_at ASC`
	rows, err := r.q.Query(ctx, query, empresaID, ventaID)
	if err != nil {
		return nil, fmt.Errorf("list pagos cliente: %w", err)
	}
	defer rows.Close()

	list := []*entity.SalePayment{}
	for rows.Next() {
		var p entity.SalePayment
		if err := rows.Scan(&p.ID, &p.EmpresaID, &p.VentaID, &p.ClienteID, &p.FechaPago, &p.Monto, &p.MetodoPago,
			&p.Referencia, &p.Observaciones, &p.UsuarioID, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan pago cliente: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}

func scanSale(row pgx.Row) (*entity.Sale, error) {
	var s entity.Sale
	err := row.Scan(
		&s.ID, &s.EmpresaID, &s.SucursalID, &s.ClienteID, &s.ClienteNombre, &s.UsuarioID,
		&s.TipoVenta, &s.FechaVenta, &s.FechaVencimiento, &s.NumeroDocumento, &s.Observaciones,
		&s.TotalBruto, &s.DescuentoTotal, &s.TotalNeto, &s.SaldoPendiente, &s.Estado, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
