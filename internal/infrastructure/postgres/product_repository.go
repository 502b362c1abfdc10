package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/retail-backoffice-api/internal/domain/entity"
	"github.com/jhoicas/retail-backoffice-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre productos.
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos.
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// GetByID obtiene un producto de la empresa. nil, nil si no existe.
func (r *ProductRepo) GetByID(ctx context.Context, empresaID, id string) (*entity.Product, error) {
	query := `
		SELECT id, empresa_id, COALESCE(categoria_id::text, ''), sku, nombre, precio_venta,
		       precio_compra_referencia, stock_minimo_general, es_activo, created_at, updated_at
		FROM productos WHERE empresa_id = $1 AND id = $2`
	var p entity.Product
	err := r.q.QueryRow(ctx, query, empresaID, id).Scan(
		&p.ID, &p.EmpresaID, &p.CategoriaID, &p.SKU, &p.Nombre, &p.PrecioVenta,
		&p.PrecioCompraReferencia, &p.StockMinimoGeneral, &p.Activo, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get producto: %w", err)
	}
	return &p, nil
}
