package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/retail-backoffice-api/internal/domain/entity"
	"github.com/jhoicas/retail-backoffice-api/internal/domain/repository"
)

var (
	_ repository.CustomerRepository = (*CustomerRepo)(nil)
	_ repository.SupplierRepository = (*SupplierRepo)(nil)
)

// CustomerRepo implementación del puerto CustomerRepository sobre clientes.
type CustomerRepo struct {
	q Querier
}

// NewCustomerRepository construye el adaptador de persistencia para clientes.
func NewCustomerRepository(q Querier) *CustomerRepo {
	return &CustomerRepo{q: q}
}

// GetByID obtiene un cliente de la empresa. nil, nil si no existe.
func (r *CustomerRepo) GetByID(ctx context.Context, empresaID, id string) (*entity.Customer, error) {
	query := `
		SELECT id, empresa_id, nombre, nit, telefono, whatsapp, email, es_activo
		FROM clientes WHERE empresa_id = $1 AND id = $2`
	var c entity.Customer
	err := r.q.QueryRow(ctx, query, empresaID, id).Scan(
		&c.ID, &c.EmpresaID, &c.Nombre, &c.NIT, &c.Telefono, &c.WhatsApp, &c.Email, &c.Activo,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cliente: %w", err)
	}
	return &c, nil
}

// SupplierRepo implementación del puerto SupplierRepository sobre proveedores.
type SupplierRepo struct {
	q Querier
}

// NewSupplierRepository construye el adaptador de persistencia para proveedores.
func NewSupplierRepository(q Querier) *SupplierRepo {
	return &SupplierRepo{q: q}
}

// GetByID obtiene un proveedor de la empresa. nil, nil si no existe.
func (r *SupplierRepo) GetByID(ctx context.Context, empresaID, id string) (*entity.Supplier, error) {
	query := `
		SELECT id, empresa_id, nombre, nit, telefono, es_activo
		FROM proveedores WHERE empresa_id = $1 AND id = $2`
	var s entity.Supplier
	err := r.q.QueryRow(ctx, query, empresaID, id).Scan(
		&s.ID, &s.EmpresaID, &s.Nombre, &s.NIT, &s.Telefono, &s.Activo,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get proveedor: %w", err)
	}
	return &s, nil
}
