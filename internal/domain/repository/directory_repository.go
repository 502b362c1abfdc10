package repository

import (
	"context"

	"github.com/jhoicas/retail-backoffice-api/internal/domain/entity"
)

// Directorios de solo lectura: los workflows consultan existencia y estado activo,
// nunca crean ni modifican estos registros. Devuelven nil, nil si no existe en la empresa.

// BranchRepository consulta sucursales de la empresa.
type BranchRepository interface {
	GetByID(ctx context.Context, empresaID, id string) (*entity.Branch, error)
}

// ProductRepository consulta productos de la empresa.
type ProductRepository interface {
	GetByID(ctx context.Context, empresaID, id string) (*entity.Product, error)
}

// CustomerRepository consulta clientes de la empresa.
type CustomerRepository interface {
	GetByID(ctx context.Context, empresaID, id string) (*entity.Customer, error)
}

// SupplierRepository consulta proveedores de la empresa.
type SupplierRepository interface {
	GetByID(ctx context.Context, empresaID, id string) (*entity.Supplier, error)
}
