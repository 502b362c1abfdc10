package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/retail-backoffice-api/internal/domain/entity"
	"github.com/jhoicas/retail-backoffice-api/internal/domain/repository"
)

var _ repository.BranchRepository = (*BranchRepo)(nil)

// BranchRepo implementación del puerto BranchRepository sobre sucursales.
type BranchRepo struct {
	q Querier
}

// NewBranchRepository construye el adaptador de persistencia para sucursales.
func NewBranchRepository(q Querier) *BranchRepo {
	return &BranchRepo{q: q}
}

// GetByID obtiene una sucursal de la empresa. nil, nil si no existe o es de otra empresa.
func (r *BranchRepo) GetByID(ctx context.Context, empresaID, id string) (*entity.Branch, error) {
	query := `
		SELECT id, empresa_id, nombre, direccion, es_activo
		FROM sucursales WHERE empresa_id = $1 AND id = $2`
	var b entity.Branch
	err := r.q.QueryRow(ctx, query, empresaID, id).Scan(&b.ID, &b.EmpresaID, &b.Nombre, &b.Direccion, &b.Activo)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sucursal: %w", err)
	}
	return &b, nil
}
