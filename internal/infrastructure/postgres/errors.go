package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/retail-backoffice-api/internal/domain"
)

// Códigos SQLSTATE que tienen traducción a error de dominio.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// writeError traduce restricciones violadas a errores de dominio; el resto queda como falla
// de almacenamiento con la operación como contexto.
func writeError(op string, err error) error {
	switch pgCode(err) {
	case codeUniqueViolation:
		return domain.Conflictf("%s: el registro ya existe", op)
	case codeForeignKeyViolation:
		return domain.NotFoundf("%s: referencia inexistente", op)
	case codeCheckViolation:
		return domain.Conflictf("%s: valor fuera de rango", op)
	}
	return fmt.Errorf("%s: %w", op, err)
}
