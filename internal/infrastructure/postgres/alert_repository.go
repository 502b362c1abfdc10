package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/retail-backoffice-api/internal/domain/entity"
	"github.com/jhoicas/retail-backoffice-api/internal/domain/repository"
)

var _ repository.AlertRepository = (*AlertRepo)(nil)

// AlertRepo implementación del puerto AlertRepository sobre alertas_configuracion y alertas_eventos.
type AlertRepo struct {
	q Querier
}

// NewAlertRepository construye el adaptador de persistencia para alertas.
func NewAlertRepository(q Querier) *AlertRepo {
	return &AlertRepo{q: q}
}

// ListConfig configuración de la empresa ordenada por tipo.
func (r *AlertRepo) ListConfig(ctx context.Context, empresaID string) ([]*entity.AlertConfig, error) {
	query := `
		SELECT id, empresa_id, tipo_alerta, nombre, descripcion, dias_antes_vencimiento, periodo_sin_rotacion_dias,
		       enviar_app, enviar_email, enviar_whatsapp, activo
		FROM alertas_configuracion WHERE empresa_id = $1
		ORDER BY tipo_alerta`
	rows, err := r.q.Query(ctx, query, empresaID)
	if err != nil {
		return nil, fmt.Errorf("list alertas_configuracion: %w", err)
	}
	defer rows.Close()

	list := []*entity.AlertConfig{}
	for rows.Next() {
		var c entity.AlertConfig
		if err := rows.Scan(&c.ID, &c.EmpresaID, &c.TipoAlerta, &c.Nombre, &c.Descripcion, &c.DiasAntesVencimiento,
			&c.PeriodoSinRotacionDias, &c.EnviarApp, &c.EnviarEmail, &c.EnviarWhatsApp, &c.Activo); err != nil {
			return nil, fmt.Errorf("scan alertas_configuracion: %w", err)
		}
		list = append(list, &c)
	}
	return list, rows.Err()
}

// DeleteConfig borra toda la configuración de la empresa (se reemplaza completa).
func (r *AlertRepo) DeleteConfig(ctx context.Context, empresaID string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM alertas_configuracion WHERE empresa_id = $1`, empresaID); err != nil {
		return fmt.Errorf("delete alertas_configuracion: %w", err)
	}
	return nil
}

// InsertConfig inserta una fila de configuración.
func (r *AlertRepo) InsertConfig(ctx context.Context, c *entity.AlertConfig) error {
	query := `
		INSERT INTO alertas_configuracion (id, empresa_id, tipo_alerta, nombre, descripcion, dias_antes_vencimiento,
			periodo_sin_rotacion_dias, enviar_app, enviar_email, enviar_whatsapp, activo)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		c.ID, c.EmpresaID, c.TipoAlerta, c.Nombre, c.Descripcion, c.DiasAntesVencimiento,
		c.PeriodoSinRotacionDias, c.EnviarApp, c.EnviarEmail, c.EnviarWhatsApp, c.Activo,
	)
	if err != nil {
		return fmt.Errorf("insert alertas_configuracion: %w", err)
	}
	return nil
}

// CreateEvent inserta el evento salvo que ya exista uno sin leer con el mismo tipo y referencia
// (índice único parcial uq_alertas_eventos_pendientes).
func (r *AlertRepo) CreateEvent(ctx context.Context, e *entity.AlertEvent) (bool, error) {
	query := `
		INSERT INTO alertas_eventos (id, empresa_id, tipo_alerta, titulo, mensaje, sucursal_id, producto_id,
			referencia_tipo, referencia_id, usuario_destino_id, leida, fecha_leida, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (empresa_id, tipo_alerta, referencia_tipo, referencia_id) WHERE NOT leida DO NOTHING`
	tag, err := r.q.Exec(ctx, query,
		e.ID, e.EmpresaID, e.TipoAlerta, e.Titulo, e.Mensaje, e.SucursalID, e.ProductoID,
		e.ReferenciaTipo, e.ReferenciaID, e.UsuarioDestinoID, e.Leida, e.FechaLeida, e.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("insert alerta_evento: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

const alertEventColumns = `
	id, empresa_id, tipo_alerta, titulo, mensaje, sucursal_id::text, producto_id::text, referencia_tipo,
	referencia_id, usuario_destino_id::text, leida, fecha_leida, created_at`

// GetEvent obtiene un evento. nil, nil si no existe.
func (r *AlertRepo) GetEvent(ctx context.Context, empresaID, id string) (*entity.AlertEvent, error) {
	query := `SELECT ` + alertEventColumns + ` FROM alertas_eventos WHERE empresa_id = $1 AND id = $2`
	e, err := scanAlertEvent(r.q.QueryRow(ctx, query, empresaID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get alerta_evento: %w", err)
	}
	return e, nil
}

// ListEvents eventos filtrados, más recientes primero.
func (r *AlertRepo) ListEvents(ctx context.Context, empresaID string, f repository.AlertEventFilter) ([]*entity.AlertEvent, error) {
	w := newWhere("empresa_id", empresaID)
	if f.TipoAlerta != "" {
		w.add("tipo_alerta =", f.TipoAlerta)
	}
	if f.Leida != nil {
		w.add("leida =", *f.Leida)
	}
	if f.Desde != nil {
		w.add("created_at >=", *f.Desde)
	}
	if f.Hasta != nil {
		w.add("created_at <=", *f.Hasta)
	}
	query := `SELECT ` + alertEventColumns + ` FROM alertas_eventos` + w.String() + ` ORDER BY created_at DESC, id DESC`

	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list alertas_eventos: %w", err)
	}
	defer rows.Close()

	list := []*entity.AlertEvent{}
	for rows.Next() {
		e, err := scanAlertEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("list alertas_eventos scan: %w", err)
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// MarkEventRead marca el evento como leído. false si no existe en la empresa.
func (r *AlertRepo) MarkEventRead(ctx context.Context, empresaID, id string, at time.Time) (bool, error) {
	query := `
		UPDATE alertas_eventos SET leida = TRUE, fecha_leida = COALESCE(fecha_leida, $3)
		WHERE empresa_id = $1 AND id = $2`
	tag, err := r.q.Exec(ctx, query, empresaID, id, at)
	if err != nil {
		return false, fmt.Errorf("marcar alerta leida: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ListCompaniesWithActiveConfig empresas con alguna alerta activa.
func (r *AlertRepo) ListCompaniesWithActiveConfig(ctx context.Context) ([]string, error) {
	rows, err := r.q.Query(ctx, `
		SELECT DISTINCT empresa_id::text FROM alertas_configuracion
		WHERE activo ORDER BY 1`)
	if err != nil {
		return nil, fmt.Errorf("list empresas con alertas: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan empresa: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanAlertEvent(row pgx.Row) (*entity.AlertEvent, error) {
	var e entity.AlertEvent
	err := row.Scan(
		&e.ID, &e.EmpresaID, &e.TipoAlerta, &e.Titulo, &e.Mensaje, &e.SucursalID, &e.ProductoID, &e.ReferenciaTipo,
		&e.ReferenciaID, &e.UsuarioDestinoID, &e.Leida, &e.FechaLeida, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
