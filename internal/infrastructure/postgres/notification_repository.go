package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/retail-backoffice-api/internal/domain/entity"
	"github.com/jhoicas/retail-backoffice-api/internal/domain/repository"
)

var _ repository.NotificationRepository = (*NotificationRepo)(nil)

// NotificationRepo implementación del puerto NotificationRepository sobre whatsapp_notificaciones.
type NotificationRepo struct {
	q Querier
}

// NewNotificationRepository construye el adaptador de persistencia para notificaciones.
func NewNotificationRepository(q Querier) *NotificationRepo {
	return &NotificationRepo{q: q}
}

const notificationColumns = `
	id, empresa_id, tipo_destinatario, cliente_id::text, proveedor_id::text, usuario_destino_id::text,
	telefono_destino, plantilla_codigo, mensaje_enviado, fecha_envio, estado, error_detalle, created_at`

// Create persiste la notificación (normalmente en PENDIENTE).
func (r *NotificationRepo) Create(ctx context.Context, n *entity.Notification) error {
	query := `
		INSERT INTO whatsapp_notificaciones (id, empresa_id, tipo_destinatario, cliente_id, proveedor_id,
			usuario_destino_id, telefono_destino, plantilla_codigo, mensaje_enviado, fecha_envio, estado,
			error_detalle, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		n.ID, n.EmpresaID, n.TipoDestinatario, n.ClienteID, n.ProveedorID, n.UsuarioDestinoID,
		n.TelefonoDestino, n.PlantillaCodigo, n.MensajeEnviado, n.FechaEnvio, n.Estado, n.ErrorDetalle, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert notificacion: %w", err)
	}
	return nil
}

// UpdateStatus registra el resultado del envío.
func (r *NotificationRepo) UpdateStatus(ctx context.Context, empresaID, id, estado string, errorDetalle *string) error {
	query := `
		UPDATE whatsapp_notificaciones SET estado = $3, error_detalle = $4
		WHERE empresa_id = $1 AND id = $2`
	tag, err := r.q.Exec(ctx, query, empresaID, id, estado, errorDetalle)
	if err != nil {
		return fmt.Errorf("update notificacion: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update notificacion: %s no existe", id)
	}
	return nil
}

// GetByID obtiene una notificación. nil, nil si no existe.
func (r *NotificationRepo) GetByID(ctx context.Context, empresaID, id string) (*entity.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM whatsapp_notificaciones WHERE empresa_id = $1 AND id = $2`
	n, err := scanNotification(r.q.QueryRow(ctx, query, empresaID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get notificacion: %w", err)
	}
	return n, nil
}

// List notificaciones filtradas, más recientes primero.
func (r *NotificationRepo) List(ctx context.Context, empresaID string, f repository.NotificationFilter) ([]*entity.Notification, error) {
	w := newWhere("empresa_id", empresaID)
	if f.Estado != "" {
		w.add("estado =", f.Estado)
	}
	if f.TipoDestinatario != "" {
		w.add("tipo_destinatario =", f.TipoDestinatario)
	}
	if f.Desde != nil {
		w.add("fecha_envio >=", *f.Desde)
	}
	if f.Hasta != nil {
		w.add("fecha_envio <=", *f.Hasta)
	}
	query := `SELECT ` + notificationColumns + ` FROM whatsapp_notificaciones` + w.String() +
		` ORDER BY fecha_envio DESC, id DESC`

	rows, err := r.q.Query(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list notificaciones: %w", err)
	}
	defer rows.Close()

	list := []*entity.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("list notificaciones scan: %w", err)
		}
		list = append(list, n)
	}
	return list, rows.Err()
}

func scanNotification(row pgx.Row) (*entity.Notification, error) {
	var n entity.Notification
	err := row.Scan(
		&n.ID, &n.EmpresaID, &n.TipoDestinatario, &n.ClienteID, &n.ProveedorID, &n.UsuarioDestinoID,
		&n.TelefonoDestino, &n.PlantillaCodigo, &n.MensajeEnviado, &n.FechaEnvio, &n.Estado, &n.ErrorDetalle, &n.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &n, nil
}
