package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/jhoicas/retail-backoffice-api/internal/application/ports"
)

var _ ports.NotificationQueue = (*Client)(nil)

// enqueuer lo que el cliente necesita de *asynq.Client.
type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	Close() error
}

// Client encola tareas en Redis.
type Client struct {
	client enqueuer
}

// NewClient construye el cliente asynq.
func NewClient(redisOpts asynq.RedisClientOpt) *Client {
	return &Client{client: asynq.NewClient(redisOpts)}
}

// EnqueueDelivery encola la entrega de una notificación. El ID de tarea es el de la notificación,
// así un doble encolado no produce dos envíos.
func (c *Client) EnqueueDelivery(ctx context.Context, empresaID, notificationID string) error {
	task, err := NewDeliverTask(DeliverPayload{EmpresaID: empresaID, NotificationID: notificationID})
	if err != nil {
		return fmt.Errorf("jobs: construir tarea: %w", err)
	}
	_, err = c.client.EnqueueContext(ctx, task,
		asynq.Queue(QueueDefault),
		asynq.TaskID("whatsapp:"+notificationID),
		asynq.MaxRetry(5),
		asynq.Timeout(30*time.Second),
	)
	if err != nil {
		return fmt.Errorf("jobs: encolar entrega: %w", err)
	}
	return nil
}

// EnqueueScan encola un escaneo de alertas inmediato.
func (c *Client) EnqueueScan(ctx context.Context, empresaID string) error {
	task, err := NewScanTask(ScanPayload{EmpresaID: empresaID})
	if err != nil {
		return fmt.Errorf("jobs: construir tarea: %w", err)
	}
	if _, err := c.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault), asynq.MaxRetry(3)); err != nil {
		return fmt.Errorf("jobs: encolar escaneo: %w", err)
	}
	return nil
}

// Close libera la conexión.
func (c *Client) Close() error {
	return c.client.Close()
}
