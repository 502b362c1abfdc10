package ports

import "context"

// MessageDrafter genera texto con un modelo de lenguaje (LM Studio/OpenAI-compatible, Anthropic, mock).
// El contexto debe llevar un timeout; el caso de uso decide qué hacer si falla.
type MessageDrafter interface {
	DraftMessage(ctx context.Context, prompt string) (string, error)
}

// SendOutcome resultado de un envío. Success=false con err=nil significa que el proveedor
// respondió con error; RawResponse lleva su cuerpo para auditoría.
type SendOutcome struct {
	Success           bool
	ProviderMessageID string
	RawResponse       string
}

// MessageSender envía un mensaje de texto por WhatsApp.
type MessageSender interface {
	SendMessage(ctx context.Context, phone, text string) (*SendOutcome, error)
}

// NotificationQueue encola la entrega de una notificación ya persistida (worker asíncrono).
type NotificationQueue interface {
	EnqueueDelivery(ctx context.Context, empresaID, notificationID string) error
}
