// Package notifications registra y entrega mensajes de WhatsApp (pruebas y recordatorios de crédito).
package notifications

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jhoicas/retail-backoffice-api/internal/application/ports"
	"github.com/jhoicas/retail-backoffice-api/internal/domain"
	"github.com/jhoicas/retail-backoffice-api/internal/domain/entity"
	"github.com/jhoicas/retail-backoffice-api/internal/domain/repository"
	"github.com/jhoicas/retail-backoffice-api/internal/observability"
)

const draftTimeout = 10 * time.Second

// Options formato de montos en los mensajes.
type Options struct {
	Currency string
	Locale   string
}

// UseCase casos de uso de notificaciones.
type UseCase struct {
	repos   repository.Set
	sender  ports.MessageSender
	drafter ports.MessageDrafter
	queue   ports.NotificationQueue
	clock   ports.Clock
	metrics *observability.Metrics
	log     zerolog.Logger
	printer *message.Printer
	opts    Options
}

// NewUseCase construye el caso de uso. drafter y queue son opcionales: sin drafter usar_ia
// cae a la plantilla; sin queue la entrega es en línea.
func NewUseCase(
	repos repository.Set,
	sender ports.MessageSender,
	drafter ports.MessageDrafter,
	queue ports.NotificationQueue,
	clock ports.Clock,
	metrics *observability.Metrics,
	log zerolog.Logger,
	opts Options,
) *UseCase {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if opts.Currency == "" {
		opts.Currency = "Q"
	}
	tag, err := language.Parse(opts.Locale)
	if err != nil {
		tag = language.MustParse("es-GT")
	}
	return &UseCase{
		repos:   repos,
		sender:  sender,
		drafter: drafter,
		queue:   queue,
		clock:   clock,
		metrics: metrics,
		log:     log,
		printer: message.NewPrinter(tag),
		opts:    opts,
	}
}

// SendTestInput mensaje de prueba hacia un número arbitrario.
type SendTestInput struct {
	EmpresaID string
	UsuarioID string
	Telefono  string
	Mensaje   string
}

// SendTest registra y entrega un mensaje libre dirigido al propio usuario (tipo ADMIN).
func (uc *UseCase) SendTest(ctx context.Context, in SendTestInput) (*entity.Notification, error) {
	telefono := strings.TrimSpace(in.Telefono)
	mensaje := strings.TrimSpace(in.Mensaje)
	if telefono == "" || mensaje == "" {
		return nil, domain.Validation("telefono_destino y mensaje son requeridos")
	}
	var destino *string
	if in.UsuarioID != "" {
		u := in.UsuarioID
		destino = &u
	}
	n := uc.newNotification(in.EmpresaID, entity.DestinatarioAdmin, telefono, entity.PlantillaTest, mensaje)
	n.UsuarioDestinoID = destino
	return uc.persistAndDispatch(ctx, n)
}

// ReminderInput recordatorio de saldo de una venta a crédito.
type ReminderInput struct {
	EmpresaID string
	UsuarioID string
	VentaID   string
	UsarIA    bool
}

// ReminderPreview texto que se enviaría, sin persistir nada.
type ReminderPreview struct {
	VentaID         string `json:"venta_id"`
	ClienteID       string `json:"cliente_id"`
	ClienteNombre   string `json:"cliente_nombre"`
	TelefonoDestino string `json:"telefono_destino"`
	Mensaje         string `json:"mensaje"`
	GeneradoConIA   bool   `json:"generado_con_ia"`
}

// SendCustomerReminder arma el recordatorio (plantilla o IA) y lo entrega al cliente.
func (uc *UseCase) SendCustomerReminder(ctx context.Context, in ReminderInput) (*entity.Notification, error) {
	preview, err := uc.PreviewCustomerReminder(ctx, in)
	if err != nil {
		return nil, err
	}
	n := uc.newNotification(in.EmpresaID, entity.DestinatarioCliente, preview.TelefonoDestino,
		entity.PlantillaRecordatorioCliente, preview.Mensaje)
	clienteID := preview.ClienteID
	n.ClienteID = &clienteID
	return uc.persistAndDispatch(ctx, n)
}

// PreviewCustomerReminder aplica las mismas validaciones que SendCustomerReminder.
func (uc *UseCase) PreviewCustomerReminder(ctx context.Context, in ReminderInput) (*ReminderPreview, error) {
	if in.VentaID == "" {
		return nil, domain.Validation("venta_id es requerido")
	}
	sale, err := uc.repos.Sales.GetByID(ctx, in.EmpresaID, in.VentaID)
	if err != nil {
		return nil, domain.Persistence("consultar venta", err)
	}
	if sale == nil {
		return nil, domain.NotFound("venta no encontrada")
	}
	if sale.TipoVenta != entity.TipoCredito {
		return nil, domain.Validation("la venta no es a crédito")
	}
	if sale.ClienteID == nil || *sale.ClienteID == "" {
		return nil, domain.Validation("la venta no tiene cliente asociado")
	}
	if !sale.SaldoPendiente.IsPositive() {
		return nil, domain.Validation("la venta no tiene saldo pendiente")
	}
	customer, err := uc.repos.Customers.GetByID(ctx, in.EmpresaID, *sale.ClienteID)
	if err != nil {
		return nil, domain.Persistence("consultar cliente", err)
	}
	if customer == nil {
		return nil, domain.NotFound("cliente no encontrado")
	}
	telefono := customer.ContactPhone()
	if telefono == "" {
		return nil, domain.Validation("el cliente no tiene número de WhatsApp/teléfono configurado")
	}

	text := uc.reminderText(customer, sale)
	usedAI := false
	if in.UsarIA {
		if drafted, ok := uc.draft(ctx, customer, text); ok {
			text = drafted
			usedAI = true
		}
	}
	return &ReminderPreview{
		VentaID:         sale.ID,
		ClienteID:       customer.ID,
		ClienteNombre:   customer.Nombre,
		TelefonoDestino: telefono,
		Mensaje:         text,
		GeneradoConIA:   usedAI,
	}, nil
}

func (uc *UseCase) reminderText(c *entity.Customer, s *entity.Sale) string {
	vence := ""
	if s.FechaVencimiento != nil {
		vence = formatDate(*s.FechaVencimiento)
	}
	return fmt.Sprintf(
		"Hola %s, le recordamos que tiene un saldo pendiente de %s%s por la venta #%s del %s. "+
			"Fecha de vencimiento: %s. Por favor, ponerse al día para evitar inconvenientes.",
		c.Nombre, uc.opts.Currency, uc.FormatAmount(s.SaldoPendiente.InexactFloat64()),
		s.ID, formatDate(s.FechaVenta), vence,
	)
}

// FormatAmount monto con dos decimales y separadores según la configuración regional.
func (uc *UseCase) FormatAmount(v float64) string {
	return uc.printer.Sprintf("%.2f", v)
}

func formatDate(t time.Time) string { return t.Format("02/01/2006") }

// draft pide al modelo una versión cordial del recordatorio. Cualquier falla usa la plantilla.
func (uc *UseCase) draft(ctx context.Context, c *entity.Customer, base string) (string, bool) {
	if uc.drafter == nil {
		return "", false
	}
	ctx, cancel := context.WithTimeout(ctx, draftTimeout)
	defer cancel()

	prompt := "Redacta un mensaje breve y cordial de WhatsApp en español para el cliente " + c.Nombre +
		". Debe conservar todos los datos (montos, número de venta y fechas) del siguiente texto, sin inventar información:\n\n" + base
	text, err := uc.drafter.DraftMessage(ctx, prompt)
	if err != nil {
		uc.log.Warn().Err(err).Str("cliente_id", c.ID).Msg("no se pudo redactar con IA, se usa la plantilla")
		return "", false
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", false
	}
	return text, true
}

func (uc *UseCase) newNotification(empresaID, tipo, telefono, plantilla, mensaje string) *entity.Notification {
	now := uc.clock.Now()
	return &entity.Notification{
		ID:               uuid.NewString(),
		EmpresaID:        empresaID,
		TipoDestinatario: tipo,
		TelefonoDestino:  telefono,
		PlantillaCodigo:  plantilla,
		MensajeEnviado:   mensaje,
		FechaEnvio:       now,
		Estado:           entity.NotificacionPendiente,
		CreatedAt:        now,
	}
}

// persistAndDispatch guarda la notificación PENDIENTE y la entrega en línea o la encola.
// Si el encolado falla se intenta la entrega en línea.
func (uc *UseCase) persistAndDispatch(ctx context.Context, n *entity.Notification) (*entity.Notification, error) {
	if err := uc.repos.Notifications.Create(ctx, n); err != nil {
		return nil, domain.Persistence("crear notificación", err)
	}
	if uc.queue != nil {
		err := uc.queue.EnqueueDelivery(ctx, n.EmpresaID, n.ID)
		if err == nil {
			return n, nil
		}
		uc.log.Error().Err(err).Str("notificacion_id", n.ID).Msg("no se pudo encolar la entrega, se envía en línea")
	}
	return uc.deliver(ctx, n)
}

// Deliver entrega una notificación PENDIENTE. Las que ya tienen estado final se devuelven sin cambios,
// así un reintento del worker no duplica el envío.
func (uc *UseCase) Deliver(ctx context.Context, empresaID, id string) (*entity.Notification, error) {
	n, err := uc.Get(ctx, empresaID, id)
	if err != nil {
		return nil, err
	}
	if n.Estado != entity.NotificacionPendiente {
		return n, nil
	}
	return uc.deliver(ctx, n)
}

func (uc *UseCase) deliver(ctx context.Context, n *entity.Notification) (*entity.Notification, error) {
	estado := entity.NotificacionEnviado
	var detalle *string

	outcome, err := uc.send(ctx, n)
	switch {
	case err != nil:
		estado = entity.NotificacionError
		msg := err.Error()
		detalle = &msg
	case !outcome.Success:
		estado = entity.NotificacionError
		raw := outcome.RawResponse
		if raw == "" {
			raw = "{}"
		}
		detalle = &raw
	}

	if err := uc.repos.Notifications.UpdateStatus(ctx, n.EmpresaID, n.ID, estado, detalle); err != nil {
		return nil, domain.Persistence("actualizar notificación", err)
	}
	n.Estado = estado
	n.ErrorDetalle = detalle
	uc.metrics.NotificationFinished(estado)

	ev := uc.log.Info()
	if estado == entity.NotificacionError {
		ev = uc.log.Warn()
	}
	ev.Str("notificacion_id", n.ID).Str("plantilla", n.PlantillaCodigo).Str("estado", estado).Msg("notificación procesada")
	return n, nil
}

func (uc *UseCase) send(ctx context.Context, n *entity.Notification) (*ports.SendOutcome, error) {
	if uc.sender == nil {
		return nil, fmt.Errorf("whatsapp no configurado")
	}
	outcome, err := uc.sender.SendMessage(ctx, n.TelefonoDestino, n.MensajeEnviado)
	if err != nil {
		return nil, err
	}
	if outcome == nil {
		return &ports.SendOutcome{}, nil
	}
	return outcome, nil
}

// List notificaciones filtradas, más recientes primero.
func (uc *UseCase) List(ctx context.Context, empresaID string, f repository.NotificationFilter) ([]*entity.Notification, error) {
	f.Estado = strings.ToUpper(f.Estado)
	f.TipoDestinatario = strings.ToUpper(f.TipoDestinatario)
	list, err := uc.repos.Notifications.List(ctx, empresaID, f)
	if err != nil {
		return nil, domain.Persistence("listar notificaciones", err)
	}
	if list == nil {
		list = []*entity.Notification{}
	}
	return list, nil
}

// Get notificación por id.
func (uc *UseCase) Get(ctx context.Context, empresaID, id string) (*entity.Notification, error) {
	n, err := uc.repos.Notifications.GetByID(ctx, empresaID, id)
	if err != nil {
		return nil, domain.Persistence("consultar notificación", err)
	}
	if n == nil {
		return nil, domain.NotFound("notificación no encontrada")
	}
	return n, nil
}
