package notifications_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/retail-backoffice-api/internal/application/inventory"
	"github.com/jhoicas/retail-backoffice-api/internal/application/notifications"
	"github.com/jhoicas/retail-backoffice-api/internal/application/ports"
	"github.com/jhoicas/retail-backoffice-api/internal/application/sales"
	"github.com/jhoicas/retail-backoffice-api/internal/domain"
	"github.com/jhoicas/retail-backoffice-api/internal/domain/entity"
	"github.com/jhoicas/retail-backoffice-api/internal/domain/repository"
	"github.com/jhoicas/retail-backoffice-api/internal/infrastructure/memstore"
)

// ──────────────────────────────────────────────────────────────────────────────
// Dobles de prueba
// ──────────────────────────────────────────────────────────────────────────────

type fakeSender struct {
	mu      sync.Mutex
	calls   []string
	outcome *ports.SendOutcome
	err     error
}

func (f *fakeSender) SendMessage(_ context.Context, phone, text string) (*ports.SendOutcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, phone+"|"+text)
	if f.err != nil {
		return nil, f.err
	}
	if f.outcome != nil {
		return f.outcome, nil
	}
	return &ports.SendOutcome{Success: true, ProviderMessageID: "wamid.1"}, nil
}

type fakeDrafter struct {
	text string
	err  error
}

func (f fakeDrafter) DraftMessage(context.Context, string) (string, error) { return f.text, f.err }

type fakeQueue struct {
	ids []string
	err error
}

func (f *fakeQueue) EnqueueDelivery(_ context.Context, _, id string) error {
	if f.err != nil {
		return f.err
	}
	f.ids = append(f.ids, id)
	return nil
}

var (
	fixedNow   = time.Date(2026, 7, 1, 8, 0, 0, 0, time.UTC)
	fechaVenta = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	vence      = time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)
)

func newUseCase(s *memstore.Store, sender ports.MessageSender, drafter ports.MessageDrafter, queue ports.NotificationQueue) *notifications.UseCase {
	return notifications.NewUseCase(s.Set(), sender, drafter, queue, ports.FixedClock{T: fixedNow}, nil, zerolog.Nop(),
		notifications.Options{Currency: "Q", Locale: "en-US"})
}

func createSale(t *testing.T, s *memstore.Store, tipo, cliente string) *sales.Detail {
	t.Helper()
	clock := ports.FixedClock{T: fixedNow}
	uc := sales.NewUseCase(s, s.Set(), inventory.NewStockMutator(clock), clock, nil)
	qty := decimal.NewFromInt(2)
	precio := decimal.NewFromInt(30)
	in := sales.CreateInput{
		EmpresaID:  memstore.EmpresaDemo,
		SucursalID: memstore.SucursalCentro,
		ClienteID:  cliente,
		TipoVenta:  tipo,
		FechaVenta: &fechaVenta,
		Items:      []sales.LineInput{{ProductoID: memstore.ProductoCafe, UnidadMedidaID: "und", Cantidad: &qty, PrecioUnitario: &precio}},
	}
	if tipo == entity.TipoCredito {
		in.FechaVencimiento = &vence
	}
	res, err := uc.CreateSale(context.Background(), in)
	require.NoError(t, err)
	return res
}

// ──────────────────────────────────────────────────────────────────────────────
// Mensaje de prueba
// ──────────────────────────────────────────────────────────────────────────────

func TestSendTest_EnviadoYError(t *testing.T) {
	s := memstore.NewDemo()
	ctx := context.Background()

	sender := &fakeSender{}
	n, err := newUseCase(s, sender, nil, nil).SendTest(ctx, notifications.SendTestInput{
		EmpresaID: memstore.EmpresaDemo, UsuarioID: memstore.UsuarioDemo, Telefono: "50211112222", Mensaje: "hola",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.NotificacionEnviado, n.Estado)
	assert.Equal(t, entity.DestinatarioAdmin, n.TipoDestinatario)
	assert.Equal(t, entity.PlantillaTest, n.PlantillaCodigo)
	require.NotNil(t, n.UsuarioDestinoID)
	assert.Equal(t, memstore.UsuarioDemo, *n.UsuarioDestinoID)
	assert.Equal(t, []string{"50211112222|hola"}, sender.calls)

	rejected := &fakeSender{outcome: &ports.SendOutcome{Success: false, RawResponse: `{"error":"invalid"}`}}
	n, err = newUseCase(s, rejected, nil, nil).SendTest(ctx, notifications.SendTestInput{
		EmpresaID: memstore.EmpresaDemo, Telefono: "1", Mensaje: "x",
	})
	require.NoError(t, err, "una falla del proveedor se registra, no se propaga")
	assert.Equal(t, entity.NotificacionError, n.Estado)
	require.NotNil(t, n.ErrorDetalle)
	assert.Equal(t, `{"error":"invalid"}`, *n.ErrorDetalle)

	broken := &fakeSender{err: errors.New("timeout")}
	n, err = newUseCase(s, broken, nil, nil).SendTest(ctx, notifications.SendTestInput{
		EmpresaID: memstore.EmpresaDemo, Telefono: "1", Mensaje: "x",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.NotificacionError, n.Estado)
	assert.Equal(t, "timeout", *n.ErrorDetalle)

	stored, err := newUseCase(s, nil, nil, nil).Get(ctx, memstore.EmpresaDemo, n.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.NotificacionError, stored.Estado)

	_, err = newUseCase(s, sender, nil, nil).SendTest(ctx, notifications.SendTestInput{EmpresaID: memstore.EmpresaDemo, Telefono: "1"})
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

// ──────────────────────────────────────────────────────────────────────────────
// Recordatorio de crédito
// ──────────────────────────────────────────────────────────────────────────────

func TestSendCustomerReminder_Plantilla(t *testing.T) {
	s := memstore.NewDemo()
	sale := createSale(t, s, entity.TipoCredito, memstore.ClienteAna)
	sender := &fakeSender{}

	n, err := newUseCase(s, sender, nil, nil).SendCustomerReminder(context.Background(), notifications.ReminderInput{
		EmpresaID: memstore.EmpresaDemo, VentaID: sale.ID,
	})
	require.NoError(t, err)

	want := "Hola Ana Pérez, le recordamos que tiene un saldo pendiente de Q60.00 por la venta #" + sale.ID +
		" del 01/06/2026. Fecha de vencimiento: 30/06/2026. Por favor, ponerse al día para evitar inconvenientes."
	assert.Equal(t, want, n.MensajeEnviado)
	assert.Equal(t, "50255550000", n.TelefonoDestino)
	assert.Equal(t, entity.DestinatarioCliente, n.TipoDestinatario)
	assert.Equal(t, entity.PlantillaRecordatorioCliente, n.PlantillaCodigo)
	require.NotNil(t, n.ClienteID)
	assert.Equal(t, memstore.ClienteAna, *n.ClienteID)
	assert.Equal(t, entity.NotificacionEnviado, n.Estado)
}

func TestPreviewCustomerReminder_IAConRespaldo(t *testing.T) {
	s := memstore.NewDemo()
	sale := createSale(t, s, entity.TipoCredito, memstore.ClienteAna)
	ctx := context.Background()
	in := notifications.ReminderInput{EmpresaID: memstore.EmpresaDemo, VentaID: sale.ID, UsarIA: true}

	p, err := newUseCase(s, nil, fakeDrafter{text: "  Hola Ana, ¿nos ayuda con su saldo?  "}, nil).PreviewCustomerReminder(ctx, in)
	require.NoError(t, err)
	assert.True(t, p.GeneradoConIA)
	assert.Equal(t, "Hola Ana, ¿nos ayuda con su saldo?", p.Mensaje)

	p, err = newUseCase(s, nil, fakeDrafter{err: errors.New("modelo caído")}, nil).PreviewCustomerReminder(ctx, in)
	require.NoError(t, err)
	assert.False(t, p.GeneradoConIA)
	assert.Contains(t, p.Mensaje, "saldo pendiente de Q60.00")

	list, err := newUseCase(s, nil, nil, nil).List(ctx, memstore.EmpresaDemo, repository.NotificationFilter{})
	require.NoError(t, err)
	assert.Empty(t, list, "la vista previa no persiste nada")
}

func TestCustomerReminder_Validaciones(t *testing.T) {
	s := memstore.NewDemo()
	ctx := context.Background()
	contado := createSale(t, s, entity.TipoContado, memstore.ClienteAna)
	anonima := createSale(t, s, entity.TipoCredito, "")
	uc := newUseCase(s, &fakeSender{}, nil, nil)

	cases := []struct {
		name  string
		venta string
		kind  domain.Kind
	}{
		{"sin venta", "", domain.KindValidation},
		{"venta inexistente", "nada", domain.KindNotFound},
		{"venta de contado", contado.ID, domain.KindValidation},
		{"venta sin cliente", anonima.ID, domain.KindValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.SendCustomerReminder(ctx, notifications.ReminderInput{EmpresaID: memstore.EmpresaDemo, VentaID: tc.venta})
			require.Error(t, err)
			assert.Equal(t, tc.kind, domain.KindOf(err))
		})
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Entrega asíncrona
// ──────────────────────────────────────────────────────────────────────────────

func TestQueue_EncolaYDeliverEsIdempotente(t *testing.T) {
	s := memstore.NewDemo()
	ctx := context.Background()
	sender := &fakeSender{}
	queue := &fakeQueue{}
	uc := newUseCase(s, sender, nil, queue)

	n, err := uc.SendTest(ctx, notifications.SendTestInput{EmpresaID: memstore.EmpresaDemo, Telefono: "1", Mensaje: "x"})
	require.NoError(t, err)
	assert.Equal(t, entity.NotificacionPendiente, n.Estado)
	assert.Equal(t, []string{n.ID}, queue.ids)
	assert.Empty(t, sender.calls)

	delivered, err := uc.Deliver(ctx, memstore.EmpresaDemo, n.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.NotificacionEnviado, delivered.Estado)

	_, err = uc.Deliver(ctx, memstore.EmpresaDemo, n.ID)
	require.NoError(t, err)
	assert.Len(t, sender.calls, 1, "un reintento no reenvía")

	failing := newUseCase(s, sender, nil, &fakeQueue{err: errors.New("redis caído")})
	n, err = failing.SendTest(ctx, notifications.SendTestInput{EmpresaID: memstore.EmpresaDemo, Telefono: "2", Mensaje: "y"})
	require.NoError(t, err)
	assert.Equal(t, entity.NotificacionEnviado, n.Estado, "si no se puede encolar se entrega en línea")
}

func TestFormatAmount_UsaSeparadoresRegionales(t *testing.T) {
	uc := newUseCase(memstore.New(), nil, nil, nil)
	assert.Equal(t, "1,234.50", uc.FormatAmount(1234.5))
}
