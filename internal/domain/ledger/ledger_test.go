package ledger_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/retail-backoffice-api/internal/domain"
	"github.com/jhoicas/retail-backoffice-api/internal/domain/entity"
	"github.com/jhoicas/retail-backoffice-api/internal/domain/ledger"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr[T any](v T) *T { return &v }

func TestComputeTotals_BrutoDescuentoNeto(t *testing.T) {
	totals := ledger.ComputeTotals([]ledger.LineAmount{
		{Cantidad: d("3"), Precio: d("10.333"), Descuento: d("1")},
		{Cantidad: d("2"), Precio: d("5"), Descuento: d("0.5")},
	})
	assert.True(t, totals.Bruto.Equal(d("41")), "bruto=%s", totals.Bruto)
	assert.True(t, totals.Descuento.Equal(d("1.5")))
	assert.True(t, totals.Neto.Equal(d("39.5")), "neto=%s", totals.Neto)
}

func TestLineAmount_SubtotalRedondeado(t *testing.T) {
	l := ledger.LineAmount{Cantidad: d("3"), Precio: d("0.335"), Descuento: d("0")}
	assert.Equal(t, "1.01", l.Subtotal().StringFixed(2))
}

func TestOpeningBalance(t *testing.T) {
	contado := ledger.OpeningBalance(entity.TipoContado, d("100"))
	assert.True(t, contado.SaldoPendiente.IsZero())
	assert.Equal(t, entity.EstadoPagada, contado.Estado)

	credito := ledger.OpeningBalance(entity.TipoCredito, d("100"))
	assert.True(t, credito.SaldoPendiente.Equal(d("100")))
	assert.Equal(t, entity.EstadoPendiente, credito.Estado)
}

func TestNormalizeTipo(t *testing.T) {
	tipo, ok := ledger.NormalizeTipo("")
	assert.True(t, ok)
	assert.Equal(t, entity.TipoContado, tipo)

	tipo, ok = ledger.NormalizeTipo("credito")
	assert.True(t, ok)
	assert.Equal(t, entity.TipoCredito, tipo)

	_, ok = ledger.NormalizeTipo("TRUEQUE")
	assert.False(t, ok)
}

func TestCheckPayment_Orden(t *testing.T) {
	hoy := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		name   string
		tipo   string
		estado string
		saldo  string
		req    ledger.PaymentRequest
		kind   domain.Kind
	}{
		{"contado", entity.TipoContado, entity.EstadoPagada, "0", ledger.PaymentRequest{FechaPago: &hoy, Monto: ptr(d("1"))}, domain.KindConflict},
		{"anulada", entity.TipoCredito, entity.EstadoAnulada, "0", ledger.PaymentRequest{FechaPago: &hoy, Monto: ptr(d("1"))}, domain.KindConflict},
		{"sin fecha", entity.TipoCredito, entity.EstadoPendiente, "100", ledger.PaymentRequest{Monto: ptr(d("1"))}, domain.KindValidation},
		{"sin monto", entity.TipoCredito, entity.EstadoPendiente, "100", ledger.PaymentRequest{FechaPago: &hoy}, domain.KindValidation},
		{"monto cero", entity.TipoCredito, entity.EstadoPendiente, "100", ledger.PaymentRequest{FechaPago: &hoy, Monto: ptr(d("0"))}, domain.KindValidation},
		{"sin saldo", entity.TipoCredito, entity.EstadoPagada, "0", ledger.PaymentRequest{FechaPago: &hoy, Monto: ptr(d("1"))}, domain.KindConflict},
		{"excede saldo", entity.TipoCredito, entity.EstadoPendiente, "100", ledger.PaymentRequest{FechaPago: &hoy, Monto: ptr(d("150"))}, domain.KindConflict},
		{"monto con tres decimales", entity.TipoCredito, entity.EstadoPendiente, "100", ledger.PaymentRequest{FechaPago: &hoy, Monto: ptr(d("0.004"))}, domain.KindValidation},
		{"monto grande con fracción de centavo", entity.TipoCredito, entity.EstadoPendiente, "100", ledger.PaymentRequest{FechaPago: &hoy, Monto: ptr(d("99.995"))}, domain.KindValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ledger.CheckPayment(tc.tipo, tc.estado, d(tc.saldo), tc.req)
			require.Error(t, err)
			assert.Equal(t, tc.kind, domain.KindOf(err))
		})
	}

	require.NoError(t, ledger.CheckPayment(entity.TipoCredito, entity.EstadoPendiente, d("100"),
		ledger.PaymentRequest{FechaPago: &hoy, Monto: ptr(d("100"))}))
}

func TestCheckLine_EscalasYTopeDeDescuento(t *testing.T) {
	cases := []struct {
		name string
		line ledger.LineAmount
		msg  string
	}{
		{"cantidad con cuatro decimales", ledger.LineAmount{Cantidad: d("1.0001"), Precio: d("5"), Descuento: d("0")}, "cantidad admite hasta 3"},
		{"precio con cinco decimales", ledger.LineAmount{Cantidad: d("1"), Precio: d("5.00001"), Descuento: d("0")}, "costo_unitario admite hasta 4"},
		{"descuento con tres decimales", ledger.LineAmount{Cantidad: d("1"), Precio: d("5"), Descuento: d("0.001")}, "descuento admite hasta 2"},
		{"descuento mayor al bruto", ledger.LineAmount{Cantidad: d("1"), Precio: d("5"), Descuento: d("10")}, "no puede superar"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ledger.CheckLine(2, "costo_unitario", tc.line)
			require.Error(t, err)
			assert.Equal(t, domain.KindValidation, domain.KindOf(err))
			assert.Contains(t, err.Error(), "item 2")
			assert.Contains(t, err.Error(), tc.msg)
		})
	}

	// En el límite: escalas máximas y descuento igual al bruto.
	require.NoError(t, ledger.CheckLine(1, "precio_unitario",
		ledger.LineAmount{Cantidad: d("1.500"), Precio: d("3.3333"), Descuento: d("0.01")}))
	require.NoError(t, ledger.CheckLine(1, "precio_unitario",
		ledger.LineAmount{Cantidad: d("2"), Precio: d("5"), Descuento: d("10")}))
}

func TestCheckOpening(t *testing.T) {
	assert.Equal(t, domain.KindValidation, domain.KindOf(ledger.CheckOpening(entity.TipoCredito, d("-5"))))
	assert.Equal(t, domain.KindValidation, domain.KindOf(ledger.CheckOpening(entity.TipoCredito, d("0"))))
	assert.NoError(t, ledger.CheckOpening(entity.TipoCredito, d("0.01")))
	assert.NoError(t, ledger.CheckOpening(entity.TipoContado, d("0")))
}

func TestFitsPlaces(t *testing.T) {
	assert.True(t, ledger.FitsPlaces(d("10.50"), ledger.AmountPlaces))
	assert.True(t, ledger.FitsPlaces(d("10.500000"), ledger.AmountPlaces))
	assert.False(t, ledger.FitsPlaces(d("0.004"), ledger.AmountPlaces))
	assert.True(t, ledger.FitsPlaces(d("0.004"), ledger.QuantityPlaces))
}

func TestApplyPayment_MaquinaDeEstados(t *testing.T) {
	p := ledger.ApplyPayment(d("100.00"), d("40"))
	assert.Equal(t, "60.00", p.SaldoPendiente.StringFixed(2))
	assert.Equal(t, entity.EstadoParcial, p.Estado)

	p = ledger.ApplyPayment(p.SaldoPendiente, d("60"))
	assert.True(t, p.SaldoPendiente.IsZero())
	assert.Equal(t, entity.EstadoPagada, p.Estado)
}

func TestNormalizeMetodoPago(t *testing.T) {
	assert.Equal(t, entity.MetodoEfectivo, ledger.NormalizeMetodoPago(""))
	assert.Equal(t, entity.MetodoEfectivo, ledger.NormalizeMetodoPago("CHEQUE"))
	assert.Equal(t, entity.MetodoTarjeta, ledger.NormalizeMetodoPago("tarjeta"))
}

func TestIsOverdue(t *testing.T) {
	now := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	ayer := now.AddDate(0, 0, -1)
	manana := now.AddDate(0, 0, 1)
	assert.True(t, ledger.IsOverdue(&ayer, d("1"), now))
	assert.False(t, ledger.IsOverdue(&ayer, d("0"), now))
	assert.False(t, ledger.IsOverdue(&manana, d("1"), now))
	assert.False(t, ledger.IsOverdue(nil, d("1"), now))
}

func TestErrorKinds_CompatiblesConSentinels(t *testing.T) {
	err := domain.NotFound("venta no encontrada")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
	assert.False(t, errors.Is(err, domain.ErrConflict))
	assert.Equal(t, domain.KindPersistence, domain.KindOf(errors.New("boom")))
	assert.Equal(t, "error de persistencia", domain.Message(domain.Persistence("insert venta", errors.New("boom"))))
}
