// Package ledger contiene las reglas puras de montos y saldos de documentos
// (totales, estado inicial, aplicación de pagos). No conoce la persistencia.
package ledger

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/retail-backoffice-api/internal/domain"
	"github.com/jhoicas/retail-backoffice-api/internal/domain/entity"
)

// Escalas con que se guardan los valores: cantidades NUMERIC(14,3), precios y costos
// NUMERIC(14,4), montos de documento y pagos NUMERIC(14,2).
const (
	QuantityPlaces int32 = 3
	PricePlaces    int32 = 4
	AmountPlaces   int32 = 2
)

// FitsPlaces true si v no tiene más de places decimales significativos.
func FitsPlaces(v decimal.Decimal, places int32) bool {
	return v.Equal(v.Truncate(places))
}

// Round2 redondea a 2 decimales (montos de documento).
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// LineAmount montos de una línea: cantidad × precio (o costo) − descuento.
type LineAmount struct {
	Cantidad  decimal.Decimal
	Precio    decimal.Decimal
	Descuento decimal.Decimal
}

// Subtotal de la línea redondeado a 2 decimales.
func (l LineAmount) Subtotal() decimal.Decimal {
	return Round2(l.Cantidad.Mul(l.Precio).Sub(l.Descuento))
}

// CheckLine valida escalas de la línea n y que el descuento no supere cantidad × precio.
// priceField es el nombre del campo de precio en la petición (costo_unitario o precio_unitario).
func CheckLine(n int, priceField string, l LineAmount) error {
	if !FitsPlaces(l.Cantidad, QuantityPlaces) {
		return domain.Validationf("item %d: cantidad admite hasta %d decimales", n, QuantityPlaces)
	}
	if !FitsPlaces(l.Precio, PricePlaces) {
		return domain.Validationf("item %d: %s admite hasta %d decimales", n, priceField, PricePlaces)
	}
	if !FitsPlaces(l.Descuento, AmountPlaces) {
		return domain.Validationf("item %d: descuento admite hasta %d decimales", n, AmountPlaces)
	}
	if l.Descuento.GreaterThan(l.Cantidad.Mul(l.Precio)) {
		return domain.Validationf("item %d: el descuento no puede superar cantidad × %s", n, priceField)
	}
	return nil
}

// Totals totales de encabezado.
type Totals struct {
	Bruto     decimal.Decimal
	Descuento decimal.Decimal
	Neto      decimal.Decimal
}

// ComputeTotals bruto = Σ cantidad×precio, descuento = Σ descuento, neto = bruto − descuento.
func ComputeTotals(lines []LineAmount) Totals {
	bruto := decimal.Zero
	desc := decimal.Zero
	for _, l := range lines {
		bruto = bruto.Add(l.Cantidad.Mul(l.Precio))
		desc = desc.Add(l.Descuento)
	}
	return Totals{
		Bruto:     Round2(bruto),
		Descuento: Round2(desc),
		Neto:      Round2(bruto.Sub(desc)),
	}
}

// NormalizeTipo aplica el valor por defecto CONTADO y valida el tipo.
func NormalizeTipo(tipo string) (string, bool) {
	t := strings.ToUpper(strings.TrimSpace(tipo))
	if t == "" {
		return entity.TipoContado, true
	}
	if t != entity.TipoContado && t != entity.TipoCredito {
		return t, false
	}
	return t, true
}

// CheckOpening un documento a crédito debe nacer con algo por cobrar o pagar.
func CheckOpening(tipo string, neto decimal.Decimal) error {
	if tipo == entity.TipoCredito && !neto.IsPositive() {
		return domain.Validation("un documento a crédito debe tener total_neto mayor a 0")
	}
	return nil
}

// OpeningBalance saldo y estado al crear: CONTADO nace pagado, CREDITO nace pendiente por el neto.
func OpeningBalance(tipo string, neto decimal.Decimal) entity.BalancePatch {
	if tipo == entity.TipoCredito {
		return entity.BalancePatch{SaldoPendiente: neto, Estado: entity.EstadoPendiente}
	}
	return entity.BalancePatch{SaldoPendiente: decimal.Zero, Estado: entity.EstadoPagada}
}

// PaymentRequest datos de un abono.
type PaymentRequest struct {
	FechaPago  *time.Time
	Monto      *decimal.Decimal
	MetodoPago string
}

// CheckPayment valida un abono contra el estado actual del documento, en este orden:
// tipo CREDITO, no anulado, fecha, monto > 0 con hasta 2 decimales, saldo > 0, monto ≤ saldo.
func CheckPayment(tipo, estado string, saldo decimal.Decimal, req PaymentRequest) error {
	if tipo != entity.TipoCredito {
		return domain.Conflict("solo se pueden registrar pagos para documentos a crédito")
	}
	if estado == entity.EstadoAnulada {
		return domain.Conflict("no se pueden registrar pagos para un documento anulado")
	}
	if req.FechaPago == nil || req.FechaPago.IsZero() {
		return domain.Validation("fecha_pago es requerido")
	}
	if req.Monto == nil {
		return domain.Validation("monto es requerido")
	}
	if !req.Monto.IsPositive() {
		return domain.Validation("monto debe ser un número mayor a 0")
	}
	if !FitsPlaces(*req.Monto, AmountPlaces) {
		return domain.Validation("monto admite hasta 2 decimales")
	}
	if !saldo.IsPositive() {
		return domain.Conflict("el documento no tiene saldo pendiente")
	}
	if req.Monto.GreaterThan(saldo) {
		return domain.Conflict("el monto del pago no puede ser mayor al saldo pendiente")
	}
	return nil
}

// ApplyPayment nuevo saldo = max(0, saldo − monto); PAGADA si llega a cero, si no PARCIAL.
func ApplyPayment(saldo, monto decimal.Decimal) entity.BalancePatch {
	nuevo := Round2(saldo.Sub(monto))
	if !nuevo.IsPositive() {
		return entity.BalancePatch{SaldoPendiente: decimal.Zero, Estado: entity.EstadoPagada}
	}
	return entity.BalancePatch{SaldoPendiente: nuevo, Estado: entity.EstadoParcial}
}

// VoidedBalance estado terminal tras anular.
func VoidedBalance() entity.BalancePatch {
	return entity.BalancePatch{SaldoPendiente: decimal.Zero, Estado: entity.EstadoAnulada}
}

// NormalizeMetodoPago EFECTIVO cuando falta o no es un método conocido.
func NormalizeMetodoPago(m string) string {
	switch strings.ToUpper(strings.TrimSpace(m)) {
	case entity.MetodoEfectivo:
		return entity.MetodoEfectivo
	case entity.MetodoTransferencia:
		return entity.MetodoTransferencia
	case entity.MetodoTarjeta:
		return entity.MetodoTarjeta
	case entity.MetodoOtro:
		return entity.MetodoOtro
	}
	return entity.MetodoEfectivo
}

// IsOverdue vencido = fecha_vencimiento < now y saldo > 0.
func IsOverdue(vencimiento *time.Time, saldo decimal.Decimal, now time.Time) bool {
	return vencimiento != nil && vencimiento.Before(now) && saldo.IsPositive()
}
