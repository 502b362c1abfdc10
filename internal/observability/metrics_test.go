package observability

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/retail-backoffice-api/internal/domain/entity"
)

func TestMetrics_ReceptorNilNoFalla(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.DocumentRecorded("compra", "crear")
		m.MovementsApplied(&entity.Movement{Tipo: entity.MovementEntrada})
		m.PaymentRecorded("venta", entity.EstadoPagada)
		m.NotificationFinished(entity.NotificacionEnviado)
		m.ObserveHTTP("GET", "/api/compras", 200, time.Millisecond)
		m.JobFinished("whatsapp:enviar", nil)
	})
}

func TestMetrics_Contadores(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.DocumentRecorded("compra", "crear")
	m.DocumentRecorded("compra", "crear")
	m.MovementsApplied(
		&entity.Movement{Tipo: entity.MovementSalida, Motivo: entity.MotivoVenta, Cantidad: decimal.NewFromInt(1)},
		nil,
		&entity.Movement{Tipo: entity.MovementSalida, Motivo: entity.MotivoVenta, Cantidad: decimal.NewFromInt(2)},
	)
	m.JobFinished("alertas:escanear", errors.New("x"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.documents.WithLabelValues("compra", "crear")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.movements.WithLabelValues(entity.MovementSalida, entity.MotivoVenta)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.jobs.WithLabelValues("alertas:escanear", "error")))
}
