// Package observability expone los colectores Prometheus del servicio.
// Todos los métodos aceptan receptor nil para que pruebas y herramientas no necesiten registrarlos.
package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jhoicas/retail-backoffice-api/internal/domain/entity"
)

// Metrics colectores de negocio y HTTP.
type Metrics struct {
	documents     *prometheus.CounterVec
	movements     *prometheus.CounterVec
	payments      *prometheus.CounterVec
	notifications *prometheus.CounterVec
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	jobs          *prometheus.CounterVec
}

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// NewMetrics registra los colectores. Con registerer nil usa el registro por defecto (una sola vez).
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		defaultOnce.Do(func() {
			defaultMetrics = buildMetrics(prometheus.DefaultRegisterer)
		})
		return defaultMetrics
	}
	return buildMetrics(registerer)
}

func buildMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		documents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "backoffice",
			Name:      "documentos_total",
			Help:      "Documentos comerciales creados o anulados.",
		}, []string{"documento", "operacion"}),
		movements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "backoffice",
			Name:      "movimientos_inventario_total",
			Help:      "Movimientos de inventario confirmados.",
		}, []string{"tipo", "motivo"}),
		payments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "backoffice",
			Name:      "pagos_total",
			Help:      "Pagos registrados contra documentos a crédito.",
		}, []string{"documento", "estado"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "backoffice",
			Name:      "notificaciones_whatsapp_total",
			Help:      "Notificaciones de WhatsApp por estado final.",
		}, []string{"estado"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "backoffice",
			Name:      "http_requests_total",
			Help:      "Peticiones HTTP por ruta y código.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "backoffice",
			Name:      "http_request_duration_seconds",
			Help:      "Latencia de peticiones HTTP.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		jobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "backoffice",
			Name:      "tareas_total",
			Help:      "Tareas de fondo ejecutadas por tipo y resultado.",
		}, []string{"tarea", "resultado"}),
	}
	reg.MustRegister(m.documents, m.movements, m.payments, m.notifications, m.httpRequests, m.httpDuration, m.jobs)
	return m
}

// DocumentRecorded cuenta una creación o anulación confirmada.
func (m *Metrics) DocumentRecorded(documento, operacion string) {
	if m == nil {
		return
	}
	m.documents.WithLabelValues(documento, operacion).Inc()
}

// MovementsApplied cuenta movimientos ya confirmados (llamar después del commit).
func (m *Metrics) MovementsApplied(movs ...*entity.Movement) {
	if m == nil {
		return
	}
	for _, mov := range movs {
		if mov == nil {
			continue
		}
		m.movements.WithLabelValues(mov.Tipo, mov.Motivo).Inc()
	}
}

// PaymentRecorded cuenta un pago con el estado resultante del documento.
func (m *Metrics) PaymentRecorded(documento, estado string) {
	if m == nil {
		return
	}
	m.payments.WithLabelValues(documento, estado).Inc()
}

// NotificationFinished cuenta una notificación por su estado final.
func (m *Metrics) NotificationFinished(estado string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(estado).Inc()
}

// ObserveHTTP registra una petición HTTP atendida.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// JobFinished cuenta una ejecución de tarea de fondo ("ok" o "error").
func (m *Metrics) JobFinished(tarea string, err error) {
	if m == nil {
		return
	}
	resultado := "ok"
	if err != nil {
		resultado = "error"
	}
	m.jobs.WithLabelValues(tarea, resultado).Inc()
}
