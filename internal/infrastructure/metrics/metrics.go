package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/iho/cambiodesk/internal/domain"
)

// Metrics holds the desk's business-level Prometheus metrics. It
// implements usecase.MetricsRecorder.
type Metrics struct {
	TransactionsRegistered *prometheus.CounterVec
	TransactionsEdited     *prometheus.CounterVec
	TransactionsDeleted    *prometheus.CounterVec
	TransactionsRejected   *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		TransactionsRegistered: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cambiodesk_transactions_registered_total",
				Help: "Total number of transactions registered",
			},
			[]string{"kind"},
		),
		TransactionsEdited: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cambiodesk_transactions_edited_total",
				Help: "Total number of transactions edited",
			},
			[]string{"kind"},
		),
		TransactionsDeleted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cambiodesk_transactions_deleted_total",
				Help: "Total number of transactions deleted",
			},
			[]string{"kind"},
		),
		TransactionsRejected: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cambiodesk_transactions_rejected_total",
				Help: "Total number of rejected transaction mutations",
			},
			[]string{"kind"},
		),
	}
}

// TransactionRegistered records a successful registration.
func (m *Metrics) TransactionRegistered(kind domain.Kind) {
	m.TransactionsRegistered.WithLabelValues(string(kind)).Inc()
}

// TransactionEdited records a successful edit.
func (m *Metrics) TransactionEdited(kind domain.Kind) {
	m.TransactionsEdited.WithLabelValues(string(kind)).Inc()
}

// TransactionDeleted records a successful deletion.
func (m *Metrics) TransactionDeleted(kind domain.Kind) {
	m.TransactionsDeleted.WithLabelValues(string(kind)).Inc()
}

// TransactionRejected records a rejected mutation.
func (m *Metrics) TransactionRejected(kind domain.Kind) {
	m.TransactionsRejected.WithLabelValues(string(kind)).Inc()
}
