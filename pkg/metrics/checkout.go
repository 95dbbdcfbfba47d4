package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records counters for the order and payment pipeline.
type CheckoutMetrics struct {
	ordersCreated     prometheus.Counter
	sessionsStarted   prometheus.Counter
	paymentsConfirmed prometheus.Counter
	paymentsReplayed  prometheus.Counter
	stockConflicts    prometheus.Counter
	autoCancellations prometheus.Counter
	confirmDuration   prometheus.Histogram
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	ordersCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Orders accepted by the platform.",
	})
	sessionsStarted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkout_sessions_started_total",
		Help: "Gateway checkout sessions created.",
	})
	paymentsConfirmed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "payments_confirmed_total",
		Help: "Payments confirmed and committed.",
	})
	paymentsReplayed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "payments_replayed_total",
		Help: "Confirmation calls short-circuited because the order was already paid.",
	})
	stockConflicts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "stock_conflicts_total",
		Help: "Paid confirmations rejected because stock ran out after payment.",
	})
	autoCancellations := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_auto_cancelled_total",
		Help: "Orders cancelled automatically during payment initiation.",
	})
	confirmDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "payment_confirm_duration_seconds",
		Help:    "Duration of payment confirmation in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	reg.MustRegister(ordersCreated, sessionsStarted, paymentsConfirmed, paymentsReplayed, stockConflicts, autoCancellations, confirmDuration)
	return &CheckoutMetrics{
		ordersCreated:     ordersCreated,
		sessionsStarted:   sessionsStarted,
		paymentsConfirmed: paymentsConfirmed,
		paymentsReplayed:  paymentsReplayed,
		stockConflicts:    stockConflicts,
		autoCancellations: autoCancellations,
		confirmDuration:   confirmDuration,
	}
}

// IncOrdersCreated increments the created-orders counter.
func (m *CheckoutMetrics) IncOrdersCreated() {
	if m == nil || m.ordersCreated == nil {
		return
	}
	m.ordersCreated.Inc()
}

// IncSessionsStarted increments the checkout-sessions counter.
func (m *CheckoutMetrics) IncSessionsStarted() {
	if m == nil || m.sessionsStarted == nil {
		return
	}
	m.sessionsStarted.Inc()
}

// IncPaymentsConfirmed increments the confirmed-payments counter.
func (m *CheckoutMetrics) IncPaymentsConfirmed() {
	if m == nil || m.paymentsConfirmed == nil {
		return
	}
	m.paymentsConfirmed.Inc()
}

// IncPaymentsReplayed increments the replayed-confirmation counter.
func (m *CheckoutMetrics) IncPaymentsReplayed() {
	if m == nil || m.paymentsReplayed == nil {
		return
	}
	m.paymentsReplayed.Inc()
}

// IncStockConflicts increments the post-payment stock conflict counter.
func (m *CheckoutMetrics) IncStockConflicts() {
	if m == nil || m.stockConflicts == nil {
		return
	}
	m.stockConflicts.Inc()
}

// IncAutoCancellations increments the auto-cancelled-orders counter.
func (m *CheckoutMetrics) IncAutoCancellations() {
	if m == nil || m.autoCancellations == nil {
		return
	}
	m.autoCancellations.Inc()
}

// ObserveConfirmDuration records the duration of a confirmation attempt.
func (m *CheckoutMetrics) ObserveConfirmDuration(d time.Duration) {
	if m == nil || m.confirmDuration == nil {
		return
	}
	m.confirmDuration.Observe(d.Seconds())
}
