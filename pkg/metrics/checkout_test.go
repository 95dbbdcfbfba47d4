package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCheckoutMetricsExportsCountersAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCheckoutMetrics(reg)

	m.IncOrdersCreated()
	m.IncOrdersCreated()
	m.IncSessionsStarted()
	m.IncPaymentsConfirmed()
	m.IncPaymentsReplayed()
	m.IncStockConflicts()
	m.IncAutoCancellations()
	m.ObserveConfirmDuration(150 * time.Millisecond)

	if got := testutil.ToFloat64(m.ordersCreated); got != 2 {
		t.Fatalf("expected orders_created_total=2, got %f", got)
	}
	if got := testutil.ToFloat64(m.sessionsStarted); got != 1 {
		t.Fatalf("expected checkout_sessions_started_total=1, got %f", got)
	}
	if got := testutil.ToFloat64(m.paymentsConfirmed); got != 1 {
		t.Fatalf("expected payments_confirmed_total=1, got %f", got)
	}
	if got := testutil.ToFloat64(m.paymentsReplayed); got != 1 {
		t.Fatalf("expected payments_replayed_total=1, got %f", got)
	}
	if got := testutil.ToFloat64(m.stockConflicts); got != 1 {
		t.Fatalf("expected stock_conflicts_total=1, got %f", got)
	}
	if got := testutil.ToFloat64(m.autoCancellations); got != 1 {
		t.Fatalf("expected orders_auto_cancelled_total=1, got %f", got)
	}

	count := testutil.CollectAndCount(m.confirmDuration, "payment_confirm_duration_seconds")
	if count != 1 {
		t.Fatalf("expected one histogram series, got %d", count)
	}
}

func TestCheckoutMetricsNilSafe(t *testing.T) {
	var m *CheckoutMetrics
	m.IncOrdersCreated()
	m.ObserveConfirmDuration(time.Second)

	empty := NewCheckoutMetrics(nil)
	empty.IncPaymentsConfirmed()
	empty.IncStockConflicts()
}
