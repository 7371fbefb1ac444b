package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestGuardRejectionsTotal(t *testing.T) {
	forbidden := GuardRejectionsTotal.WithLabelValues("forbidden")
	before := testutil.ToFloat64(forbidden)

	forbidden.Inc()

	if got := testutil.ToFloat64(forbidden) - before; got != 1 {
		t.Fatalf("delta = %v, want 1", got)
	}
}

func TestMetricNames(t *testing.T) {
	RegistrationsTotal.WithLabelValues("success")
	LoginsTotal.WithLabelValues("success")

	if n := testutil.CollectAndCount(RegistrationsTotal, "auth_registrations_total"); n == 0 {
		t.Error("auth_registrations_total not collected")
	}
	if n := testutil.CollectAndCount(LoginsTotal, "auth_logins_total"); n == 0 {
		t.Error("auth_logins_total not collected")
	}
}
