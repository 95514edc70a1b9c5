package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveOperation("create", "ok", time.Millisecond)
	m.PartialFailure("create", "founders")
	m.ObserveRPC("/x", "ok", time.Millisecond)
}

func TestPartialFailureCounter(t *testing.T) {
	m := New()
	m.PartialFailure("create_scenario", "rounds")
	m.PartialFailure("create_scenario", "rounds")

	got := testutil.ToFloat64(m.partialFailures.WithLabelValues("create_scenario", "rounds"))
	if got != 2 {
		t.Errorf("partial failures = %v, want 2", got)
	}
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := New()
	m.ObserveRPC("/equityplan.v1.ScenarioService/ListScenarios", "ok", 5*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "equityplan_rpc_requests_total") {
		t.Errorf("metrics output missing rpc counter:\n%s", body)
	}
}
