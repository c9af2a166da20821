package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveOp(t *testing.T) {
	m := New()

	m.ObserveOp("create", nil)
	m.ObserveOp("create", nil)
	m.ObserveOp("update", errors.New("boom"))

	if got := testutil.ToFloat64(m.operations.WithLabelValues("create", "ok")); got != 2 {
		t.Errorf("create ok = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.operations.WithLabelValues("update", "error")); got != 1 {
		t.Errorf("update error = %v, want 1", got)
	}
}

func TestSetCounts(t *testing.T) {
	m := New()
	m.SetCounts(map[string]int{"draft": 3, "submitted": 1})

	if got := testutil.ToFloat64(m.visits.WithLabelValues("draft")); got != 3 {
		t.Errorf("draft = %v, want 3", got)
	}
	if got := testutil.ToFloat64(m.visits.WithLabelValues("submitted")); got != 1 {
		t.Errorf("submitted = %v, want 1", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveOp("create", nil)
	m.ObservePersist(time.Millisecond)
	m.SetCounts(map[string]int{"draft": 1})
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveOp("create", nil)
	m.ObservePersist(5 * time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"cv_store_operations_total", "cv_store_persist_seconds"} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %s in metrics output", want)
		}
	}
}
