package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewWithRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	m.SearchQueriesTotal.WithLabelValues("hit").Inc()
	m.SearchQueriesTotal.WithLabelValues("hit").Inc()
	m.VocabularySize.WithLabelValues("article").Set(42)

	if got := testutil.ToFloat64(m.SearchQueriesTotal.WithLabelValues("hit")); got != 2 {
		t.Errorf("search_queries_total{hit} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.VocabularySize.WithLabelValues("article")); got != 42 {
		t.Errorf("index_vocabulary_size{article} = %v, want 42", got)
	}

	// A second set on a separate registry must not panic.
	NewWithRegistry(prometheus.NewRegistry())
}

func TestHandlerServesDefaultRegistry(t *testing.T) {
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "go_goroutines") {
		t.Error("scrape output lacks runtime metrics")
	}
}
