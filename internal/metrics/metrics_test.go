package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/items/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for _, id := range []string{"1", "2", "3"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items/"+id, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
	}

	// All three requests collapse into one pattern-labeled series.
	got := testutil.ToFloat64(HTTPRequests.WithLabelValues(http.MethodGet, "/items/{id}", "200"))
	if got < 3 {
		t.Errorf("pattern-labeled count = %v, want >= 3", got)
	}
	raw := testutil.ToFloat64(HTTPRequests.WithLabelValues(http.MethodGet, "/items/1", "200"))
	if raw != 0 {
		t.Errorf("raw path was used as a label: count = %v", raw)
	}
}

func TestRouteLabelFallsBackToPath(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/no/router/here", nil)
	if got := routeLabel(req); got != "/no/router/here" {
		t.Errorf("routeLabel = %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.URL.Path = "/" + strings.Repeat("a", 100)
	if got := routeLabel(req); len(got) != 64+len("...") {
		t.Errorf("long path not truncated: len = %d", len(got))
	}
}
