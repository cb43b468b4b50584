package observability

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestMetricsMux_ExposesAppRegistry(t *testing.T) {
	reg := InitRegistry()
	ObserveFetch("GoogleMaps", "empty")

	rr := httptest.NewRecorder()
	metricsMux(reg).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("metrics status: %d", rr.Code)
	}
	body, _ := io.ReadAll(rr.Body)
	if !strings.Contains(string(body), `reviewagg_fetch_results_total{outcome="empty",source="GoogleMaps"}`) {
		t.Fatalf("app metrics missing from metrics port:\n%s", body)
	}
}
