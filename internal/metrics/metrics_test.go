package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestExportsTotal_CountsByResult(t *testing.T) {
	before := testutil.ToFloat64(ExportsTotal.WithLabelValues(ResultSuccess))

	ExportsTotal.WithLabelValues(ResultSuccess).Inc()

	after := testutil.ToFloat64(ExportsTotal.WithLabelValues(ResultSuccess))
	if after-before != 1 {
		t.Errorf("exports_total{result=success} delta = %v, want 1", after-before)
	}
}

func TestHandler_ExposesExportMetrics(t *testing.T) {
	ExportsTotal.WithLabelValues(ResultProviderError).Inc()
	RecordBuildInfo("test")

	srv := httptest.NewServer(Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET /metrics error = %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	for _, name := range []string{"docexport_exports_total", "docexport_build_info"} {
		if !strings.Contains(string(body), name) {
			t.Errorf("metrics output missing %s", name)
		}
	}
}
