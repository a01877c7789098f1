package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/lumi/pkg/utils/metrics"
)

func TestRecorder(t *testing.T) {
	rec := metrics.New()
	rec.EmbeddingFallback(3)
	rec.GenerationFallback()
	rec.MemoryQueryFailure()
	rec.ProactiveMessage("morning")
	rec.HTTPRequest("POST", "200")

	srv := httptest.NewServer(rec.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	gt.NoError(t, err).Required()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	gt.NoError(t, err).Required()

	gt.String(t, string(body)).Contains("lumi_embedding_fallback_total 3")
	gt.String(t, string(body)).Contains("lumi_generation_fallback_total 1")
	gt.String(t, string(body)).Contains(`lumi_proactive_message_total{rule="morning"} 1`)
	gt.String(t, string(body)).Contains(`lumi_http_requests_total{method="POST",status="200"} 1`)
}

func TestNilRecorder(t *testing.T) {
	var rec *metrics.Recorder
	rec.EmbeddingFallback(1)
	rec.GenerationFallback()
	rec.MemoryQueryFailure()
	rec.ProactiveMessage("overdue")
	rec.HTTPRequest("GET", "200")
	gt.Bool(t, rec.Registry() == nil).True()

	w := httptest.NewRecorder()
	rec.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	gt.Value(t, w.Code).Equal(http.StatusNotFound)
}
