package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder owns the lumi collectors. A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	embeddingFallback  prometheus.Counter
	generationFallback prometheus.Counter
	memoryQueryFailure prometheus.Counter
	proactiveMessage   *prometheus.CounterVec
	httpRequests       *prometheus.CounterVec
}

// New creates a Recorder backed by its own registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		embeddingFallback: factory.NewCounter(prometheus.CounterOpts{
			Name: "lumi_embedding_fallback_total",
			Help: "Number of texts embedded with the hash fallback",
		}),
		generationFallback: factory.NewCounter(prometheus.CounterOpts{
			Name: "lumi_generation_fallback_total",
			Help: "Number of replies produced by the canned reply generator",
		}),
		memoryQueryFailure: factory.NewCounter(prometheus.CounterOpts{
			Name: "lumi_memory_query_failure_total",
			Help: "Number of memory queries that degraded to an empty result",
		}),
		proactiveMessage: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "lumi_proactive_message_total",
			Help: "Number of proactive messages by rule",
		}, []string{"rule"}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "lumi_http_requests_total",
			Help: "Number of HTTP requests by method and status",
		}, []string{"method", "status"}),
	}
}

func (r *Recorder) EmbeddingFallback(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.embeddingFallback.Add(float64(n))
}

func (r *Recorder) GenerationFallback() {
	if r == nil {
		return
	}
	r.generationFallback.Inc()
}

func (r *Recorder) MemoryQueryFailure() {
	if r == nil {
		return
	}
	r.memoryQueryFailure.Inc()
}

func (r *Recorder) ProactiveMessage(rule string) {
	if r == nil {
		return
	}
	r.proactiveMessage.WithLabelValues(rule).Inc()
}

func (r *Recorder) HTTPRequest(method, status string) {
	if r == nil {
		return
	}
	r.httpRequests.WithLabelValues(method, status).Inc()
}

// Registry exposes the underlying registry for tests and custom exporters.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
