// Package metrics records advisor interactions: how many queries ran, how
// many failed, how long they took and how large the prompts were.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder observes one completed advisor query.
type Recorder interface {
	ObserveQuery(duration time.Duration, promptTokens int, err error)
}

// NopRecorder discards every observation.
type NopRecorder struct{}

func (NopRecorder) ObserveQuery(time.Duration, int, error) {}

// Ensure PrometheusRecorder implements Recorder.
var _ Recorder = (*PrometheusRecorder)(nil)

// PrometheusRecorder exports query metrics as Prometheus collectors.
type PrometheusRecorder struct {
	gatherer prometheus.Gatherer

	queriesTotal  *prometheus.CounterVec
	queryDuration prometheus.Histogram
	promptTokens  prometheus.Histogram
}

// NewPrometheusRecorder creates the collectors and registers them on a new
// registry owned by the recorder.
func NewPrometheusRecorder() (*PrometheusRecorder, error) {
	reg := prometheus.NewRegistry()
	r := &PrometheusRecorder{
		gatherer: reg,
		queriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kpiadvisor_queries_total",
			Help: "Advisor queries by outcome",
		}, []string{"status"}),
		queryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "kpiadvisor_query_duration_seconds",
			Help:    "Time from prompt rendering to generated answer",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
		}),
		promptTokens: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "kpiadvisor_prompt_tokens",
			Help:    "Tokens in the rendered prompt, history excluded",
			Buckets: []float64{100, 250, 500, 1000, 2000, 4000, 8000},
		}),
	}

	for _, c := range []prometheus.Collector{r.queriesTotal, r.queryDuration, r.promptTokens} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// ObserveQuery counts the query as "success" or "error" and records its
// latency and prompt size.
func (r *PrometheusRecorder) ObserveQuery(duration time.Duration, promptTokens int, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	r.queriesTotal.WithLabelValues(status).Inc()
	r.queryDuration.Observe(duration.Seconds())
	if promptTokens > 0 {
		r.promptTokens.Observe(float64(promptTokens))
	}
}

// Handler serves the recorder's registry in the Prometheus text format.
func (r *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})
}
