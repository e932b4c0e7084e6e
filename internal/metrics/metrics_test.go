package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheusRecorder_CountsByStatus(t *testing.T) {
	r, err := NewPrometheusRecorder()
	if err != nil {
		t.Fatalf("NewPrometheusRecorder: %v", err)
	}

	r.ObserveQuery(1200*time.Millisecond, 300, nil)
	r.ObserveQuery(800*time.Millisecond, 250, nil)
	r.ObserveQuery(50*time.Millisecond, 0, errors.New("quota exceeded"))

	if got := testutil.ToFloat64(r.queriesTotal.WithLabelValues("success")); got != 2 {
		t.Errorf("success count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.queriesTotal.WithLabelValues("error")); got != 1 {
		t.Errorf("error count = %v, want 1", got)
	}
}

func TestPrometheusRecorder_SkipsZeroTokenObservations(t *testing.T) {
	r, err := NewPrometheusRecorder()
	if err != nil {
		t.Fatalf("NewPrometheusRecorder: %v", err)
	}

	r.ObserveQuery(time.Second, 0, nil)
	r.ObserveQuery(time.Second, 120, nil)

	if got := testutil.CollectAndCount(r.promptTokens); got != 1 {
		t.Fatalf("prompt token series = %d, want 1", got)
	}
	expected := `
# HELP kpiadvisor_prompt_tokens Tokens in the rendered prompt, history excluded
# TYPE kpiadvisor_prompt_tokens histogram
kpiadvisor_prompt_tokens_bucket{le="100"} 0
kpiadvisor_prompt_tokens_bucket{le="250"} 1
kpiadvisor_prompt_tokens_bucket{le="500"} 1
kpiadvisor_prompt_tokens_bucket{le="1000"} 1
kpiadvisor_prompt_tokens_bucket{le="2000"} 1
kpiadvisor_prompt_tokens_bucket{le="4000"} 1
kpiadvisor_prompt_tokens_bucket{le="8000"} 1
kpiadvisor_prompt_tokens_bucket{le="+Inf"} 1
kpiadvisor_prompt_tokens_sum 120
kpiadvisor_prompt_tokens_count 1
`
	if err := testutil.CollectAndCompare(r.promptTokens, strings.NewReader(expected)); err != nil {
		t.Error(err)
	}
}

func TestPrometheusRecorder_Handler(t *testing.T) {
	r, err := NewPrometheusRecorder()
	if err != nil {
		t.Fatalf("NewPrometheusRecorder: %v", err)
	}
	r.ObserveQuery(time.Second, 10, nil)

	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatalf("GET metrics: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if !strings.Contains(string(body), `kpiadvisor_queries_total{status="success"} 1`) {
		t.Errorf("metrics output missing success counter:\n%s", body)
	}
}

func TestNopRecorder(t *testing.T) {
	var r Recorder = NopRecorder{}
	r.ObserveQuery(time.Second, 10, errors.New("ignored"))
}

func TestPrometheusRecorder_RegistriesAreIndependent(t *testing.T) {
	first, err := NewPrometheusRecorder()
	if err != nil {
		t.Fatalf("first NewPrometheusRecorder: %v", err)
	}
	second, err := NewPrometheusRecorder()
	if err != nil {
		t.Fatalf("second NewPrometheusRecorder: %v", err)
	}

	first.ObserveQuery(time.Second, 10, nil)

	if got := testutil.ToFloat64(second.queriesTotal.WithLabelValues("success")); got != 0 {
		t.Errorf("second recorder saw %v queries of the first", got)
	}
}
