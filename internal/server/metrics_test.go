package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"file-gateway/internal/config"
	"file-gateway/internal/storage"
)

func TestMetrics_NilReceiver(t *testing.T) {
	var m *Metrics
	m.ObserveUpload(uploadSucceeded, 10)
	m.ObserveRetrieval(retrievalHit, 10)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	if h := m.Middleware(next); h == nil {
		t.Fatal("Middleware returned nil")
	}
}

func TestMetrics_GatewayCounters(t *testing.T) {
	m := NewMetrics("test")
	cfg := config.Default()
	cfg.APIKey = testAPIKey
	srv := New(*cfg, Options{Store: storage.NewMemoryStore(), Logger: zerolog.Nop(), Metrics: m, Version: "test"})
	h := srv.Handler()

	serve(h, uploadRequest(t, formFile{field: "file", filename: "a.txt", content: "hello"}))
	serve(h, authed(httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("x"))))
	serve(h, authed(httptest.NewRequest(http.MethodGet, "/i/a.txt", nil)))
	serve(h, authed(httptest.NewRequest(http.MethodGet, "/i/missing", nil)))
	serve(h, httptest.NewRequest(http.MethodGet, "/i/a.txt", nil))

	checks := []struct {
		name string
		got  float64
		want float64
	}{
		{"uploads success", testutil.ToFloat64(m.uploads.WithLabelValues(uploadSucceeded)), 1},
		{"uploads rejected", testutil.ToFloat64(m.uploads.WithLabelValues(uploadRejected)), 1},
		{"upload bytes", testutil.ToFloat64(m.uploadBytes), 5},
		{"retrievals hit", testutil.ToFloat64(m.retrievals.WithLabelValues(retrievalHit)), 1},
		{"retrievals miss", testutil.ToFloat64(m.retrievals.WithLabelValues(retrievalMiss)), 1},
		{"retrieval bytes", testutil.ToFloat64(m.retrievalBytes), 5},
		{"401 requests", testutil.ToFloat64(m.requests.WithLabelValues("401", http.MethodGet)), 1},
		{"inflight", testutil.ToFloat64(m.inflight), 0},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics("1.2.3")
	m.ObserveUpload(uploadFailed, 0)

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body, _ := io.ReadAll(rr.Body)
	for _, want := range []string{
		`gateway_build_info{version="1.2.3"} 1`,
		`gateway_uploads_total{result="failure"} 1`,
		"go_goroutines",
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
