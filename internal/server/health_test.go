package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"file-gateway/internal/storage"
)

type pingStore struct {
	failingStore
	err error
}

func (p pingStore) Ping(ctx context.Context) error { return p.err }

func TestAdmin_Healthz(t *testing.T) {
	h := newAdminHandler(storage.NewMemoryStore(), nil, "v")

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
}

func TestAdmin_Readyz(t *testing.T) {
	tests := []struct {
		name       string
		store      storage.Store
		wantCode   int
		wantStatus ComponentStatus
	}{
		{name: "memory up", store: storage.NewMemoryStore(), wantCode: http.StatusOK, wantStatus: ComponentStatusUp},
		{name: "ping fails", store: pingStore{err: errors.New("refused")}, wantCode: http.StatusServiceUnavailable, wantStatus: ComponentStatusDown},
		{name: "no pinger", store: failingStore{}, wantCode: http.StatusOK, wantStatus: ComponentStatusUnknown},
		{name: "nil store", store: nil, wantCode: http.StatusServiceUnavailable, wantStatus: ComponentStatusDown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newAdminHandler(tt.store, nil, "v1")
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))

			if rr.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rr.Code, tt.wantCode)
			}
			var health Health
			if err := json.NewDecoder(rr.Body).Decode(&health); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got := health.Components["storage"].Status; got != tt.wantStatus {
				t.Fatalf("storage status = %q, want %q", got, tt.wantStatus)
			}
			if health.Version != "v1" {
				t.Errorf("version = %q", health.Version)
			}
		})
	}
}

func TestAdmin_MetricsMounted(t *testing.T) {
	h := newAdminHandler(storage.NewMemoryStore(), NewMetrics("v"), "v")

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	body, _ := io.ReadAll(rr.Body)
	if len(body) == 0 {
		t.Fatal("empty metrics body")
	}
}
