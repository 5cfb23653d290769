package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"file-gateway/internal/storage"
)

// HealthStatus represents the overall health of the gateway.
type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// ComponentStatus represents the health of an individual component.
type ComponentStatus string

const (
	ComponentStatusUp      ComponentStatus = "up"
	ComponentStatusDown    ComponentStatus = "down"
	ComponentStatusUnknown ComponentStatus = "unknown" // backend cannot be probed
)

// Health is the /readyz response body.
type Health struct {
	Status     HealthStatus               `json:"status"`
	Timestamp  time.Time                  `json:"timestamp"`
	Version    string                     `json:"version,omitempty"`
	Components map[string]ComponentHealth `json:"components"`
}

// ComponentHealth represents the health of a single dependency.
type ComponentHealth struct {
	Status    ComponentStatus `json:"status"`
	Message   string          `json:"message,omitempty"`
	LatencyMs float64         `json:"latency_ms,omitempty"`
}

const readinessTimeout = 2 * time.Second

// newAdminHandler serves liveness, readiness and metrics. It is mounted on
// its own listener and carries no authentication.
func newAdminHandler(store storage.Store, m *Metrics, version string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", handleLive)
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		handleReady(w, r, store, version)
	})
	if m != nil {
		r.Method(http.MethodGet, "/metrics", m.Handler())
	}
	return r
}

// handleLive always answers OK while the process is running.
func handleLive(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "alive"})
}

func handleReady(w http.ResponseWriter, r *http.Request, store storage.Store, version string) {
	health := Health{
		Status:     HealthStatusHealthy,
		Timestamp:  time.Now().UTC(),
		Version:    version,
		Components: map[string]ComponentHealth{"storage": checkStorage(r.Context(), store)},
	}

	statusCode := http.StatusOK
	if health.Components["storage"].Status == ComponentStatusDown {
		health.Status = HealthStatusUnhealthy
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(health)
}

// checkStorage pings the backend when it supports it.
func checkStorage(ctx context.Context, store storage.Store) ComponentHealth {
	if store == nil {
		return ComponentHealth{Status: ComponentStatusDown, Message: "storage not configured"}
	}
	pinger, ok := store.(storage.Pinger)
	if !ok {
		return ComponentHealth{Status: ComponentStatusUnknown}
	}

	ctx, cancel := context.WithTimeout(ctx, readinessTimeout)
	defer cancel()

	start := time.Now()
	if err := pinger.Ping(ctx); err != nil {
		return ComponentHealth{
			Status:  ComponentStatusDown,
			Message: "storage ping failed: " + err.Error(),
		}
	}
	return ComponentHealth{
		Status:    ComponentStatusUp,
		LatencyMs: float64(time.Since(start).Microseconds()) / 1000,
	}
}
