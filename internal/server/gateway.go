package server

import (
	"net/http"
	"runtime/debug"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"file-gateway/internal/storage"
)

// Fixed response bodies. Clients match on these exactly.
const (
	bodyInvalidAPIKey    = "Invalid API key"
	bodyMethodNotAllowed = "Method Not Allowed"
	bodyBadRequest       = "Bad Request"
	bodyNoFile           = "No file uploaded"
	bodyUploadFailed     = "Failed to upload file"
	bodyNotFound         = "Not Found"
	bodyInternalError    = "Internal Server Error"
)

// uploadSuccessJSON is the exact success payload for POST /upload.
var uploadSuccessJSON = []byte(`{"message":"File uploaded successfully"}`)

// gateway holds the immutable state the request handlers read.
type gateway struct {
	apiKey         string
	maxUploadBytes int64
	store          storage.Store
	metrics        *Metrics
}

// newGatewayHandler wires the middleware chain and routes. Authentication
// runs before routing, so unknown paths and wrong methods still answer 401
// to unauthenticated callers.
func newGatewayHandler(gw *gateway, logger zerolog.Logger, m *Metrics) http.Handler {
	r := chi.NewRouter()

	r.Use(requestIDMiddleware(logger))
	r.Use(accessLogMiddleware)
	r.Use(m.Middleware)
	r.Use(securityHeadersMiddleware)
	r.Use(recoverer)
	r.Use(requireAPIKey(gw.apiKey))

	r.Post("/upload", gw.handleUpload)
	r.Handle("/i/*", http.HandlerFunc(gw.handleRetrieve))

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeText(w, http.StatusMethodNotAllowed, bodyMethodNotAllowed)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeText(w, http.StatusNotFound, bodyNotFound)
	})

	return otelhttp.NewHandler(r, "gateway")
}

// recoverer answers a handler panic with the same plain-text 500 as any
// other internal failure. http.ErrAbortHandler is re-raised so net/http
// drops the connection.
func recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			zerolog.Ctx(r.Context()).Error().
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Msg("handler_panic")
			writeText(w, http.StatusInternalServerError, bodyInternalError)
		}()
		next.ServeHTTP(w, r)
	})
}

// writeText writes body verbatim. http.Error would append a newline.
func writeText(w http.ResponseWriter, status int, body string) {
	h := w.Header()
	h.Set("Content-Type", "text/plain; charset=utf-8")
	h.Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func writeJSON(w http.ResponseWriter, status int, body []byte) {
	h := w.Header()
	h.Set("Content-Type", "application/json")
	h.Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
