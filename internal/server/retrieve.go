package server

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"file-gateway/internal/storage"
	"file-gateway/internal/telemetry"
)

// objectKeyFromPath returns the third "/"-separated segment of the escaped
// path, unescaped. Deeper segments are ignored, so /i/a/b reads key "a".
func objectKeyFromPath(escapedPath string) (string, bool) {
	parts := strings.Split(escapedPath, "/")
	if len(parts) < 3 {
		return "", false
	}
	key, err := url.PathUnescape(parts[2])
	if err != nil || key == "" {
		return "", false
	}
	return key, true
}

// handleRetrieve handles every method on /i/{name}.
func (g *gateway) handleRetrieve(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	key, ok := objectKeyFromPath(r.URL.EscapedPath())
	if !ok {
		g.metrics.ObserveRetrieval(retrievalMiss, 0)
		writeText(w, http.StatusNotFound, bodyNotFound)
		return
	}

	ctx, span := telemetry.StartSpan(r.Context(), "storage.get", attribute.String("object.key", key))
	obj, err := g.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			telemetry.EndSpan(span, nil)
			g.metrics.ObserveRetrieval(retrievalMiss, 0)
			writeText(w, http.StatusNotFound, bodyNotFound)
			return
		}
		telemetry.EndSpan(span, err)
		logger.Error().Err(err).Str("key", key).Msg("retrieve_failed")
		g.metrics.ObserveRetrieval(retrievalError, 0)
		writeText(w, http.StatusInternalServerError, bodyInternalError)
		return
	}
	defer func() { _ = obj.Body.Close() }()

	contentType := obj.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	if obj.Size >= 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(obj.Size, 10))
	}
	w.WriteHeader(http.StatusOK)

	n, err := io.Copy(w, obj.Body)
	telemetry.EndSpan(span, err)
	if err != nil {
		// Headers are already sent; the client sees a truncated body.
		logger.Warn().Err(err).Str("key", key).Int64("bytes", n).Msg("retrieve_stream_interrupted")
	}
	g.metrics.ObserveRetrieval(retrievalHit, n)
}
