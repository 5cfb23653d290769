package server

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"

	"file-gateway/internal/storage"
	"file-gateway/internal/telemetry"
)

// handleUpload handles POST /upload. The first multipart field named "file"
// must be a file part; its content is streamed to storage under the
// client-supplied filename, overwriting any existing object.
//
// Every failure after the request shape has been accepted, including a
// malformed multipart body or a tripped size limit, is reported as a single
// 500 and logged with its cause.
func (g *gateway) handleUpload(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	if !strings.Contains(r.Header.Get("Content-Type"), "multipart/form-data") {
		g.metrics.ObserveUpload(uploadRejected, 0)
		writeText(w, http.StatusBadRequest, bodyBadRequest)
		return
	}

	if g.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, g.maxUploadBytes)
	}

	fail := func(msg string, err error) {
		logger.Error().Err(err).Msg(msg)
		g.metrics.ObserveUpload(uploadFailed, 0)
		writeText(w, http.StatusInternalServerError, bodyUploadFailed)
	}

	mr, err := r.MultipartReader()
	if err != nil {
		fail("multipart_open_failed", err)
		return
	}

	part, err := findField(mr, "file")
	if err != nil && !errors.Is(err, errFieldNotFound) {
		fail("multipart_parse_failed", err)
		return
	}

	var file FileField
	switch p := part.(type) {
	case FileField:
		file = p
	case TextField:
		logger.Debug().Msg("file field is not a file part")
		g.metrics.ObserveUpload(uploadRejected, 0)
		writeText(w, http.StatusBadRequest, bodyNoFile)
		return
	default:
		g.metrics.ObserveUpload(uploadRejected, 0)
		writeText(w, http.StatusBadRequest, bodyNoFile)
		return
	}

	if file.Filename == "" {
		fail("upload_empty_filename", errors.New("file part has an empty filename"))
		return
	}

	body := &countingReader{r: file.Body}
	ctx, span := telemetry.StartSpan(r.Context(), "storage.put",
		attribute.String("object.key", file.Filename),
		attribute.String("object.content_type", file.ContentType),
	)
	err = g.store.Put(ctx, file.Filename, body, storage.Metadata{ContentType: file.ContentType})
	telemetry.EndSpan(span, err)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			logger.Warn().Int64("limit", maxErr.Limit).Str("key", file.Filename).Msg("upload_too_large")
		}
		fail("upload_store_failed", err)
		return
	}

	// The object is already written; a broken body still fails the request.
	if err := drainParts(mr); err != nil {
		fail("multipart_parse_failed", err)
		return
	}

	logger.Info().
		Str("key", file.Filename).
		Str("content_type", file.ContentType).
		Int64("bytes", body.n).
		Msg("upload_stored")
	g.metrics.ObserveUpload(uploadSucceeded, body.n)
	writeJSON(w, http.StatusOK, uploadSuccessJSON)
}

// countingReader tracks how many bytes were handed to the store.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
