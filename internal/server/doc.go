// Package server implements the authenticated file gateway: a chi router
// serving POST /upload and /i/{name} over a storage.Store, plus a separate
// admin listener exposing health probes and Prometheus metrics.
package server
