package server

import "net/http"

// securityHeadersMiddleware adds security headers to all responses.
// Retrieved objects carry whatever content type the uploader declared, so
// browsers must not sniff them or run them with the gateway's origin.
func securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Content-Security-Policy", "default-src 'none'; sandbox")

		next.ServeHTTP(w, r)
	})
}
