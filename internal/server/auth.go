package server

import (
	"crypto/hmac"
	"crypto/sha256"
	"net/http"

	"github.com/rs/zerolog"
)

// requireAPIKey rejects any request whose Authorization header is not
// exactly "Bearer <apiKey>". Both sides are hashed first so the comparison
// takes the same time whatever the header length.
func requireAPIKey(apiKey string) func(http.Handler) http.Handler {
	want := sha256.Sum256([]byte("Bearer " + apiKey))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := sha256.Sum256([]byte(r.Header.Get("Authorization")))
			if !hmac.Equal(got[:], want[:]) {
				zerolog.Ctx(r.Context()).Debug().
					Bool("header_present", r.Header.Get("Authorization") != "").
					Msg("auth_rejected")
				writeText(w, http.StatusUnauthorized, bodyInvalidAPIKey)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
