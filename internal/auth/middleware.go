package auth

import (
	"crypto/sha256"
	"net/http"
	"strings"
	"sync"

	"github.com/sungwon/quick-mail/internal/metrics"
)

// APIKeyHeader carries the API key. "Authorization: Bearer <key>" is
// accepted as well.
const APIKeyHeader = "X-API-Key"

// APIKeyAuth returns an HTTP middleware that requires a key matching the
// bcrypt hash keyHash. An empty keyHash disables the check. Keys that
// verified once are remembered by digest so bcrypt runs once per key.
func APIKeyAuth(keyHash string) func(http.Handler) http.Handler {
	var verified sync.Map

	return func(next http.Handler) http.Handler {
		if keyHash == "" {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := keyFromRequest(r)
			if key == "" {
				metrics.APIAuthFailuresTotal.Inc()
				http.Error(w, `{"error":"api key required"}`, http.StatusUnauthorized)
				return
			}

			digest := sha256.Sum256([]byte(key))
			if _, ok := verified.Load(digest); !ok {
				if err := VerifyAPIKey(keyHash, key); err != nil {
					metrics.APIAuthFailuresTotal.Inc()
					http.Error(w, `{"error":"invalid api key"}`, http.StatusUnauthorized)
					return
				}
				verified.Store(digest, struct{}{})
			}

			next.ServeHTTP(w, r)
		})
	}
}

func keyFromRequest(r *http.Request) string {
	if key := r.Header.Get(APIKeyHeader); key != "" {
		return key
	}

	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}
