package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/httprate"
)

// RateLimit creates per-viewer rate limiting middleware. Mount it after
// Auth; unauthenticated requests are keyed by client address.
func RateLimit(requestLimit int, windowLength time.Duration) func(http.Handler) http.Handler {
	retryAfter := retryAfterSeconds(windowLength)

	return httprate.Limit(
		requestLimit,
		windowLength,
		httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
			if id := GetViewerID(r.Context()); id != "" {
				return "viewer:" + id, nil
			}
			return httprate.KeyByIP(r)
		}),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":"rate limit exceeded","retry_after":` + strconv.Itoa(retryAfter) + `}`))
		}),
	)
}

// retryAfterSeconds rounds the window up to whole seconds, at least one.
func retryAfterSeconds(window time.Duration) int {
	s := int(math.Ceil(window.Seconds()))
	if s < 1 {
		return 1
	}
	return s
}
