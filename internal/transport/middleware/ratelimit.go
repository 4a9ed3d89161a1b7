package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/frahmantamala/access-admin/internal"
	"github.com/go-chi/httprate"
)

const ErrCodeRateLimited internal.ErrorCode = "RATE_LIMITED"

// RateLimit limits requests per client IP within window. Rejected requests get
// a 429 with the usual error envelope.
func RateLimit(requests int, window time.Duration) func(http.Handler) http.Handler {
	return httprate.Limit(requests, window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(internal.Response{Error: &internal.AppError{
				Type:       internal.ErrorTypeValidation,
				Code:       ErrCodeRateLimited,
				Message:    "Too many requests, slow down.",
				StatusCode: http.StatusTooManyRequests,
			}})
		}),
	)
}
