package middleware

import (
	"log/slog"
	"net/http"

	"github.com/unrolled/secure"
)

// SecureHeaders applies browser hardening headers to API responses. The
// console is served from another origin, so frames are denied outright.
func SecureHeaders(logger *slog.Logger, isDevelopment bool) func(http.Handler) http.Handler {
	secureMiddleware := secure.New(secure.Options{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'none'; frame-ancestors 'none'",
		SSLProxyHeaders:       map[string]string{"X-Forwarded-Proto": "https"},
		IsDevelopment:         isDevelopment,
	})

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := secureMiddleware.Process(w, r); err != nil {
				logger.WarnContext(r.Context(), "secure middleware rejected request", "error", err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
