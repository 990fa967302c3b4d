package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/mtorres1190/MATT-Report/internal/config"
)

// AccessCodeHeader carries the shared access code on API requests.
const AccessCodeHeader = "X-Access-Code"

// AccessCode gates the API behind the shared passcode when enabled.
// The comparison is constant-time; the code is a short shared secret
// for a small internal audience, not a credential system.
func AccessCode(cfg config.SecurityConfig, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.PasscodeEnabled {
				next.ServeHTTP(w, r)
				return
			}

			supplied := r.Header.Get(AccessCodeHeader)
			if subtle.ConstantTimeCompare([]byte(supplied), []byte(cfg.Passcode)) != 1 {
				logger.WarnContext(r.Context(), "access code rejected",
					"method", r.Method,
					"path", r.URL.Path,
					"remote_addr", r.RemoteAddr,
				)

				w.Header().Set("Content-Type", "application/problem+json")
				w.WriteHeader(http.StatusUnauthorized)
				response := `{"type":"/errors/unauthorized","title":"Unauthorized","status":401,"detail":"A valid access code is required","trace_id":"` + GetRequestID(r.Context()) + `"}`
				w.Write([]byte(response))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
