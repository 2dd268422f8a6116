package chi

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/geoframe/internal/logger"
	"github.com/kailas-cloud/geoframe/internal/metrics"
)

// AuthOptions configures BearerAuthMiddleware.
type AuthOptions struct {
	APIKeys []string
	// ExemptPaths bypass authentication entirely.
	ExemptPaths []string
	// ProtectReads requires a token on GET and HEAD as well. Otherwise only
	// requests that can change the frame are checked.
	ProtectReads bool
}

const bearerPrefix = "Bearer "

// BearerAuthMiddleware returns a middleware that validates Bearer tokens.
// With no non-empty key configured, authentication is disabled.
func BearerAuthMiddleware(opts AuthOptions, log *zap.Logger) func(http.Handler) http.Handler {
	var keys [][]byte
	for _, k := range opts.APIKeys {
		if k != "" {
			keys = append(keys, []byte(k))
		}
	}
	exempt := make(map[string]struct{}, len(opts.ExemptPaths))
	for _, p := range opts.ExemptPaths {
		exempt[p] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		if len(keys) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := exempt[r.URL.Path]; ok || (!opts.ProtectReads && isRead(r.Method)) {
				next.ServeHTTP(w, r)
				return
			}

			reason, msg := checkBearer(r.Header.Get("Authorization"), keys)
			if reason == "" {
				next.ServeHTTP(w, r)
				return
			}

			metrics.AuthRejectionsTotal.WithLabelValues(reason).Inc()
			logger.FromContextOr(r.Context(), log).Debug("Request rejected by auth",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("reason", reason),
			)
			w.Header().Set("WWW-Authenticate", `Bearer realm="geoframe"`)
			writeError(w, http.StatusUnauthorized, ErrorResponseCodeUnauthorized, msg)
		})
	}
}

// checkBearer returns an empty reason when the header carries a known key.
func checkBearer(header string, keys [][]byte) (reason, msg string) {
	if header == "" {
		return "missing", "missing authorization header"
	}
	if !strings.HasPrefix(header, bearerPrefix) {
		return "scheme", "authorization header must use Bearer scheme"
	}
	token := []byte(header[len(bearerPrefix):])
	match := 0
	for _, k := range keys {
		match |= subtle.ConstantTimeCompare(token, k)
	}
	if match == 0 {
		return "invalid", "invalid api key"
	}
	return "", ""
}

func isRead(method string) bool {
	return method == http.MethodGet || method == http.MethodHead
}
