package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net"
	"net/http"

	"github.com/google/uuid"

	"github.com/aryan0dhankhar/rentdesk/internal/security/audit"
	"github.com/aryan0dhankhar/rentdesk/internal/security/auth"
	"github.com/aryan0dhankhar/rentdesk/internal/security/ratelimit"
)

// RequestIDHeader carries the correlation id in and out of the agent
const RequestIDHeader = "X-Request-ID"

func isPublic(path string) bool {
	return path == "/healthz" || path == "/readyz" || path == "/metrics"
}

// RequestIDMiddleware tags every request with an id, reusing the caller's
// when present
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(audit.WithRequestID(r.Context(), id)))
	})
}

// AgentTokenMiddleware requires "Authorization: Bearer <token>" on every
// non-public path. An empty token disables the check.
func AgentTokenMiddleware(token string, auditLog *audit.Logger, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" || isPublic(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, `{"error":"missing auth"}`, http.StatusUnauthorized)
				return
			}

			got, err := auth.ExtractToken(authHeader)
			if err != nil {
				http.Error(w, `{"error":"invalid auth"}`, http.StatusUnauthorized)
				return
			}

			if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
				log.Warn("agent token rejected", slog.String("path", r.URL.Path), slog.String("remote", clientIP(r)))
				auditLog.LogDenied(r.Context(), clientIP(r), "invalid agent token")
				http.Error(w, `{"error":"invalid token"}`, http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitMiddleware limits requests per client address
func RateLimitMiddleware(limiter *ratelimit.Limiter, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublic(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			if !limiter.Allow(clientIP(r)) {
				log.Debug("rate limit exceeded", slog.String("remote", clientIP(r)))
				http.Error(w, `{"error":"rate limit exceeded"}`, http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
