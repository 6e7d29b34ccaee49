package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/afftrack/afftrack/internal/auth"
)

// ProjectIDHeader carries the project identifier for mutating requests.
const ProjectIDHeader = "X-Project-ID"

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger *slog.Logger

	// Verifier validates the bearer token against startup configuration.
	Verifier *auth.Verifier

	// ProjectID is the expected X-Project-ID header value.
	ProjectID string
}

// Auth returns a middleware that authenticates mutating requests.
// It requires a bearer token plus a matching project identifier header,
// both resolved once at process start from configuration. Read requests
// should not be routed through this middleware.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				logAuthFailure(cfg.Logger, r, "missing_token")
				writeAuthError(w)
				return
			}

			if !cfg.Verifier.Verify(token) {
				logAuthFailure(cfg.Logger, r, "invalid_token")
				writeAuthError(w)
				return
			}

			if !auth.Equal(r.Header.Get(ProjectIDHeader), cfg.ProjectID) {
				logAuthFailure(cfg.Logger, r, "invalid_project")
				writeAuthError(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// extractBearerToken extracts the bearer token from the Authorization header.
func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

func logAuthFailure(logger *slog.Logger, r *http.Request, reason string) {
	logger.Warn("authentication failed",
		slog.String("reason", reason),
		slog.String("ip", r.RemoteAddr),
		slog.String("endpoint", r.Method+" "+r.URL.Path),
		slog.String("request_id", GetRequestID(r.Context())),
	)
}

// writeAuthError writes a 401 Unauthorized response.
// Uses the same message for all auth failures to prevent enumeration.
func writeAuthError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"Unauthorized"}`))
}
