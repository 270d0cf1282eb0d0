package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"acetrack-backend/internal/authz"
	"acetrack-backend/internal/domain"
	"acetrack-backend/internal/logger"
	"acetrack-backend/internal/security"
	"acetrack-backend/internal/service"
)

type contextKey string

const actorKey contextKey = "actor"

// AuthMiddleware validates bearer tokens and resolves the caller into
// an authz.Actor stored on the request context. Requests without an
// Authorization header pass through as the anonymous actor; routes that
// need authentication reject it in the handler via requireActor.
type AuthMiddleware struct {
	tokenManager security.TokenManager
	authService  service.AuthService
}

func NewAuthMiddleware(tm security.TokenManager, as service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{tokenManager: tm, authService: as}
}

func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearer(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := m.tokenManager.ValidateToken(token)
		if err != nil || claims.Type != security.TokenTypeAccess {
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: "invalid or expired token"})
			return
		}

		actor, err := m.authService.ResolveActor(r.Context(), claims.UserID)
		if err != nil {
			writeError(w, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), actorKey, actor)))
	})
}

func extractBearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return h[7:]
	}
	return ""
}

// actorFrom returns the actor attached by the middleware, or the
// anonymous actor when the request carried no token.
func actorFrom(r *http.Request) authz.Actor {
	if a, ok := r.Context().Value(actorKey).(authz.Actor); ok {
		return a
	}
	return authz.Anonymous()
}

// requireActor is used by routes that do not accept anonymous callers.
func requireActor(r *http.Request) (authz.Actor, error) {
	a := actorFrom(r)
	if !a.Authenticated {
		return a, fmt.Errorf("%w: authentication required", domain.ErrPermissionDenied)
	}
	return a, nil
}

// LoggingMiddleware records method, path, status and latency per request.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		logger.Get().Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
