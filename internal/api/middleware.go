package api

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/atelierhq/atelier/internal/auth"
	"github.com/atelierhq/atelier/internal/domain"
	"github.com/atelierhq/atelier/internal/metrics"
	"github.com/atelierhq/atelier/internal/store"
)

type contextKey int

const (
	requestIDKey contextKey = iota
	identityKey
)

// RequestIDFrom returns the request ID from the request context.
func RequestIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// UserFrom returns the authenticated user from the request context, or nil
// when the request was not authenticated (auth disabled, public path).
func UserFrom(ctx context.Context) *domain.User {
	if u, ok := ctx.Value(identityKey).(*domain.User); ok {
		return u
	}
	return nil
}

// WithUser returns a copy of the request with the given user attached, the
// same way the Auth middleware attaches it.
func WithUser(r *http.Request, u *domain.User) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), identityKey, u))
}

// Recovery returns middleware that recovers from panics and writes a 500.
func Recovery() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					slog.Error("panic recovered",
						"error", rec,
						"method", r.Method,
						"path", r.URL.Path,
					)
					WriteInternal(w)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// RequestID returns middleware that assigns each request a UUID, stores it in
// the context, and echoes it in the X-Request-Id header.
func RequestID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := uuid.NewString()
			ctx := context.WithValue(r.Context(), requestIDKey, id)
			w.Header().Set("X-Request-Id", id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// publicPrefixes are reachable without credentials.
var publicPrefixes = []string{
	"/api/v1/users/register",
	"/api/v1/users/login",
	"/api/v1/workflows/hooks/",
	"/metrics",
	"/_ui",
}

func isPublic(path string) bool {
	for _, p := range publicPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// Auth returns middleware that resolves the caller from a Bearer token or an
// X-API-Key header and attaches the user to the context. When disabled is
// true every request runs as a synthetic admin, which keeps local setups
// working without registering accounts.
func Auth(mgr *auth.Manager, users store.UserStore, disabled bool) func(http.Handler) http.Handler {
	devAdmin := &domain.User{
		ID:       "dev-admin",
		Email:    "admin@localhost",
		FullName: "Dev Admin",
		Role:     domain.RoleAdmin,
		IsActive: true,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublic(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}
			if disabled {
				next.ServeHTTP(w, WithUser(r, devAdmin))
				return
			}

			if key := r.Header.Get("X-API-Key"); key != "" {
				user, err := users.GetByKeyHash(r.Context(), auth.HashAPIKey(key))
				if err != nil || !user.IsActive {
					WriteUnauthorized(w)
					return
				}
				next.ServeHTTP(w, WithUser(r, user))
				return
			}

			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				WriteUnauthorized(w)
				return
			}
			userID, err := mgr.VerifyToken(token)
			if err != nil {
				WriteUnauthorized(w)
				return
			}
			user, err := users.Get(r.Context(), userID)
			if err != nil || !user.IsActive {
				WriteUnauthorized(w)
				return
			}
			next.ServeHTTP(w, WithUser(r, user))
		})
	}
}

// RequireAdmin writes a 403 and returns false unless the request runs as an
// admin.
func RequireAdmin(w http.ResponseWriter, r *http.Request) bool {
	u := UserFrom(r.Context())
	if u == nil || u.Role != domain.RoleAdmin {
		WriteForbidden(w)
		return false
	}
	return true
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	code int
}

// WriteHeader captures the status code and delegates to the wrapped writer.
func (sw *statusWriter) WriteHeader(code int) {
	sw.code = code
	sw.ResponseWriter.WriteHeader(code)
}

// routeLabel returns the ServeMux pattern that handled the request, without
// its method prefix. Labelling metrics with the pattern instead of the raw
// path keeps the series count bounded when paths carry IDs.
func routeLabel(r *http.Request) string {
	route := r.Pattern
	if i := strings.IndexByte(route, ' '); i >= 0 {
		route = route[i+1:]
	}
	if route == "" {
		route = r.URL.Path
	}
	return route
}

// Logging returns middleware that logs each request with slog and records it
// in the Prometheus counters.
func Logging() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
			next.ServeHTTP(sw, r)
			elapsed := time.Since(start)
			metrics.ObserveRequest(r.Method, routeLabel(r), sw.code, elapsed)
			slog.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", sw.code,
				"duration", elapsed.String(),
			)
		})
	}
}

// Chain applies middleware in order so that the first middleware is the
// outermost handler.
func Chain(handler http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return handler
}
