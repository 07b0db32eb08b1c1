package rest

import (
	"bytes"
	"context"
	"net"
	"net/http"
	"runtime/debug"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/membervault/api/pkg/logger"
	"github.com/rs/xid"
)

// GetAuthMiddleware authenticates the bearer token and, when requiredRoles is
// non-empty, authorizes the resolved identity's role name against the set.
// State is per-request only; nothing is cached across requests here.
func (h *Handler) GetAuthMiddleware(requiredRoles ...string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			tokenString := r.Header.Get("Authorization")
			if tokenString == "" {
				h.ErrorResponse(ctx, w, http.StatusUnauthorized, "authorization denied", nil)
				return
			}

			// parse bearer token
			const bearerPrefix = "Bearer "
			if len(tokenString) <= len(bearerPrefix) || tokenString[:len(bearerPrefix)] != bearerPrefix {
				h.ErrorResponse(ctx, w, http.StatusUnauthorized, "invalid authorization header format", nil)
				return
			}
			tokenString = tokenString[len(bearerPrefix):]

			claims, user, err := h.Svc.VerifyJWTToken(ctx, tokenString)
			if err != nil {
				h.HandleError(ctx, w, err)
				return
			}

			if len(requiredRoles) > 0 {
				roleName, err := h.Svc.RoleName(ctx, user.RoleID)
				if err != nil {
					h.HandleError(ctx, w, err)
					return
				}
				if !slices.Contains(requiredRoles, roleName) {
					h.ErrorResponse(ctx, w, http.StatusForbidden, "not authorized", nil)
					return
				}
			}

			// the audit entry lives upstream of this middleware, so the actor
			// has to be staged here rather than read back from the context
			if entry := auditEntryFromContext(ctx); entry != nil && entry.ActorID.IsZero() {
				if uid, err := claims.GetBsonObjectUID(); err == nil {
					entry.ActorID = uid
				}
			}

			ctx = h.SetClaimsInContext(ctx, claims)
			r = r.WithContext(ctx)
			next.ServeHTTP(w, r)
		})
	}
}

func LoggerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		ctx := r.Context()
		reqID := r.Header.Get("X-Request-ID")
		if reqID == "" {
			reqID = xid.New().String()
		}
		start := time.Now()
		log := logger.Logger(ctx).With().
			Str("method", r.Method).Str("req_id", reqID).
			Str("url", r.URL.String()).Logger()

		defer func() {
			if err := recover(); err != nil {
				log.Error().Interface("panic", err).Msgf("Recovered from panic, stack trace: %s", string(debug.Stack()))
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()

		ctx = log.WithContext(ctx)
		ctx = setRequestIDInContext(ctx, reqID)
		r = r.WithContext(ctx)
		responseWriter := NewResponseWriter(w)
		next.ServeHTTP(responseWriter, r)
		cost := time.Since(start)

		requestsTotal.WithLabelValues(r.Method, strconv.Itoa(responseWriter.StatusCode())).Inc()

		log = log.With().
			Int("cost_msec", int(cost.Milliseconds())).
			Logger()
		if responseWriter.statusCode >= 500 {
			log.Error().
				Int("status_code", responseWriter.statusCode).
				Str("response_body", responseWriter.responseBody.String()).
				Msg("Request completed with server error")
		} else if responseWriter.statusCode >= 400 {
			log.Warn().
				Int("status_code", responseWriter.statusCode).
				Str("response_body", responseWriter.responseBody.String()).
				Msg("Request completed with client error")
		} else {
			log.Info().
				Int("status_code", responseWriter.statusCode).
				Msg("Request completed successfully")
		}
	})
}

type requestIDKey struct{}

func setRequestIDInContext(ctx context.Context, reqID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, reqID)
}

func requestIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey{}).(string); ok {
		return v
	}
	return ""
}

type responseWriter struct {
	http.ResponseWriter
	responseBody bytes.Buffer
	statusCode   int
}

func NewResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{
		ResponseWriter: w,
	}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.responseBody.Write(b)
	return rw.ResponseWriter.Write(b)
}

// StatusCode reports the written status, defaulting to 200 when the handler
// never called WriteHeader explicitly.
func (rw *responseWriter) StatusCode() int {
	if rw.statusCode == 0 {
		return http.StatusOK
	}
	return rw.statusCode
}

// realIP prefers proxy-forwarded addresses over the raw peer address.
func realIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	if rip := r.Header.Get("X-Real-Ip"); rip != "" {
		return rip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
