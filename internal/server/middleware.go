package server

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"tailscale.com/client/tailscale/apitype"

	"github.com/tritrack/tritrack/internal/auth"
	"github.com/tritrack/tritrack/internal/observability"
	"github.com/tritrack/tritrack/internal/storage"
)

// APIKeyAuth returns middleware that accepts the X-API-Key header used by
// the import client and acts as user. Requests without the header pass
// through to the next identity source.
func APIKeyAuth(apiKey string, user uuid.UUID) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("X-API-Key")
			if key == "" || hasIdentity(r) {
				next.ServeHTTP(w, r)
				return
			}
			if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) != 1 {
				writeJSON(w, http.StatusForbidden, map[string]string{"error": "invalid API key"})
				return
			}
			next.ServeHTTP(w, withIdentity(r, Identity{UserID: user, Source: SourceAPIKey}))
		})
	}
}

// BearerAuth returns middleware that validates an Authorization bearer
// token. A missing header passes through; a bad token is rejected.
func BearerAuth(cfg auth.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if hasIdentity(r) {
				next.ServeHTTP(w, r)
				return
			}
			claims, err := auth.FromRequest(r, cfg)
			if errors.Is(err, auth.ErrMissingToken) {
				next.ServeHTTP(w, r)
				return
			}
			if err != nil {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"error": err.Error()})
				return
			}
			r = r.WithContext(auth.WithClaims(r.Context(), claims))
			next.ServeHTTP(w, withIdentity(r, Identity{UserID: claims.UserID, Email: claims.Email, Source: SourceToken}))
		})
	}
}

// DevIdentity returns middleware that acts as a fixed local user for
// requests that carry no other identity.
func DevIdentity(user uuid.UUID, email string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !hasIdentity(r) {
				r = withIdentity(r, Identity{UserID: user, Email: email, Source: SourceDev})
			}
			next.ServeHTTP(w, r)
		})
	}
}

// whoIsClient is the part of the tailscale local client used to identify
// tailnet peers.
type whoIsClient interface {
	WhoIs(ctx context.Context, remoteAddr string) (*apitype.WhoIsResponse, error)
}

// TailscaleIdentity returns middleware that identifies the caller by their
// tailnet login and maps it to a profile with lookup. Peers without a
// matching profile are rejected.
func TailscaleIdentity(lc whoIsClient, lookup func(ctx context.Context, email string) (uuid.UUID, error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if hasIdentity(r) {
				next.ServeHTTP(w, r)
				return
			}
			who, err := lc.WhoIs(r.Context(), r.RemoteAddr)
			if err != nil || who == nil || who.UserProfile == nil {
				next.ServeHTTP(w, r)
				return
			}
			login := who.UserProfile.LoginName
			userID, err := lookup(r.Context(), login)
			if errors.Is(err, storage.ErrNotFound) {
				writeJSON(w, http.StatusForbidden, map[string]string{"error": "no profile for tailnet user " + login})
				return
			}
			if err != nil {
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
				return
			}
			next.ServeHTTP(w, withIdentity(r, Identity{
				UserID:      userID,
				Email:       login,
				DisplayName: who.UserProfile.DisplayName,
				Source:      SourceTailscale,
			}))
		})
	}
}

// RequireIdentity rejects requests that no identity middleware claimed.
func RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !hasIdentity(r) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequestLogging returns middleware that logs each request and records it
// under its route pattern.
func RequestLogging(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)
			elapsed := time.Since(start)

			var route string
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				route = rctx.RoutePattern()
			}
			observability.RecordRequest(route, r.Method, sw.status, elapsed)
			log.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", sw.status,
				"duration", elapsed.String(),
			)
		})
	}
}

// CORS adds permissive CORS headers for the browser client.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-API-Key, Mcp-Session-Id")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusWriter wraps ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Flush lets streaming responses (MCP over SSE) pass through the wrapper.
func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
