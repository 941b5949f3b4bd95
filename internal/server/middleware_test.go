package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"tailscale.com/client/tailscale/apitype"
	"tailscale.com/tailcfg"

	"github.com/tritrack/tritrack/internal/auth"
	"github.com/tritrack/tritrack/internal/storage"
)

// captureIdentity returns a handler that records the identity it sees.
func captureIdentity(got *Identity, seen *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got, *seen = identityFromContext(r), hasIdentity(r)
		w.WriteHeader(http.StatusOK)
	})
}

// TestDevIdentity verifies that the dev identity middleware acts as the
// configured user, enabling local development without an identity provider.
func TestDevIdentity(t *testing.T) {
	user := uuid.New()
	var got Identity
	var seen bool
	handler := DevIdentity(user, "dev@localhost")(captureIdentity(&got, &seen))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if got.UserID != user {
		t.Errorf("userID = %s, want %s", got.UserID, user)
	}
	if got.Source != SourceDev || got.Email != "dev@localhost" {
		t.Errorf("identity = %+v, want dev source with dev email", got)
	}
}

// TestDevIdentityKeepsEarlierIdentity verifies that an identity set by an
// earlier middleware is not overwritten by the dev fallback.
func TestDevIdentityKeepsEarlierIdentity(t *testing.T) {
	keyUser := uuid.New()
	var got Identity
	var seen bool
	handler := DevIdentity(uuid.New(), "")(captureIdentity(&got, &seen))

	req := withIdentity(httptest.NewRequest(http.MethodGet, "/", nil), Identity{UserID: keyUser, Source: SourceAPIKey})
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got.UserID != keyUser || got.Source != SourceAPIKey {
		t.Errorf("identity = %+v, want the api key user", got)
	}
}

// TestIdentityFromContextDefault verifies the zero identity is returned
// when no middleware ran.
func TestIdentityFromContextDefault(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if id := identityFromContext(req); id.UserID != uuid.Nil {
		t.Errorf("identityFromContext without context value = %s, want nil uuid", id.UserID)
	}
	if _, ok := IdentityFromContext(req.Context()); ok {
		t.Error("IdentityFromContext reported an identity on a bare context")
	}
}

// TestRequireIdentity verifies that requests without an identity are rejected.
func TestRequireIdentity(t *testing.T) {
	handler := RequireIdentity(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("next handler should not be called without identity")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestAPIKeyAuth(t *testing.T) {
	user := uuid.New()
	tests := []struct {
		name       string
		key        string
		wantStatus int
		wantUser   uuid.UUID
		wantSeen   bool
	}{
		{"valid key", "secret", http.StatusOK, user, true},
		{"wrong key", "nope", http.StatusForbidden, uuid.Nil, false},
		{"no key passes through", "", http.StatusOK, uuid.Nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Identity
			var seen bool
			handler := APIKeyAuth("secret", user)(captureIdentity(&got, &seen))

			req := httptest.NewRequest(http.MethodPost, "/", nil)
			if tt.key != "" {
				req.Header.Set("X-API-Key", tt.key)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if seen != tt.wantSeen || got.UserID != tt.wantUser {
				t.Errorf("identity = %+v (seen %v), want user %s (seen %v)", got, seen, tt.wantUser, tt.wantSeen)
			}
		})
	}
}

func TestBearerAuth(t *testing.T) {
	cfg := auth.Config{Secret: "jwt-secret"}
	user := uuid.New()
	valid, err := auth.Sign(cfg, user, "ana@example.com", time.Hour)
	if err != nil {
		t.Fatalf("signing: %v", err)
	}
	forged, err := auth.Sign(auth.Config{Secret: "other"}, user, "", time.Hour)
	if err != nil {
		t.Fatalf("signing: %v", err)
	}

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantSeen   bool
	}{
		{"valid token", "Bearer " + valid, http.StatusOK, true},
		{"lowercase scheme", "bearer " + valid, http.StatusOK, true},
		{"forged token", "Bearer " + forged, http.StatusUnauthorized, false},
		{"basic auth", "Basic dXNlcjpwYXNz", http.StatusUnauthorized, false},
		{"no header passes through", "", http.StatusOK, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Identity
			var seen bool
			handler := BearerAuth(cfg)(captureIdentity(&got, &seen))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if seen != tt.wantSeen {
				t.Errorf("identity seen = %v, want %v", seen, tt.wantSeen)
			}
			if tt.wantSeen && (got.UserID != user || got.Email != "ana@example.com" || got.Source != SourceToken) {
				t.Errorf("identity = %+v, want token user %s", got, user)
			}
		})
	}
}

type fakeWhoIs struct {
	resp *apitype.WhoIsResponse
	err  error
}

func (f fakeWhoIs) WhoIs(context.Context, string) (*apitype.WhoIsResponse, error) {
	return f.resp, f.err
}

func TestTailscaleIdentity(t *testing.T) {
	user := uuid.New()
	peer := &apitype.WhoIsResponse{UserProfile: &tailcfg.UserProfile{LoginName: "alice@example.com", DisplayName: "Alice"}}
	lookup := func(_ context.Context, email string) (uuid.UUID, error) {
		if email == "alice@example.com" {
			return user, nil
		}
		return uuid.Nil, storage.ErrNotFound
	}

	tests := []struct {
		name       string
		lc         fakeWhoIs
		wantStatus int
		wantSeen   bool
	}{
		{"known peer", fakeWhoIs{resp: peer}, http.StatusOK, true},
		{"unknown login", fakeWhoIs{resp: &apitype.WhoIsResponse{UserProfile: &tailcfg.UserProfile{LoginName: "mallory@example.com"}}}, http.StatusForbidden, false},
		{"whois failure passes through", fakeWhoIs{err: errors.New("no peer")}, http.StatusOK, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Identity
			var seen bool
			handler := TailscaleIdentity(tt.lc, lookup)(captureIdentity(&got, &seen))

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if seen != tt.wantSeen {
				t.Errorf("identity seen = %v, want %v", seen, tt.wantSeen)
			}
			if tt.wantSeen && (got.UserID != user || got.DisplayName != "Alice" || got.Source != SourceTailscale) {
				t.Errorf("identity = %+v, want alice", got)
			}
		})
	}
}

// TestRequestLogging verifies that the logging middleware calls the next handler and records status.
func TestRequestLogging(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := RequestLogging(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", rec.Code)
	}
}

// TestCORSHeaders verifies that CORS headers are set on responses.
func TestCORSHeaders(t *testing.T) {
	handler := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("CORS origin = %q, want *", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Headers"); got == "" {
		t.Error("CORS allow headers missing")
	}
}

// TestCORSPreflight verifies that OPTIONS requests get 204 with CORS headers.
func TestCORSPreflight(t *testing.T) {
	handler := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("next handler should not be called for OPTIONS")
	}))

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
}
