package server

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// Identity sources.
const (
	SourceAPIKey    = "api_key"
	SourceToken     = "token"
	SourceDev       = "dev"
	SourceTailscale = "tailscale"
)

// Identity is the authenticated caller of a request.
type Identity struct {
	UserID      uuid.UUID `json:"user_id"`
	Email       string    `json:"email,omitempty"`
	DisplayName string    `json:"display_name,omitempty"`
	Source      string    `json:"source"`
}

type contextKey string

const identityKey contextKey = "identity"

func withIdentity(r *http.Request, id Identity) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), identityKey, id))
}

func hasIdentity(r *http.Request) bool {
	_, ok := r.Context().Value(identityKey).(Identity)
	return ok
}

// identityFromContext returns the caller set by the identity middleware, or
// the zero Identity when none ran.
func identityFromContext(r *http.Request) Identity {
	id, _ := r.Context().Value(identityKey).(Identity)
	return id
}

// IdentityFromContext exposes the caller to handlers mounted from other
// packages, such as the MCP server.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}
