package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tritrack/tritrack/internal/auth"
	"github.com/tritrack/tritrack/internal/caldate"
	"github.com/tritrack/tritrack/internal/events"
	"github.com/tritrack/tritrack/internal/storage"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// meResponse is the caller's identity plus, for bearer tokens, the token's
// role and expiry.
type meResponse struct {
	Identity
	Role           string     `json:"role,omitempty"`
	TokenExpiresAt *time.Time `json:"token_expires_at,omitempty"`
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	resp := meResponse{Identity: identityFromContext(r)}
	if claims, ok := auth.FromContext(r.Context()); ok {
		resp.Role = claims.Role
		if !claims.ExpiresAt.IsZero() {
			exp := claims.ExpiresAt
			resp.TokenExpiresAt = &exp
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps err to a status: 400 for bad payloads, 404 for missing
// rows, 500 otherwise. Only 500s are logged.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *validationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": verr.Error()})
	case errors.Is(err, storage.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	default:
		s.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

// decode reads a JSON body into v and validates it.
func (s *Server) decode(r *http.Request, v any) error {
	if err := decodeJSON(r, v); err != nil {
		return err
	}
	return s.check(v)
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &validationError{msg: "invalid JSON: " + err.Error()}
	}
	return nil
}

// pathID parses the {id} URL parameter.
func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, &validationError{msg: "invalid id"}
	}
	return id, nil
}

// parseDateParam reads an optional YYYY-MM-DD query parameter.
func parseDateParam(r *http.Request, name string) (caldate.Date, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return caldate.Date{}, nil
	}
	d, err := caldate.Parse(raw)
	if err != nil {
		return caldate.Date{}, &validationError{msg: fmt.Sprintf("%s must be YYYY-MM-DD", name)}
	}
	return d, nil
}

// parseDateFilter reads the optional start, end and limit parameters.
func parseDateFilter(r *http.Request) (storage.DateFilter, error) {
	var f storage.DateFilter
	var err error
	if f.Start, err = parseDateParam(r, "start"); err != nil {
		return f, err
	}
	if f.End, err = parseDateParam(r, "end"); err != nil {
		return f, err
	}
	if !f.Start.IsZero() && !f.End.IsZero() && f.End.Before(f.Start) {
		return f, &validationError{msg: "end must not be before start"}
	}
	if f.Limit, err = parseIntParam(r, "limit", 0); err != nil {
		return f, err
	}
	if f.Limit < 0 {
		return f, &validationError{msg: "limit must not be negative"}
	}
	return f, nil
}

// parseIntParam reads an optional integer query parameter.
func parseIntParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &validationError{msg: name + " must be an integer"}
	}
	return n, nil
}

// publish hands ev to the broker. The write it reports is already
// committed, so a failure is logged and not returned.
func (s *Server) publish(r *http.Request, ev events.Event) {
	if err := s.events.Publish(r.Context(), ev); err != nil {
		s.log.Warn("publishing event", "type", ev.Type, "subject_id", ev.SubjectID, "error", err)
	}
}
