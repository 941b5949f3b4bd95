package server

import (
	"net/http"
	"strings"

	"github.com/tritrack/tritrack/internal/blob"
	"github.com/tritrack/tritrack/internal/models"
)

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	id := identityFromContext(r)
	profile, err := s.db.EnsureProfile(r.Context(), id.UserID, id.Email)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var in models.ProfileInput
	if err := s.decode(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	profile, err := s.db.UpdateProfile(r.Context(), identityFromContext(r).UserID, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

type avatarRequest struct {
	ContentType string `json:"content_type" validate:"required"`
}

// handleCreateAvatarUpload presigns a PUT for a new avatar and points the
// profile at the new object key.
func (s *Server) handleCreateAvatarUpload(w http.ResponseWriter, r *http.Request) {
	if s.avatars == nil {
		writeJSON(w, http.StatusNotImplemented, map[string]string{"error": "avatar storage is not configured"})
		return
	}
	var in avatarRequest
	if err := s.decode(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	userID := identityFromContext(r).UserID
	if _, err := blob.AvatarKey(userID, in.ContentType); err != nil {
		s.writeError(w, r, &validationError{msg: err.Error()})
		return
	}
	upload, err := s.avatars.PresignAvatarUpload(r.Context(), userID, in.ContentType)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.db.SetAvatarURL(r.Context(), userID, upload.ObjectKey); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, upload)
}

// handleGetAvatar redirects to a short-lived download URL for the caller's
// avatar. External avatar URLs are redirected to as stored.
func (s *Server) handleGetAvatar(w http.ResponseWriter, r *http.Request) {
	userID := identityFromContext(r).UserID
	profile, err := s.db.GetProfile(r.Context(), userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if profile.AvatarURL == nil || *profile.AvatarURL == "" {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no avatar"})
		return
	}
	target := *profile.AvatarURL
	if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
		if s.avatars == nil || !blob.OwnsKey(userID, target) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "no avatar"})
			return
		}
		target, err = s.avatars.PresignDownload(r.Context(), target)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	http.Redirect(w, r, target, http.StatusFound)
}

func (s *Server) handleGetAthleteMetrics(w http.ResponseWriter, r *http.Request) {
	metrics, err := s.db.GetAthleteMetrics(r.Context(), identityFromContext(r).UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, metrics)
}

func (s *Server) handlePutAthleteMetrics(w http.ResponseWriter, r *http.Request) {
	var in models.AthleteMetrics
	if err := s.decode(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	metrics, err := s.db.UpsertAthleteMetrics(r.Context(), identityFromContext(r).UserID, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, metrics)
}
