package server

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/tritrack/tritrack/internal/caldate"
	"github.com/tritrack/tritrack/internal/events"
	"github.com/tritrack/tritrack/internal/models"
	"github.com/tritrack/tritrack/internal/observability"
)

const (
	kindPlanned   = "planned"
	kindCompleted = "completed"
)

func (s *Server) handleListPlanned(w http.ResponseWriter, r *http.Request) {
	f, err := parseDateFilter(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rows, err := s.db.ListPlannedWorkouts(r.Context(), identityFromContext(r).UserID, f)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if rows == nil {
		rows = []models.PlannedWorkout{}
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleCreatePlanned(w http.ResponseWriter, r *http.Request) {
	var in models.PlannedWorkoutInput
	if err := s.decode(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	userID := identityFromContext(r).UserID
	p, err := s.db.CreatePlannedWorkout(r.Context(), userID, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.recordPlanned(r, events.TypeWorkoutPlanned, "create", p)
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleUpdatePlanned(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var in models.PlannedWorkoutInput
	if err := s.decode(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := s.db.UpdatePlannedWorkout(r.Context(), identityFromContext(r).UserID, id, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.recordPlanned(r, events.TypeWorkoutUpdated, "update", p)
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleDeletePlanned(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	userID := identityFromContext(r).UserID
	p, err := s.db.GetPlannedWorkout(r.Context(), userID, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.db.DeletePlannedWorkout(r.Context(), userID, id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.recordPlanned(r, events.TypeWorkoutDeleted, "delete", p)
	w.WriteHeader(http.StatusNoContent)
}

// handleCompletePlanned logs a completion against a planned workout. The
// date and discipline default to the planned ones.
func (s *Server) handleCompletePlanned(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var in models.CompletedWorkoutInput
	if err := decodeJSON(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	userID := identityFromContext(r).UserID
	p, err := s.db.GetPlannedWorkout(r.Context(), userID, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	in.PlannedWorkoutID = &p.ID
	if in.WorkoutDate.IsZero() {
		in.WorkoutDate = p.WorkoutDate
	}
	if in.Discipline == "" {
		in.Discipline = p.Discipline
	}
	if err := s.check(&in); err != nil {
		s.writeError(w, r, err)
		return
	}
	c, err := s.db.CreateCompletedWorkout(r.Context(), userID, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.recordCompleted(r, events.TypeWorkoutCompleted, "create", c)
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleListCompleted(w http.ResponseWriter, r *http.Request) {
	f, err := parseDateFilter(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rows, err := s.db.ListCompletedWorkouts(r.Context(), identityFromContext(r).UserID, f)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if rows == nil {
		rows = []models.CompletedWorkout{}
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleCreateCompleted(w http.ResponseWriter, r *http.Request) {
	var in models.CompletedWorkoutInput
	if err := s.decode(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	userID := identityFromContext(r).UserID
	if in.PlannedWorkoutID != nil {
		if _, err := s.db.GetPlannedWorkout(r.Context(), userID, *in.PlannedWorkoutID); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	c, err := s.db.CreateCompletedWorkout(r.Context(), userID, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.recordCompleted(r, events.TypeWorkoutCompleted, "create", c)
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) handleUpdateCompleted(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var in models.CompletedWorkoutInput
	if err := s.decode(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	userID := identityFromContext(r).UserID
	if in.PlannedWorkoutID != nil {
		if _, err := s.db.GetPlannedWorkout(r.Context(), userID, *in.PlannedWorkoutID); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	c, err := s.db.UpdateCompletedWorkout(r.Context(), userID, id, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.recordCompleted(r, events.TypeWorkoutUpdated, "update", c)
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleDeleteCompleted(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	userID := identityFromContext(r).UserID
	c, err := s.db.GetCompletedWorkout(r.Context(), userID, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.db.DeleteCompletedWorkout(r.Context(), userID, id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.recordCompleted(r, events.TypeWorkoutDeleted, "delete", c)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	limit, err := parseIntParam(r, "limit", 0)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.views.Recent(r.Context(), identityFromContext(r).UserID, limit))
}

func (s *Server) recordPlanned(r *http.Request, eventType, action string, p *models.PlannedWorkout) {
	observability.RecordWorkoutWrite(kindPlanned, action, p.Discipline)
	s.publish(r, workoutEvent(eventType, kindPlanned, p.UserID, p.ID, p.Discipline, p.WorkoutDate))
}

func (s *Server) recordCompleted(r *http.Request, eventType, action string, c *models.CompletedWorkout) {
	observability.RecordWorkoutWrite(kindCompleted, action, c.Discipline)
	s.publish(r, workoutEvent(eventType, kindCompleted, c.UserID, c.ID, c.Discipline, c.WorkoutDate))
}

func workoutEvent(eventType, kind string, userID, subjectID uuid.UUID, discipline string, date caldate.Date) events.Event {
	return events.Event{
		Type:        eventType,
		UserID:      userID,
		SubjectID:   subjectID,
		Kind:        kind,
		Discipline:  discipline,
		WorkoutDate: date,
	}
}
