package server

import (
	"net/http"

	"github.com/tritrack/tritrack/internal/events"
	"github.com/tritrack/tritrack/internal/models"
	"github.com/tritrack/tritrack/internal/training"
)

func (s *Server) handleListRaces(w http.ResponseWriter, r *http.Request) {
	races, err := s.db.ListRaces(r.Context(), identityFromContext(r).UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if races == nil {
		races = []models.Race{}
	}
	writeJSON(w, http.StatusOK, races)
}

func (s *Server) handlePrimaryRace(w http.ResponseWriter, r *http.Request) {
	race, err := s.db.GetPrimaryRace(r.Context(), identityFromContext(r).UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, race)
}

func (s *Server) handleCreateRace(w http.ResponseWriter, r *http.Request) {
	var in models.RaceInput
	if err := s.decode(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	userID := identityFromContext(r).UserID
	race, err := s.db.CreateRace(r.Context(), userID, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.publish(r, events.Event{Type: events.TypeRaceCreated, UserID: userID, SubjectID: race.ID})
	writeJSON(w, http.StatusCreated, race)
}

func (s *Server) handleUpdateRace(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var in models.RaceInput
	if err := s.decode(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	race, err := s.db.UpdateRace(r.Context(), identityFromContext(r).UserID, id, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, race)
}

func (s *Server) handleDeleteRace(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.db.DeleteRace(r.Context(), identityFromContext(r).UserID, id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetRaceGoals(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	goals, err := s.db.GetRaceGoals(r.Context(), identityFromContext(r).UserID, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, goals)
}

func (s *Server) handlePutRaceGoals(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var in models.RaceGoal
	if err := s.decode(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	goals, err := s.db.UpsertRaceGoals(r.Context(), identityFromContext(r).UserID, id, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, goals)
}

// handleOnboarding runs the race setup wizard: primary race, experience
// level, an empty metrics row and a plan spanning today to race week.
func (s *Server) handleOnboarding(w http.ResponseWriter, r *http.Request) {
	var in models.OnboardingInput
	if err := s.decode(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	today := s.views.Today()
	if in.RaceDate.Before(today) {
		s.writeError(w, r, &validationError{msg: "race_date must not be in the past"})
		return
	}
	userID := identityFromContext(r).UserID
	out, err := s.db.CompleteOnboarding(r.Context(), userID, in, func(race models.Race) models.TrainingPlan {
		return training.PlanForRace(race, in.ExperienceLevel, today)
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.publish(r, events.Event{Type: events.TypeRaceCreated, UserID: userID, SubjectID: out.Race.ID})
	writeJSON(w, http.StatusCreated, out)
}

func (s *Server) handleListTrainingPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := s.db.ListTrainingPlans(r.Context(), identityFromContext(r).UserID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if plans == nil {
		plans = []models.TrainingPlan{}
	}
	writeJSON(w, http.StatusOK, plans)
}
