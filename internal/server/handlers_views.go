package server

import (
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tritrack/tritrack/internal/caldate"
	"github.com/tritrack/tritrack/internal/export"
	"github.com/tritrack/tritrack/internal/models"
	"github.com/tritrack/tritrack/internal/storage"
	"github.com/tritrack/tritrack/internal/training"
	"github.com/tritrack/tritrack/internal/views"
)

func (s *Server) handleWeekView(w http.ResponseWriter, r *http.Request) {
	offset, err := parseIntParam(r, "offset", 0)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.views.Week(r.Context(), identityFromContext(r).UserID, offset))
}

func (s *Server) handleCalendarView(w http.ResponseWriter, r *http.Request) {
	offset, err := parseIntParam(r, "offset", 0)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.views.Calendar(r.Context(), identityFromContext(r).UserID, offset))
}

func (s *Server) handleDayView(w http.ResponseWriter, r *http.Request) {
	d, err := parseDateParam(r, "date")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if d.IsZero() {
		d = s.views.Today()
	}
	writeJSON(w, http.StatusOK, s.views.Day(r.Context(), identityFromContext(r).UserID, d))
}

func (s *Server) handleDashboardView(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.views.Dashboard(r.Context(), identityFromContext(r).UserID))
}

func (s *Server) handleStatsView(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.views.Stats(r.Context(), identityFromContext(r).UserID))
}

func (s *Server) handleSummaryView(w http.ResponseWriter, r *http.Request) {
	f, err := parseDateFilter(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	bucket := r.URL.Query().Get("bucket")
	rng := views.DefaultSummaryRange(bucket, s.views.Today())
	if !f.Start.IsZero() {
		rng.Start = f.Start
	}
	if !f.End.IsZero() {
		rng.End = f.End
	}
	writeJSON(w, http.StatusOK, s.views.Summary(r.Context(), identityFromContext(r).UserID, bucket, rng))
}

// handleExport streams the merged workout log of [start, end] as CSV or
// JSON. Unlike the views it fails on read errors, since a silently empty
// export would look like lost data.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	f, err := parseDateFilter(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	f.Limit = 0
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "json" {
		s.writeError(w, r, &validationError{msg: "format must be csv or json"})
		return
	}

	userID := identityFromContext(r).UserID
	var (
		planned   []models.PlannedWorkout
		completed []models.CompletedWorkout
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		planned, err = s.db.ListPlannedWorkouts(ctx, userID, f)
		return err
	})
	g.Go(func() error {
		var err error
		completed, err = s.db.ListCompletedWorkouts(ctx, userID, f)
		return err
	})
	if err := g.Wait(); err != nil {
		s.writeError(w, r, err)
		return
	}

	entries := training.Merge(planned, completed)
	training.SortByDate(entries)

	name := exportName(f)
	if format == "json" {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", `attachment; filename="`+name+`.json"`)
		err = export.ToJSON(w, caldate.Range{Start: f.Start, End: f.End}, entries, time.Now())
	} else {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="`+name+`.csv"`)
		err = export.ToCSV(w, entries)
	}
	if err != nil {
		s.log.Error("writing export", "format", format, "error", err)
	}
}

func exportName(f storage.DateFilter) string {
	name := "tritrack-workouts"
	if !f.Start.IsZero() {
		name += "-" + f.Start.String()
	}
	if !f.End.IsZero() {
		name += "-" + f.End.String()
	}
	return name
}
