package server

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tritrack/tritrack/internal/auth"
	"github.com/tritrack/tritrack/internal/blob"
	"github.com/tritrack/tritrack/internal/config"
	"github.com/tritrack/tritrack/internal/events"
	"github.com/tritrack/tritrack/internal/models"
	"github.com/tritrack/tritrack/internal/storage"
	"github.com/tritrack/tritrack/internal/views"
)

// Store is the persistence the handlers need. *storage.DB implements it.
type Store interface {
	views.Source

	Ping(ctx context.Context) error

	EnsureProfile(ctx context.Context, userID uuid.UUID, email string) (*models.Profile, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	GetProfileByEmail(ctx context.Context, email string) (*models.Profile, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, in models.ProfileInput) (*models.Profile, error)
	SetAvatarURL(ctx context.Context, userID uuid.UUID, url string) error

	ListRaces(ctx context.Context, userID uuid.UUID) ([]models.Race, error)
	GetRace(ctx context.Context, userID, raceID uuid.UUID) (*models.Race, error)
	CreateRace(ctx context.Context, userID uuid.UUID, in models.RaceInput) (*models.Race, error)
	UpdateRace(ctx context.Context, userID, raceID uuid.UUID, in models.RaceInput) (*models.Race, error)
	DeleteRace(ctx context.Context, userID, raceID uuid.UUID) error
	GetRaceGoals(ctx context.Context, userID, raceID uuid.UUID) (*models.RaceGoal, error)
	UpsertRaceGoals(ctx context.Context, userID, raceID uuid.UUID, in models.RaceGoal) (*models.RaceGoal, error)
	CompleteOnboarding(ctx context.Context, userID uuid.UUID, in models.OnboardingInput,
		planFor func(models.Race) models.TrainingPlan) (*storage.Onboarding, error)

	GetAthleteMetrics(ctx context.Context, userID uuid.UUID) (*models.AthleteMetrics, error)
	UpsertAthleteMetrics(ctx context.Context, userID uuid.UUID, in models.AthleteMetrics) (*models.AthleteMetrics, error)
	ListTrainingPlans(ctx context.Context, userID uuid.UUID) ([]models.TrainingPlan, error)

	GetPlannedWorkout(ctx context.Context, userID, id uuid.UUID) (*models.PlannedWorkout, error)
	CreatePlannedWorkout(ctx context.Context, userID uuid.UUID, in models.PlannedWorkoutInput) (*models.PlannedWorkout, error)
	UpdatePlannedWorkout(ctx context.Context, userID, id uuid.UUID, in models.PlannedWorkoutInput) (*models.PlannedWorkout, error)
	DeletePlannedWorkout(ctx context.Context, userID, id uuid.UUID) error

	GetCompletedWorkout(ctx context.Context, userID, id uuid.UUID) (*models.CompletedWorkout, error)
	CreateCompletedWorkout(ctx context.Context, userID uuid.UUID, in models.CompletedWorkoutInput) (*models.CompletedWorkout, error)
	UpdateCompletedWorkout(ctx context.Context, userID, id uuid.UUID, in models.CompletedWorkoutInput) (*models.CompletedWorkout, error)
	DeleteCompletedWorkout(ctx context.Context, userID, id uuid.UUID) error
}

// AvatarStore presigns avatar uploads and downloads. *blob.Store implements it.
type AvatarStore interface {
	PresignAvatarUpload(ctx context.Context, userID uuid.UUID, contentType string) (*blob.Upload, error)
	PresignDownload(ctx context.Context, key string) (string, error)
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	db        Store
	views     *views.Service
	events    events.Publisher
	avatars   AvatarStore
	tailscale whoIsClient
	validate  *validator.Validate
	auth      config.AuthConfig
	log       *slog.Logger
	router    chi.Router
}

// New creates a new Server with all routes configured. Events are dropped
// and avatar uploads are disabled until SetPublisher and SetAvatars are called.
func New(db Store, viewService *views.Service, authCfg config.AuthConfig, log *slog.Logger) *Server {
	s := &Server{
		db:       db,
		views:    viewService,
		events:   events.Nop{},
		validate: newValidator(),
		auth:     authCfg,
		log:      log,
		router:   chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// SetPublisher sets where workout change events go.
func (s *Server) SetPublisher(p events.Publisher) {
	s.events = p
}

// SetAvatars enables the avatar endpoints.
func (s *Server) SetAvatars(a AvatarStore) {
	s.avatars = a
}

// SetTailscale enables identifying callers by their tailnet login.
func (s *Server) SetTailscale(lc whoIsClient) {
	s.tailscale = lc
}

// EnableMetrics exposes the Prometheus registry at /metrics.
func (s *Server) EnableMetrics() {
	s.router.Handle("/metrics", promhttp.Handler())
}

// SetMCP mounts the MCP streamable HTTP handler at /mcp behind the same
// authentication as the REST API.
func (s *Server) SetMCP(h http.Handler) {
	s.router.Group(func(r chi.Router) {
		r.Use(s.identify)
		r.Handle("/mcp", h)
	})
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(s.identify)
		r.Use(s.provisionProfile)

		r.Get("/me", s.handleMe)

		r.Get("/profile", s.handleGetProfile)
		r.Put("/profile", s.handleUpdateProfile)
		r.Get("/profile/avatar", s.handleGetAvatar)
		r.Post("/profile/avatar", s.handleCreateAvatarUpload)

		r.Get("/races", s.handleListRaces)
		r.Post("/races", s.handleCreateRace)
		r.Get("/races/primary", s.handlePrimaryRace)
		r.Put("/races/{id}", s.handleUpdateRace)
		r.Delete("/races/{id}", s.handleDeleteRace)
		r.Get("/races/{id}/goals", s.handleGetRaceGoals)
		r.Put("/races/{id}/goals", s.handlePutRaceGoals)

		r.Post("/onboarding", s.handleOnboarding)
		r.Get("/athlete-metrics", s.handleGetAthleteMetrics)
		r.Put("/athlete-metrics", s.handlePutAthleteMetrics)
		r.Get("/training-plans", s.handleListTrainingPlans)

		r.Route("/workouts", func(r chi.Router) {
			r.Get("/planned", s.handleListPlanned)
			r.Post("/planned", s.handleCreatePlanned)
			r.Put("/planned/{id}", s.handleUpdatePlanned)
			r.Delete("/planned/{id}", s.handleDeletePlanned)
			r.Post("/planned/{id}/complete", s.handleCompletePlanned)

			r.Get("/completed", s.handleListCompleted)
			r.Post("/completed", s.handleCreateCompleted)
			r.Put("/completed/{id}", s.handleUpdateCompleted)
			r.Delete("/completed/{id}", s.handleDeleteCompleted)

			r.Get("/recent", s.handleRecent)
		})

		r.Route("/views", func(r chi.Router) {
			r.Get("/week", s.handleWeekView)
			r.Get("/calendar", s.handleCalendarView)
			r.Get("/day", s.handleDayView)
			r.Get("/dashboard", s.handleDashboardView)
			r.Get("/stats", s.handleStatsView)
			r.Get("/summary", s.handleSummaryView)
		})

		r.Get("/export", s.handleExport)
	})
}

// identify resolves the caller from, in order, an import API key, a bearer
// token, the configured dev user or the tailnet login, and rejects the
// request when none applies.
func (s *Server) identify(next http.Handler) http.Handler {
	chain := s.tailnetIdentity(RequireIdentity(next))
	if s.auth.Mode == config.AuthModeDev {
		chain = DevIdentity(s.auth.DevUser(), s.auth.DevEmail)(chain)
	}
	if s.auth.JWTSecret != "" {
		chain = BearerAuth(auth.Config{Secret: s.auth.JWTSecret, Issuer: s.auth.JWTIssuer})(chain)
	}
	if s.auth.APIKey != "" {
		chain = APIKeyAuth(s.auth.APIKey, s.auth.KeyUser())(chain)
	}
	return chain
}

// tailnetIdentity consults the WhoIs client per request so that one set by
// SetTailscale after the routes were built still applies.
func (s *Server) tailnetIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.tailscale == nil {
			next.ServeHTTP(w, r)
			return
		}
		TailscaleIdentity(s.tailscale, s.profileIDByEmail)(next).ServeHTTP(w, r)
	})
}

func (s *Server) profileIDByEmail(ctx context.Context, email string) (uuid.UUID, error) {
	p, err := s.db.GetProfileByEmail(ctx, email)
	if err != nil {
		return uuid.Nil, err
	}
	return p.ID, nil
}

// provisionProfile makes sure the caller's profile row exists before any
// write, since every table references it.
func (s *Server) provisionProfile(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			id := identityFromContext(r)
			if id.Source != SourceTailscale {
				if _, err := s.db.EnsureProfile(r.Context(), id.UserID, id.Email); err != nil {
					s.log.Error("provisioning profile", "user_id", id.UserID, "error", err)
					writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "provisioning profile failed"})
					return
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}

// SetFrontend mounts the web client's static files.
// Unmatched routes serve index.html for client-side routing.
func (s *Server) SetFrontend(webFS fs.FS) {
	fileServer := http.FileServerFS(webFS)

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		f, err := webFS.Open(r.URL.Path[1:])
		if err == nil {
			f.Close()
			fileServer.ServeHTTP(w, r)
			return
		}
		r.URL.Path = "/"
		fileServer.ServeHTTP(w, r)
	})
}
