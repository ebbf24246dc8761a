package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"schedulerapi/internal/auth"
	"schedulerapi/internal/domain"
	"schedulerapi/internal/mail"
	"schedulerapi/internal/policy"
	"schedulerapi/internal/store"
)

type JobRepository interface {
	store.Repository[domain.Job]
	ListByUser(ctx context.Context, userID string) ([]domain.Job, error)
	Filter(ctx context.Context, f store.JobFilter) ([]domain.Job, error)
	DueBefore(ctx context.Context, cutoff time.Time, userID string) ([]domain.Job, error)
	SetProject(ctx context.Context, id string, projectID *string) error
}

type ProjectRepository interface {
	store.Repository[domain.Project]
	ListByUser(ctx context.Context, userID string) ([]domain.Project, error)
}

type NotificationRepository interface {
	store.Repository[domain.Notification]
	ListByUser(ctx context.Context, userID string) ([]domain.Notification, error)
	Mark(ctx context.Context, id string, read bool, at time.Time) error
}

// Deps wires the server to its collaborators. Now and SweepState are optional.
type Deps struct {
	Jobs          JobRepository
	Projects      ProjectRepository
	Notifications NotificationRepository
	Users         store.Repository[domain.User]
	Tokens        auth.TokenValidator
	Mailer        mail.Mailer
	Logger        zerolog.Logger
	Now           func() time.Time
	SweepState    func() string
}

type Server struct {
	r     *chi.Mux
	jobs  JobRepository
	projs ProjectRepository
	notes NotificationRepository
	users store.Repository[domain.User]
	mail  mail.Mailer
	now   func() time.Time
	sweep func() string
}

func NewServer(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		hlog.NewHandler(d.Logger),
		hlog.AccessHandler(accessLog),
		middleware.Recoverer,
	)

	s := &Server{
		r:     r,
		jobs:  d.Jobs,
		projs: d.Projects,
		notes: d.Notifications,
		users: d.Users,
		mail:  d.Mailer,
		now:   d.Now,
		sweep: d.SweepState,
	}
	if s.now == nil {
		s.now = time.Now
	}

	r.Get("/health", s.health)
	r.Get("/metrics", s.metrics)

	r.Route("/api", func(r chi.Router) {
		r.Use(auth.Middleware(d.Tokens))

		r.Route("/jobs", func(r chi.Router) {
			r.Get("/", s.listJobs)
			r.Post("/", s.createJob)
			r.Get("/filter", s.filterJobs)
			r.Get("/due-this-week", s.jobsDueThisWeek)
			r.Get("/{id}", s.getJob)
			r.Put("/{id}", s.updateJob)
			r.Put("/{id}/assign-to-project/{projectId}", s.assignJobToProject)
			r.Put("/{id}/remove-from-project", s.removeJobFromProject)
			r.Delete("/{id}", s.deleteJob)
		})
		r.Route("/projects", func(r chi.Router) {
			r.Get("/", s.listProjects)
			r.Post("/", s.createProject)
			r.Get("/{id}", s.getProject)
			r.Put("/{id}", s.updateProject)
			r.Delete("/{id}", s.deleteProject)
		})
		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", s.listNotifications)
			r.Post("/", s.createNotification)
			r.Get("/{id}", s.getNotification)
			r.Put("/{id}", s.updateNotification)
			r.Put("/{id}/mark", s.markNotification)
			r.Delete("/{id}", s.deleteNotification)
		})
		r.Route("/users", func(r chi.Router) {
			r.Use(auth.RequireAdmin)
			r.Get("/", s.listUsers)
			r.Post("/", s.createUser)
			r.Get("/{id}", s.getUser)
			r.Put("/{id}", s.updateUser)
			r.Delete("/{id}", s.deleteUser)
		})
	})

	return r
}

func accessLog(r *http.Request, status, size int, d time.Duration) {
	hlog.FromRequest(r).Info().
		Str("request_id", middleware.GetReqID(r.Context())).
		Str("method", r.Method).
		Stringer("url", r.URL).
		Int("status", status).
		Int("size", size).
		Dur("duration", d).
		Msg("request")
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	body := map[string]string{"status": "ok"}
	if s.sweep != nil {
		body["sweep"] = s.sweep()
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) metrics(w http.ResponseWriter, r *http.Request) {
	running := 0
	if s.sweep != nil && s.sweep() == "running" {
		running = 1
	}
	w.Header().Set("content-type", "text/plain; version=0.0.4")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "scheduler_up 1\nscheduler_sweep_running %d\n", running)
}

// principal is always present behind auth.Middleware.
func principal(r *http.Request) domain.Principal {
	p, _ := auth.PrincipalFrom(r.Context())
	return p
}

// loadOwned fetches the resource named by the {id} path parameter and checks
// the caller may act on it. On failure the response has already been written.
func loadOwned[T any](s *Server, w http.ResponseWriter, r *http.Request, get func(context.Context, string) (T, error), owner func(T) string) (T, bool) {
	v, err := get(r.Context(), chi.URLParam(r, "id"))
	if err == nil {
		err = policy.Authorize(principal(r), owner(v))
	}
	if err != nil {
		s.fail(w, r, err)
		var zero T
		return zero, false
	}
	return v, true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	msg := err.Error()
	switch code {
	case http.StatusInternalServerError:
		hlog.FromRequest(r).Error().Err(err).Msg("request failed")
		msg = "internal server error"
	case http.StatusForbidden:
		msg = domain.ErrForbidden.Error()
	case http.StatusConflict:
		msg = "resource already exists"
		if errors.Is(err, store.ErrReferenced) {
			msg = store.ErrReferenced.Error()
		}
	}
	writeError(w, code, msg)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("content-type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func writeMessage(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusOK, map[string]string{"message": msg})
}
