package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/hlog"

	"schedulerapi/internal/domain"
	"schedulerapi/internal/policy"
	"schedulerapi/internal/store"
)

const dueThisWeek = 7 * 24 * time.Hour

func jobOwner(j domain.Job) string { return j.UserID }

func (s *Server) listJobs(w http.ResponseWriter, r *http.Request) {
	p := principal(r)
	var (
		jobs []domain.Job
		err  error
	)
	if p.IsAdmin() {
		jobs, err = s.jobs.List(r.Context())
	} else {
		jobs, err = s.jobs.ListByUser(r.Context(), p.ID)
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(jobs, toJobDTO))
}

func (s *Server) filterJobs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var f store.JobFilter
	if v := q.Get("status"); v != "" {
		st, err := domain.ParseJobStatus(v)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		f.Status = st
	}
	if v := q.Get("priority"); v != "" {
		pr, err := domain.ParsePriority(v)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		f.Priority = pr
	}
	if p := principal(r); !p.IsAdmin() {
		f.UserID = p.ID
	}
	jobs, err := s.jobs.Filter(r.Context(), f)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(jobs, toJobDTO))
}

func (s *Server) jobsDueThisWeek(w http.ResponseWriter, r *http.Request) {
	var userID string
	if p := principal(r); !p.IsAdmin() {
		userID = p.ID
	}
	jobs, err := s.jobs.DueBefore(r.Context(), s.now().Add(dueThisWeek), userID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(jobs, toJobDTO))
}

func (s *Server) getJob(w http.ResponseWriter, r *http.Request) {
	j, ok := loadOwned(s, w, r, s.jobs.Get, jobOwner)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toJobDTO(j))
}

func (s *Server) createJob(w http.ResponseWriter, r *http.Request) {
	p := principal(r)
	var in JobDTO
	if err := decode(r, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	j := jobFromDTO(in)
	if j.ID == "" {
		j.ID = uuid.NewString()
	}
	if j.UserID == "" {
		j.UserID = p.ID
	}
	if err := policy.Authorize(p, j.UserID); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.checkProject(r.Context(), p, j.ProjectID); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.jobs.Add(r.Context(), j); err != nil {
		s.fail(w, r, err)
		return
	}
	s.notifyCreated(r, j)
	w.Header().Set("Location", "/api/jobs/"+j.ID)
	writeJSON(w, http.StatusCreated, toJobDTO(j))
}

// notifyCreated records and mails a StatusUpdate for a new job. The job is
// already stored, so failures are only logged.
func (s *Server) notifyCreated(r *http.Request, j domain.Job) {
	log := hlog.FromRequest(r)
	n := domain.Notification{
		ID:        uuid.NewString(),
		Type:      domain.StatusUpdate,
		Message:   "New Task Created",
		Timestamp: s.now(),
		UserID:    j.UserID,
	}
	if err := s.notes.Add(r.Context(), n); err != nil {
		log.Error().Err(err).Str("job_id", j.ID).Msg("failed to store job notification")
		return
	}
	if s.mail == nil {
		return
	}
	if err := s.mail.Send(r.Context(), n); err != nil {
		log.Warn().Err(err).Str("job_id", j.ID).Str("notification_id", n.ID).Msg("failed to mail job notification")
	}
}

func (s *Server) updateJob(w http.ResponseWriter, r *http.Request) {
	existing, ok := loadOwned(s, w, r, s.jobs.Get, jobOwner)
	if !ok {
		return
	}
	var in JobDTO
	if err := decode(r, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := matchPathID(&in.JobID, existing.ID, "jobId"); err != nil {
		s.fail(w, r, err)
		return
	}
	if in.UserID != "" && in.UserID != existing.UserID {
		s.fail(w, r, domain.NewValidationError("userId", "cannot be changed"))
		return
	}
	j := jobFromDTO(in)
	j.UserID = existing.UserID
	if !sameProject(j.ProjectID, existing.ProjectID) {
		if err := s.checkProject(r.Context(), principal(r), j.ProjectID); err != nil {
			s.fail(w, r, err)
			return
		}
	}
	if err := s.jobs.Update(r.Context(), j); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) assignJobToProject(w http.ResponseWriter, r *http.Request) {
	j, ok := loadOwned(s, w, r, s.jobs.Get, jobOwner)
	if !ok {
		return
	}
	projectID := chi.URLParam(r, "projectId")
	if err := s.checkProject(r.Context(), principal(r), &projectID); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.jobs.SetProject(r.Context(), j.ID, &projectID); err != nil {
		s.fail(w, r, err)
		return
	}
	writeMessage(w, "Job assigned to project.")
}

func (s *Server) removeJobFromProject(w http.ResponseWriter, r *http.Request) {
	j, ok := loadOwned(s, w, r, s.jobs.Get, jobOwner)
	if !ok {
		return
	}
	if err := s.jobs.SetProject(r.Context(), j.ID, nil); err != nil {
		s.fail(w, r, err)
		return
	}
	writeMessage(w, "Job removed from project.")
}

func (s *Server) deleteJob(w http.ResponseWriter, r *http.Request) {
	j, ok := loadOwned(s, w, r, s.jobs.Get, jobOwner)
	if !ok {
		return
	}
	if err := s.jobs.Delete(r.Context(), j.ID); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// checkProject requires a referenced project to exist and be accessible.
func (s *Server) checkProject(ctx context.Context, p domain.Principal, id *string) error {
	if id == nil {
		return nil
	}
	proj, err := s.projs.Get(ctx, *id)
	if err != nil {
		return err
	}
	return policy.Authorize(p, proj.UserID)
}

func sameProject(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
