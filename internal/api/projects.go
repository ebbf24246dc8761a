package api

import (
	"net/http"

	"github.com/google/uuid"

	"schedulerapi/internal/domain"
	"schedulerapi/internal/policy"
)

func projectOwner(p domain.Project) string { return p.UserID }

func (s *Server) listProjects(w http.ResponseWriter, r *http.Request) {
	p := principal(r)
	var (
		projects []domain.Project
		err      error
	)
	if p.IsAdmin() {
		projects, err = s.projs.List(r.Context())
	} else {
		projects, err = s.projs.ListByUser(r.Context(), p.ID)
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(projects, toProjectDTO))
}

func (s *Server) getProject(w http.ResponseWriter, r *http.Request) {
	proj, ok := loadOwned(s, w, r, s.projs.Get, projectOwner)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toProjectDTO(proj))
}

func (s *Server) createProject(w http.ResponseWriter, r *http.Request) {
	p := principal(r)
	var in ProjectDTO
	if err := decode(r, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	proj := projectFromDTO(in)
	if proj.ID == "" {
		proj.ID = uuid.NewString()
	}
	if proj.UserID == "" {
		proj.UserID = p.ID
	}
	if err := policy.Authorize(p, proj.UserID); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.projs.Add(r.Context(), proj); err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/projects/"+proj.ID)
	writeJSON(w, http.StatusCreated, toProjectDTO(proj))
}

func (s *Server) updateProject(w http.ResponseWriter, r *http.Request) {
	existing, ok := loadOwned(s, w, r, s.projs.Get, projectOwner)
	if !ok {
		return
	}
	var in ProjectDTO
	if err := decode(r, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := matchPathID(&in.ProjectID, existing.ID, "projectId"); err != nil {
		s.fail(w, r, err)
		return
	}
	if in.UserID != "" && in.UserID != existing.UserID {
		s.fail(w, r, domain.NewValidationError("userId", "cannot be changed"))
		return
	}
	proj := projectFromDTO(in)
	proj.UserID = existing.UserID
	if err := s.projs.Update(r.Context(), proj); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// deleteProject also removes the project's jobs.
func (s *Server) deleteProject(w http.ResponseWriter, r *http.Request) {
	proj, ok := loadOwned(s, w, r, s.projs.Get, projectOwner)
	if !ok {
		return
	}
	if err := s.projs.Delete(r.Context(), proj.ID); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
