package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// User routes sit behind auth.RequireAdmin, so no per-row policy check.

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(users, toUserDTO))
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	u, err := s.users.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserDTO(u))
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	var in UserDTO
	if err := decode(r, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	u := userFromDTO(in)
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if err := s.users.Add(r.Context(), u); err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/users/"+u.ID)
	writeJSON(w, http.StatusCreated, toUserDTO(u))
}

func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) {
	var in UserDTO
	if err := decode(r, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := matchPathID(&in.UserID, chi.URLParam(r, "id"), "userId"); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.users.Update(r.Context(), userFromDTO(in)); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	if err := s.users.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
