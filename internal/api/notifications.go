package api

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"schedulerapi/internal/domain"
	"schedulerapi/internal/policy"
)

func notificationOwner(n domain.Notification) string { return n.UserID }

func (s *Server) listNotifications(w http.ResponseWriter, r *http.Request) {
	p := principal(r)
	var (
		notes []domain.Notification
		err   error
	)
	if p.IsAdmin() {
		notes, err = s.notes.List(r.Context())
	} else {
		notes, err = s.notes.ListByUser(r.Context(), p.ID)
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(notes, toNotificationDTO))
}

func (s *Server) getNotification(w http.ResponseWriter, r *http.Request) {
	n, ok := loadOwned(s, w, r, s.notes.Get, notificationOwner)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toNotificationDTO(n))
}

func (s *Server) createNotification(w http.ResponseWriter, r *http.Request) {
	p := principal(r)
	var in NotificationDTO
	if err := decode(r, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	n := notificationFromDTO(in)
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.UserID == "" {
		n.UserID = p.ID
	}
	if n.Timestamp.IsZero() {
		n.Timestamp = s.now()
	}
	if err := policy.Authorize(p, n.UserID); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.notes.Add(r.Context(), n); err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/notifications/"+n.ID)
	writeJSON(w, http.StatusCreated, toNotificationDTO(n))
}

func (s *Server) updateNotification(w http.ResponseWriter, r *http.Request) {
	existing, ok := loadOwned(s, w, r, s.notes.Get, notificationOwner)
	if !ok {
		return
	}
	var in NotificationDTO
	if err := decode(r, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := matchPathID(&in.NotificationID, existing.ID, "notificationId"); err != nil {
		s.fail(w, r, err)
		return
	}
	if in.UserID != "" && in.UserID != existing.UserID {
		s.fail(w, r, domain.NewValidationError("userId", "cannot be changed"))
		return
	}
	n := notificationFromDTO(in)
	n.UserID = existing.UserID
	if n.Timestamp.IsZero() {
		n.Timestamp = existing.Timestamp
	}
	if err := s.notes.Update(r.Context(), n); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) markNotification(w http.ResponseWriter, r *http.Request) {
	read := false
	if v := r.URL.Query().Get("markAsRead"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			s.fail(w, r, domain.NewValidationError("markAsRead", "must be true or false"))
			return
		}
		read = b
	}
	n, ok := loadOwned(s, w, r, s.notes.Get, notificationOwner)
	if !ok {
		return
	}
	if err := s.notes.Mark(r.Context(), n.ID, read, s.now()); err != nil {
		s.fail(w, r, err)
		return
	}
	writeMessage(w, "Notification marked.")
}

func (s *Server) deleteNotification(w http.ResponseWriter, r *http.Request) {
	n, ok := loadOwned(s, w, r, s.notes.Get, notificationOwner)
	if !ok {
		return
	}
	if err := s.notes.Delete(r.Context(), n.ID); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
