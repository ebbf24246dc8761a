package domain

import (
	"strings"
	"time"
)

type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

type JobStatus string

const (
	StatusPending    JobStatus = "Pending"
	StatusInProgress JobStatus = "InProgress"
	StatusCompleted  JobStatus = "Completed"
)

type NotificationType string

const (
	DueDateReminder NotificationType = "DueDateReminder"
	StatusUpdate    NotificationType = "StatusUpdate"
)

type Role string

const (
	RoleAdmin Role = "Admin"
	RoleUser  Role = ""
)

type Job struct {
	ID          string    `db:"id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	DueDate     time.Time `db:"due_date"`
	Priority    Priority  `db:"priority"`
	Status      JobStatus `db:"status"`
	UserID      string    `db:"user_id"`
	ProjectID   *string   `db:"project_id"`
}

type Project struct {
	ID          string `db:"id"`
	Name        string `db:"name"`
	Description string `db:"description"`
	UserID      string `db:"user_id"`
}

type Notification struct {
	ID        string           `db:"id"`
	Type      NotificationType `db:"type"`
	Message   string           `db:"message"`
	Timestamp time.Time        `db:"timestamp"`
	IsRead    bool             `db:"is_read"`
	UserID    string           `db:"user_id"`
}

type User struct {
	ID       string `db:"id"`
	Username string `db:"username"`
	Email    string `db:"email"`
	Role     Role   `db:"role"`
}

// Principal is the authenticated user acting on a request.
type Principal struct {
	ID   string
	Name string
	Role Role
}

func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

func ParsePriority(s string) (Priority, error) {
	for _, p := range []Priority{PriorityLow, PriorityMedium, PriorityHigh} {
		if strings.EqualFold(s, string(p)) {
			return p, nil
		}
	}
	return "", NewValidationError("priority", "must be one of Low, Medium, High")
}

func ParseJobStatus(s string) (JobStatus, error) {
	for _, st := range []JobStatus{StatusPending, StatusInProgress, StatusCompleted} {
		if strings.EqualFold(s, string(st)) {
			return st, nil
		}
	}
	return "", NewValidationError("status", "must be one of Pending, InProgress, Completed")
}

func ParseNotificationType(s string) (NotificationType, error) {
	for _, t := range []NotificationType{DueDateReminder, StatusUpdate} {
		if strings.EqualFold(s, string(t)) {
			return t, nil
		}
	}
	return "", NewValidationError("type", "must be one of DueDateReminder, StatusUpdate")
}

func ParseRole(s string) (Role, error) {
	switch {
	case s == "":
		return RoleUser, nil
	case strings.EqualFold(s, string(RoleAdmin)):
		return RoleAdmin, nil
	}
	return "", NewValidationError("role", "must be Admin or empty")
}
