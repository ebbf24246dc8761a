package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"schedulerapi/internal/domain"
)

type JobDTO struct {
	JobID       string           `json:"jobId" validate:"max=64"`
	Title       string           `json:"title" validate:"required,max=200"`
	Description string           `json:"description" validate:"max=2000"`
	DueDate     time.Time        `json:"dueDate" validate:"required"`
	Priority    domain.Priority  `json:"priority" validate:"omitempty,oneof=Low Medium High"`
	Status      domain.JobStatus `json:"status" validate:"omitempty,oneof=Pending InProgress Completed"`
	ProjectID   *string          `json:"projectId,omitempty" validate:"omitempty,min=1,max=64"`
	UserID      string           `json:"userId" validate:"max=64"`
}

type ProjectDTO struct {
	ProjectID   string `json:"projectId" validate:"max=64"`
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
	UserID      string `json:"userId" validate:"max=64"`
}

type NotificationDTO struct {
	NotificationID string                  `json:"notificationId" validate:"max=64"`
	Type           domain.NotificationType `json:"type" validate:"omitempty,oneof=DueDateReminder StatusUpdate"`
	Message        string                  `json:"message" validate:"required,max=2000"`
	Timestamp      time.Time               `json:"timestamp"`
	IsRead         bool                    `json:"isRead"`
	UserID         string                  `json:"userId" validate:"max=64"`
}

type UserDTO struct {
	UserID   string      `json:"userId" validate:"max=64"`
	Username string      `json:"username" validate:"required,max=100"`
	Email    string      `json:"email" validate:"required,email"`
	Role     domain.Role `json:"role" validate:"omitempty,oneof=Admin"`
}

func toJobDTO(j domain.Job) JobDTO {
	return JobDTO{
		JobID:       j.ID,
		Title:       j.Title,
		Description: j.Description,
		DueDate:     j.DueDate,
		Priority:    j.Priority,
		Status:      j.Status,
		ProjectID:   j.ProjectID,
		UserID:      j.UserID,
	}
}

// jobFromDTO fills unset priority and status with Low and Pending.
func jobFromDTO(d JobDTO) domain.Job {
	j := domain.Job{
		ID:          d.JobID,
		Title:       d.Title,
		Description: d.Description,
		DueDate:     d.DueDate,
		Priority:    d.Priority,
		Status:      d.Status,
		ProjectID:   d.ProjectID,
		UserID:      d.UserID,
	}
	if j.Priority == "" {
		j.Priority = domain.PriorityLow
	}
	if j.Status == "" {
		j.Status = domain.StatusPending
	}
	return j
}

func toProjectDTO(p domain.Project) ProjectDTO {
	return ProjectDTO{ProjectID: p.ID, Name: p.Name, Description: p.Description, UserID: p.UserID}
}

func projectFromDTO(d ProjectDTO) domain.Project {
	return domain.Project{ID: d.ProjectID, Name: d.Name, Description: d.Description, UserID: d.UserID}
}

func toNotificationDTO(n domain.Notification) NotificationDTO {
	return NotificationDTO{
		NotificationID: n.ID,
		Type:           n.Type,
		Message:        n.Message,
		Timestamp:      n.Timestamp,
		IsRead:         n.IsRead,
		UserID:         n.UserID,
	}
}

func notificationFromDTO(d NotificationDTO) domain.Notification {
	n := domain.Notification{
		ID:        d.NotificationID,
		Type:      d.Type,
		Message:   d.Message,
		Timestamp: d.Timestamp,
		IsRead:    d.IsRead,
		UserID:    d.UserID,
	}
	if n.Type == "" {
		n.Type = domain.DueDateReminder
	}
	return n
}

func toUserDTO(u domain.User) UserDTO {
	return UserDTO{UserID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role}
}

func userFromDTO(d UserDTO) domain.User {
	return domain.User{ID: d.UserID, Username: d.Username, Email: d.Email, Role: d.Role}
}

func mapSlice[T, D any](in []T, f func(T) D) []D {
	out := make([]D, 0, len(in))
	for _, v := range in {
		out = append(out, f(v))
	}
	return out
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decode reads a JSON body into dst and validates it. Errors wrap
// domain.ErrValidation.
func decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	if err := dec.Decode(dst); err != nil {
		return domain.NewValidationError("", "invalid request body: "+err.Error())
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return domain.NewValidationError(verrs[0].Field(), describe(verrs[0]))
		}
		return domain.NewValidationError("", err.Error())
	}
	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	default:
		return "failed the " + fe.Tag() + " check"
	}
}

// matchPathID fills an empty body id from the path and rejects a different one.
func matchPathID(bodyID *string, pathID, field string) error {
	if *bodyID == "" {
		*bodyID = pathID
		return nil
	}
	if *bodyID != pathID {
		return domain.NewValidationError(field, "does not match the id in the path")
	}
	return nil
}
