// Package store persists jobs, projects, notifications and users.
package store

import (
	"context"

	"schedulerapi/internal/domain"
)

// Repository is the per-entity CRUD contract. Update and Delete address the
// row by id and return the entity's NotFound error when it is absent.
type Repository[T any] interface {
	Get(ctx context.Context, id string) (T, error)
	List(ctx context.Context) ([]T, error)
	Add(ctx context.Context, v T) error
	Update(ctx context.Context, v T) error
	Delete(ctx context.Context, id string) error
}

var (
	_ Repository[domain.Job]          = (*JobStore)(nil)
	_ Repository[domain.Project]      = (*ProjectStore)(nil)
	_ Repository[domain.Notification] = (*NotificationStore)(nil)
	_ Repository[domain.User]         = (*UserStore)(nil)
)
