package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"schedulerapi/internal/domain"
)

const userColumns = `id,username,email,role`

type UserStore struct{ db *sqlx.DB }

func NewUserStore(db *sqlx.DB) *UserStore { return &UserStore{db: db} }

func (s *UserStore) Get(ctx context.Context, id string) (domain.User, error) {
	var u domain.User
	err := s.db.GetContext(ctx, &u, s.db.Rebind(`SELECT `+userColumns+` FROM users WHERE id=?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *UserStore) List(ctx context.Context) ([]domain.User, error) {
	users := []domain.User{}
	if err := s.db.SelectContext(ctx, &users, `SELECT `+userColumns+` FROM users ORDER BY username, id`); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *UserStore) Add(ctx context.Context, u domain.User) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`INSERT INTO users (`+userColumns+`) VALUES (?,?,?,?)`),
		u.ID, u.Username, u.Email, u.Role)
	return translate(err, "add user")
}

func (s *UserStore) Update(ctx context.Context, u domain.User) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`UPDATE users SET username=?,email=?,role=? WHERE id=?`),
		u.Username, u.Email, u.Role, u.ID)
	if err != nil {
		return translate(err, "update user")
	}
	return requireAffected(res, domain.ErrUserNotFound)
}

// Delete removes the user and their projects. It fails with ErrConflict while
// jobs or notifications still reference the user.
func (s *UserStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM users WHERE id=?`), id)
	if err != nil {
		return translate(err, "delete user")
	}
	return requireAffected(res, domain.ErrUserNotFound)
}
