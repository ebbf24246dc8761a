package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"schedulerapi/internal/domain"
)

const projectColumns = `id,name,description,user_id`

type ProjectStore struct{ db *sqlx.DB }

func NewProjectStore(db *sqlx.DB) *ProjectStore { return &ProjectStore{db: db} }

func (s *ProjectStore) Get(ctx context.Context, id string) (domain.Project, error) {
	var p domain.Project
	err := s.db.GetContext(ctx, &p, s.db.Rebind(`SELECT `+projectColumns+` FROM projects WHERE id=?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Project{}, domain.ErrProjectNotFound
	}
	if err != nil {
		return domain.Project{}, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

func (s *ProjectStore) List(ctx context.Context) ([]domain.Project, error) {
	projects := []domain.Project{}
	err := s.db.SelectContext(ctx, &projects, `SELECT `+projectColumns+` FROM projects ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

func (s *ProjectStore) ListByUser(ctx context.Context, userID string) ([]domain.Project, error) {
	projects := []domain.Project{}
	err := s.db.SelectContext(ctx, &projects,
		s.db.Rebind(`SELECT `+projectColumns+` FROM projects WHERE user_id=? ORDER BY name, id`), userID)
	if err != nil {
		return nil, fmt.Errorf("list user projects: %w", err)
	}
	return projects, nil
}

func (s *ProjectStore) Add(ctx context.Context, p domain.Project) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`INSERT INTO projects (`+projectColumns+`) VALUES (?,?,?,?)`),
		p.ID, p.Name, p.Description, p.UserID)
	return translate(err, "add project")
}

func (s *ProjectStore) Update(ctx context.Context, p domain.Project) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`UPDATE projects SET name=?,description=? WHERE id=?`),
		p.Name, p.Description, p.ID)
	if err != nil {
		return translate(err, "update project")
	}
	return requireAffected(res, domain.ErrProjectNotFound)
}

// Delete removes the project together with its jobs.
func (s *ProjectStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM projects WHERE id=?`), id)
	if err != nil {
		return translate(err, "delete project")
	}
	return requireAffected(res, domain.ErrProjectNotFound)
}
