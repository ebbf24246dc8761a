package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"schedulerapi/internal/domain"
)

const jobColumns = `id,title,description,due_date,priority,status,user_id,project_id`

type JobStore struct{ db *sqlx.DB }

func NewJobStore(db *sqlx.DB) *JobStore { return &JobStore{db: db} }

// JobFilter narrows a job listing. Zero fields are ignored.
type JobFilter struct {
	UserID   string
	Status   domain.JobStatus
	Priority domain.Priority
}

func (s *JobStore) Get(ctx context.Context, id string) (domain.Job, error) {
	var j domain.Job
	err := s.db.GetContext(ctx, &j, s.db.Rebind(`SELECT `+jobColumns+` FROM jobs WHERE id=?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Job{}, domain.ErrJobNotFound
	}
	if err != nil {
		return domain.Job{}, fmt.Errorf("get job: %w", err)
	}
	return j, nil
}

func (s *JobStore) List(ctx context.Context) ([]domain.Job, error) {
	return s.Filter(ctx, JobFilter{})
}

func (s *JobStore) ListByUser(ctx context.Context, userID string) ([]domain.Job, error) {
	return s.Filter(ctx, JobFilter{UserID: userID})
}

func (s *JobStore) Filter(ctx context.Context, f JobFilter) ([]domain.Job, error) {
	var (
		conds []string
		args  []any
	)
	if f.UserID != "" {
		conds = append(conds, "user_id=?")
		args = append(args, f.UserID)
	}
	if f.Status != "" {
		conds = append(conds, "status=?")
		args = append(args, f.Status)
	}
	if f.Priority != "" {
		conds = append(conds, "priority=?")
		args = append(args, f.Priority)
	}
	q := `SELECT ` + jobColumns + ` FROM jobs`
	if len(conds) > 0 {
		q += ` WHERE ` + strings.Join(conds, " AND ")
	}
	return s.selectJobs(ctx, "list jobs", q+` ORDER BY due_date, id`, args...)
}

// DueBefore returns jobs due at or before cutoff, optionally for one user.
func (s *JobStore) DueBefore(ctx context.Context, cutoff time.Time, userID string) ([]domain.Job, error) {
	q := `SELECT ` + jobColumns + ` FROM jobs WHERE due_date <= ?`
	args := []any{utc(cutoff)}
	if userID != "" {
		q += ` AND user_id = ?`
		args = append(args, userID)
	}
	return s.selectJobs(ctx, "list due jobs", q+` ORDER BY due_date, id`, args...)
}

// DueOrCompleted returns jobs due at or before cutoff or already completed,
// earliest due date first.
func (s *JobStore) DueOrCompleted(ctx context.Context, cutoff time.Time) ([]domain.Job, error) {
	return s.selectJobs(ctx, "list reminder jobs", `SELECT `+jobColumns+` FROM jobs
WHERE due_date <= ? OR status = ?
ORDER BY due_date, id`, utc(cutoff), domain.StatusCompleted)
}

func (s *JobStore) selectJobs(ctx context.Context, op, q string, args ...any) ([]domain.Job, error) {
	jobs := []domain.Job{}
	if err := s.db.SelectContext(ctx, &jobs, s.db.Rebind(q), args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return jobs, nil
}

func (s *JobStore) Add(ctx context.Context, j domain.Job) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
INSERT INTO jobs (`+jobColumns+`) VALUES (?,?,?,?,?,?,?,?)`),
		j.ID, j.Title, j.Description, utc(j.DueDate), j.Priority, j.Status, j.UserID, j.ProjectID)
	return translate(err, "add job")
}

// Update overwrites the mutable fields of the job with j.ID. The owner is
// never changed.
func (s *JobStore) Update(ctx context.Context, j domain.Job) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`
UPDATE jobs SET title=?,description=?,due_date=?,priority=?,status=?,project_id=? WHERE id=?`),
		j.Title, j.Description, utc(j.DueDate), j.Priority, j.Status, j.ProjectID, j.ID)
	if err != nil {
		return translate(err, "update job")
	}
	return requireAffected(res, domain.ErrJobNotFound)
}

// SetProject assigns the job to projectID, or detaches it when nil.
func (s *JobStore) SetProject(ctx context.Context, id string, projectID *string) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`UPDATE jobs SET project_id=? WHERE id=?`), projectID, id)
	if err != nil {
		return translate(err, "set job project")
	}
	return requireAffected(res, domain.ErrJobNotFound)
}

func (s *JobStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM jobs WHERE id=?`), id)
	if err != nil {
		return translate(err, "delete job")
	}
	return requireAffected(res, domain.ErrJobNotFound)
}
