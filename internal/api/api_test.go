package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schedulerapi/internal/auth"
	"schedulerapi/internal/domain"
	"schedulerapi/internal/store"
)

var testNow = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

type recordingMailer struct {
	mu   sync.Mutex
	sent []domain.Notification
	err  error
}

func (m *recordingMailer) Send(_ context.Context, n domain.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, n)
	return m.err
}

type testEnv struct {
	t        *testing.T
	h        http.Handler
	jobs     *store.JobStore
	projects *store.ProjectStore
	notes    *store.NotificationStore
	mailer   *recordingMailer
	tokens   map[string]string
}

// newTestEnv seeds alice (u1), bob (u2, admin) and carol (u3).
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	db, err := store.Open(ctx, store.DriverSQLite, ":memory:", 0)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, store.EnsureSchema(ctx, db))

	tokens, err := auth.NewService(auth.Config{
		Secret:   "0123456789abcdef0123456789abcdef",
		Issuer:   "scheduler-api",
		Audience: "scheduler-clients",
		TokenTTL: time.Hour,
	}, auth.WithClock(func() time.Time { return testNow }))
	require.NoError(t, err)

	e := &testEnv{
		t:        t,
		jobs:     store.NewJobStore(db),
		projects: store.NewProjectStore(db),
		notes:    store.NewNotificationStore(db),
		mailer:   &recordingMailer{},
		tokens:   map[string]string{},
	}
	users := store.NewUserStore(db)
	for _, u := range []domain.User{
		{ID: "u1", Username: "alice", Email: "alice@example.com"},
		{ID: "u2", Username: "bob", Email: "bob@example.com", Role: domain.RoleAdmin},
		{ID: "u3", Username: "carol", Email: "carol@example.com"},
	} {
		require.NoError(t, users.Add(ctx, u))
		tok, _, err := tokens.Issue(u)
		require.NoError(t, err)
		e.tokens[u.ID] = tok
	}

	e.h = NewServer(Deps{
		Jobs:          e.jobs,
		Projects:      e.projects,
		Notifications: e.notes,
		Users:         users,
		Tokens:        tokens,
		Mailer:        e.mailer,
		Logger:        zerolog.Nop(),
		Now:           func() time.Time { return testNow },
		SweepState:    func() string { return "idle" },
	})
	return e
}

func (e *testEnv) do(method, path, user string, body any) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			require.NoError(e.t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("content-type", "application/json")
	if user != "" {
		req.Header.Set("Authorization", "Bearer "+e.tokens[user])
	}
	rec := httptest.NewRecorder()
	e.h.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) seedJob(id, owner string, due time.Time, status domain.JobStatus, priority domain.Priority) {
	e.t.Helper()
	require.NoError(e.t, e.jobs.Add(context.Background(), domain.Job{
		ID: id, Title: "job " + id, DueDate: due, Priority: priority, Status: status, UserID: owner,
	}))
}

func (e *testEnv) seedProject(id, owner string) {
	e.t.Helper()
	require.NoError(e.t, e.projects.Add(context.Background(), domain.Project{ID: id, Name: "project " + id, UserID: owner}))
}

func decodeAs[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func jobIDs(jobs []JobDTO) []string {
	ids := make([]string, 0, len(jobs))
	for _, j := range jobs {
		ids = append(ids, j.JobID)
	}
	return ids
}

func TestHealthNeedsNoToken(t *testing.T) {
	e := newTestEnv(t)
	rec := e.do(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]string{"status": "ok", "sweep": "idle"}, decodeAs[map[string]string](t, rec))

	rec = e.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "scheduler_sweep_running 0")
}

func TestAPIRequiresToken(t *testing.T) {
	e := newTestEnv(t)
	rec := e.do(http.MethodGet, "/api/jobs", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/jobs", nil)
	req.Header.Set("Authorization", "Bearer forged")
	rec = httptest.NewRecorder()
	e.h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateJob(t *testing.T) {
	e := newTestEnv(t)
	due := testNow.Add(72 * time.Hour)

	rec := e.do(http.MethodPost, "/api/jobs", "u1", JobDTO{Title: "write report", DueDate: due})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	got := decodeAs[JobDTO](t, rec)
	assert.NotEmpty(t, got.JobID)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, domain.PriorityLow, got.Priority)
	assert.Equal(t, domain.StatusPending, got.Status)
	assert.Equal(t, "/api/jobs/"+got.JobID, rec.Header().Get("Location"))

	stored, err := e.jobs.Get(context.Background(), got.JobID)
	require.NoError(t, err)
	assert.True(t, due.Equal(stored.DueDate))

	notes, err := e.notes.ListByUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "New Task Created", notes[0].Message)
	assert.Equal(t, domain.StatusUpdate, notes[0].Type)
	assert.False(t, notes[0].IsRead)
	require.Len(t, e.mailer.sent, 1)
	assert.Equal(t, notes[0].ID, e.mailer.sent[0].ID)
}

func TestCreateJobSurvivesMailFailure(t *testing.T) {
	e := newTestEnv(t)
	e.mailer.err = errors.New("smtp down")

	rec := e.do(http.MethodPost, "/api/jobs", "u1", JobDTO{JobID: "j1", Title: "t", DueDate: testNow})
	require.Equal(t, http.StatusCreated, rec.Code)
	_, err := e.jobs.Get(context.Background(), "j1")
	assert.NoError(t, err)
}

func TestCreateJobRejections(t *testing.T) {
	e := newTestEnv(t)
	e.seedJob("taken", "u1", testNow, domain.StatusPending, domain.PriorityLow)
	e.seedProject("p3", "u3")
	p3 := "p3"
	missing := "nope"

	tests := []struct {
		name string
		user string
		body any
		want int
	}{
		{"missing title", "u1", JobDTO{DueDate: testNow}, http.StatusBadRequest},
		{"missing due date", "u1", JobDTO{Title: "t"}, http.StatusBadRequest},
		{"bad priority", "u1", `{"title":"t","dueDate":"2026-10-20T00:00:00Z","priority":"Urgent"}`, http.StatusBadRequest},
		{"malformed json", "u1", `{"title":`, http.StatusBadRequest},
		{"other owner", "u1", JobDTO{Title: "t", DueDate: testNow, UserID: "u3"}, http.StatusForbidden},
		{"admin for unknown user", "u2", JobDTO{Title: "t", DueDate: testNow, UserID: "ghost"}, http.StatusBadRequest},
		{"duplicate id", "u1", JobDTO{JobID: "taken", Title: "t", DueDate: testNow}, http.StatusConflict},
		{"foreign project", "u1", JobDTO{Title: "t", DueDate: testNow, ProjectID: &p3}, http.StatusForbidden},
		{"unknown project", "u1", JobDTO{Title: "t", DueDate: testNow, ProjectID: &missing}, http.StatusNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := e.do(http.MethodPost, "/api/jobs", tc.user, tc.body)
			assert.Equal(t, tc.want, rec.Code, rec.Body.String())
			assert.NotEmpty(t, decodeAs[map[string]string](t, rec)["error"])
		})
	}
}

func TestAdminCreatesJobForAnotherUser(t *testing.T) {
	e := newTestEnv(t)
	rec := e.do(http.MethodPost, "/api/jobs", "u2", JobDTO{Title: "t", DueDate: testNow, UserID: "u1"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "u1", decodeAs[JobDTO](t, rec).UserID)
}

func TestGetJob(t *testing.T) {
	e := newTestEnv(t)
	e.seedJob("j1", "u1", testNow, domain.StatusPending, domain.PriorityHigh)

	assert.Equal(t, http.StatusOK, e.do(http.MethodGet, "/api/jobs/j1", "u1", nil).Code)
	assert.Equal(t, http.StatusOK, e.do(http.MethodGet, "/api/jobs/j1", "u2", nil).Code)
	assert.Equal(t, http.StatusForbidden, e.do(http.MethodGet, "/api/jobs/j1", "u3", nil).Code)
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, "/api/jobs/nope", "u1", nil).Code)
}

func TestListJobsIsScopedToOwner(t *testing.T) {
	e := newTestEnv(t)
	e.seedJob("j1", "u1", testNow, domain.StatusPending, domain.PriorityLow)
	e.seedJob("j2", "u3", testNow.Add(time.Hour), domain.StatusPending, domain.PriorityLow)

	rec := e.do(http.MethodGet, "/api/jobs", "u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"j1"}, jobIDs(decodeAs[[]JobDTO](t, rec)))

	rec = e.do(http.MethodGet, "/api/jobs", "u2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.ElementsMatch(t, []string{"j1", "j2"}, jobIDs(decodeAs[[]JobDTO](t, rec)))
}

func TestUpdateJob(t *testing.T) {
	e := newTestEnv(t)
	e.seedJob("j1", "u1", testNow, domain.StatusPending, domain.PriorityLow)
	e.seedJob("j2", "u1", testNow, domain.StatusPending, domain.PriorityLow)
	body := JobDTO{JobID: "j1", Title: "renamed", DueDate: testNow, Status: domain.StatusCompleted, Priority: domain.PriorityHigh}

	t.Run("id mismatch", func(t *testing.T) {
		rec := e.do(http.MethodPut, "/api/jobs/j2", "u1", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
	t.Run("owner change", func(t *testing.T) {
		b := body
		b.UserID = "u3"
		assert.Equal(t, http.StatusBadRequest, e.do(http.MethodPut, "/api/jobs/j1", "u1", b).Code)
	})
	t.Run("other user", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, e.do(http.MethodPut, "/api/jobs/j1", "u3", body).Code)
	})
	t.Run("missing", func(t *testing.T) {
		b := body
		b.JobID = ""
		assert.Equal(t, http.StatusNotFound, e.do(http.MethodPut, "/api/jobs/nope", "u1", b).Code)
	})
	t.Run("ok", func(t *testing.T) {
		require.Equal(t, http.StatusNoContent, e.do(http.MethodPut, "/api/jobs/j1", "u1", body).Code)
		j, err := e.jobs.Get(context.Background(), "j1")
		require.NoError(t, err)
		assert.Equal(t, "renamed", j.Title)
		assert.Equal(t, domain.StatusCompleted, j.Status)
		assert.Equal(t, "u1", j.UserID)

		other, err := e.jobs.Get(context.Background(), "j2")
		require.NoError(t, err)
		assert.Equal(t, "job j2", other.Title)
	})
}

func TestDeleteJob(t *testing.T) {
	e := newTestEnv(t)
	e.seedJob("j1", "u1", testNow, domain.StatusPending, domain.PriorityLow)

	assert.Equal(t, http.StatusNotFound, e.do(http.MethodDelete, "/api/jobs/nope", "u1", nil).Code)
	assert.Equal(t, http.StatusForbidden, e.do(http.MethodDelete, "/api/jobs/j1", "u3", nil).Code)
	assert.Equal(t, http.StatusNoContent, e.do(http.MethodDelete, "/api/jobs/j1", "u1", nil).Code)
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, "/api/jobs/j1", "u1", nil).Code)
}

func TestFilterJobs(t *testing.T) {
	e := newTestEnv(t)
	e.seedJob("j1", "u1", testNow, domain.StatusCompleted, domain.PriorityHigh)
	e.seedJob("j2", "u1", testNow, domain.StatusCompleted, domain.PriorityLow)
	e.seedJob("j3", "u1", testNow, domain.StatusPending, domain.PriorityHigh)
	e.seedJob("j4", "u3", testNow, domain.StatusCompleted, domain.PriorityHigh)

	tests := []struct {
		name  string
		user  string
		query string
		want  []string
	}{
		{"both", "u1", "?status=completed&priority=high", []string{"j1"}},
		{"status only", "u1", "?status=Completed", []string{"j1", "j2"}},
		{"priority only", "u1", "?priority=High", []string{"j1", "j3"}},
		{"neither", "u1", "", []string{"j1", "j2", "j3"}},
		{"admin sees all", "u2", "?status=Completed&priority=High", []string{"j1", "j4"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := e.do(http.MethodGet, "/api/jobs/filter"+tc.query, tc.user, nil)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.ElementsMatch(t, tc.want, jobIDs(decodeAs[[]JobDTO](t, rec)))
		})
	}

	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodGet, "/api/jobs/filter?status=Done", "u1", nil).Code)
	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodGet, "/api/jobs/filter?priority=9", "u1", nil).Code)
}

func TestJobsDueThisWeek(t *testing.T) {
	e := newTestEnv(t)
	e.seedJob("soon", "u1", testNow.Add(24*time.Hour), domain.StatusPending, domain.PriorityLow)
	e.seedJob("overdue", "u1", testNow.Add(-24*time.Hour), domain.StatusPending, domain.PriorityLow)
	e.seedJob("later", "u1", testNow.Add(8*24*time.Hour), domain.StatusPending, domain.PriorityLow)
	e.seedJob("theirs", "u3", testNow.Add(time.Hour), domain.StatusPending, domain.PriorityLow)

	rec := e.do(http.MethodGet, "/api/jobs/due-this-week", "u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"overdue", "soon"}, jobIDs(decodeAs[[]JobDTO](t, rec)))
}

func TestAssignAndRemoveProject(t *testing.T) {
	e := newTestEnv(t)
	e.seedJob("j1", "u1", testNow, domain.StatusPending, domain.PriorityLow)
	e.seedProject("p1", "u1")
	e.seedProject("p3", "u3")

	assert.Equal(t, http.StatusNotFound, e.do(http.MethodPut, "/api/jobs/j1/assign-to-project/nope", "u1", nil).Code)
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodPut, "/api/jobs/nope/assign-to-project/p1", "u1", nil).Code)
	assert.Equal(t, http.StatusForbidden, e.do(http.MethodPut, "/api/jobs/j1/assign-to-project/p3", "u1", nil).Code)

	rec := e.do(http.MethodPut, "/api/jobs/j1/assign-to-project/p1", "u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Job assigned to project.", decodeAs[map[string]string](t, rec)["message"])

	got := decodeAs[JobDTO](t, e.do(http.MethodGet, "/api/jobs/j1", "u1", nil))
	require.NotNil(t, got.ProjectID)
	assert.Equal(t, "p1", *got.ProjectID)

	require.Equal(t, http.StatusOK, e.do(http.MethodPut, "/api/jobs/j1/remove-from-project", "u1", nil).Code)
	got = decodeAs[JobDTO](t, e.do(http.MethodGet, "/api/jobs/j1", "u1", nil))
	assert.Nil(t, got.ProjectID)
}

func TestProjects(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(http.MethodPost, "/api/projects", "u1", ProjectDTO{ProjectID: "p1", Name: "home"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "u1", decodeAs[ProjectDTO](t, rec).UserID)
	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodPost, "/api/projects", "u1", ProjectDTO{}).Code)
	assert.Equal(t, http.StatusForbidden, e.do(http.MethodPost, "/api/projects", "u1", ProjectDTO{Name: "x", UserID: "u3"}).Code)

	assert.Equal(t, http.StatusForbidden, e.do(http.MethodGet, "/api/projects/p1", "u3", nil).Code)
	assert.Equal(t, http.StatusNoContent, e.do(http.MethodPut, "/api/projects/p1", "u1", ProjectDTO{Name: "house"}).Code)
	assert.Equal(t, "house", decodeAs[ProjectDTO](t, e.do(http.MethodGet, "/api/projects/p1", "u1", nil)).Name)

	rec = e.do(http.MethodGet, "/api/projects", "u3", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeAs[[]ProjectDTO](t, rec))

	e.seedJob("j1", "u1", testNow, domain.StatusPending, domain.PriorityLow)
	require.NoError(t, e.jobs.SetProject(context.Background(), "j1", strPtr("p1")))
	assert.Equal(t, http.StatusNoContent, e.do(http.MethodDelete, "/api/projects/p1", "u1", nil).Code)
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, "/api/jobs/j1", "u1", nil).Code)
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodDelete, "/api/projects/p1", "u1", nil).Code)
}

func TestNotifications(t *testing.T) {
	e := newTestEnv(t)

	rec := e.do(http.MethodPost, "/api/notifications", "u1", NotificationDTO{NotificationID: "n1", Message: "hello"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeAs[NotificationDTO](t, rec)
	assert.Equal(t, domain.DueDateReminder, created.Type)
	assert.True(t, testNow.Equal(created.Timestamp))

	assert.Equal(t, http.StatusForbidden, e.do(http.MethodGet, "/api/notifications/n1", "u3", nil).Code)

	t.Run("mark", func(t *testing.T) {
		rec := e.do(http.MethodPut, "/api/notifications/n1/mark?markAsRead=true", "u1", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, decodeAs[NotificationDTO](t, e.do(http.MethodGet, "/api/notifications/n1", "u1", nil)).IsRead)

		require.Equal(t, http.StatusOK, e.do(http.MethodPut, "/api/notifications/n1/mark", "u1", nil).Code)
		assert.False(t, decodeAs[NotificationDTO](t, e.do(http.MethodGet, "/api/notifications/n1", "u1", nil)).IsRead)

		assert.Equal(t, http.StatusBadRequest, e.do(http.MethodPut, "/api/notifications/n1/mark?markAsRead=maybe", "u1", nil).Code)
		assert.Equal(t, http.StatusForbidden, e.do(http.MethodPut, "/api/notifications/n1/mark?markAsRead=true", "u3", nil).Code)
		assert.Equal(t, http.StatusNotFound, e.do(http.MethodPut, "/api/notifications/nope/mark?markAsRead=true", "u1", nil).Code)
	})

	t.Run("update", func(t *testing.T) {
		body := NotificationDTO{Message: "changed", Type: domain.StatusUpdate, IsRead: true}
		require.Equal(t, http.StatusNoContent, e.do(http.MethodPut, "/api/notifications/n1", "u1", body).Code)
		got := decodeAs[NotificationDTO](t, e.do(http.MethodGet, "/api/notifications/n1", "u1", nil))
		assert.Equal(t, "changed", got.Message)
		assert.Equal(t, domain.StatusUpdate, got.Type)
		assert.Equal(t, "u1", got.UserID)
	})

	rec = e.do(http.MethodGet, "/api/notifications", "u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeAs[[]NotificationDTO](t, rec), 1)

	assert.Equal(t, http.StatusNoContent, e.do(http.MethodDelete, "/api/notifications/n1", "u1", nil).Code)
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodDelete, "/api/notifications/n1", "u1", nil).Code)
}

func TestUsersAreAdminOnly(t *testing.T) {
	e := newTestEnv(t)

	assert.Equal(t, http.StatusForbidden, e.do(http.MethodGet, "/api/users", "u1", nil).Code)

	rec := e.do(http.MethodGet, "/api/users", "u2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeAs[[]UserDTO](t, rec), 3)

	rec = e.do(http.MethodPost, "/api/users", "u2", UserDTO{UserID: "u4", Username: "dave", Email: "dave@example.com"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodPost, "/api/users", "u2", UserDTO{Username: "eve", Email: "not-an-email"}).Code)
	assert.Equal(t, http.StatusConflict, e.do(http.MethodPost, "/api/users", "u2", UserDTO{UserID: "u4", Username: "dave", Email: "dave@example.com"}).Code)

	require.Equal(t, http.StatusNoContent, e.do(http.MethodPut, "/api/users/u4", "u2", UserDTO{Username: "david", Email: "dave@example.com", Role: domain.RoleAdmin}).Code)
	got := decodeAs[UserDTO](t, e.do(http.MethodGet, "/api/users/u4", "u2", nil))
	assert.Equal(t, "david", got.Username)
	assert.Equal(t, domain.RoleAdmin, got.Role)
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodPut, "/api/users/ghost", "u2", UserDTO{Username: "g", Email: "g@example.com"}).Code)

	e.seedJob("j1", "u1", testNow, domain.StatusPending, domain.PriorityLow)
	rec = e.do(http.MethodDelete, "/api/users/u1", "u2", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, store.ErrReferenced.Error(), decodeAs[map[string]string](t, rec)["error"])

	assert.Equal(t, http.StatusNoContent, e.do(http.MethodDelete, "/api/users/u4", "u2", nil).Code)
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodDelete, "/api/users/u4", "u2", nil).Code)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.NewValidationError("title", "is required"), http.StatusBadRequest},
		{domain.ErrJobNotFound, http.StatusNotFound},
		{domain.ErrForbidden, http.StatusForbidden},
		{store.ErrReferenced, http.StatusConflict},
		{domain.ErrUnauthorized, http.StatusUnauthorized},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, statusFor(tc.err), tc.err.Error())
	}
}

func strPtr(s string) *string { return &s }

func TestUpdateChecksOwnershipBeforeBody(t *testing.T) {
	e := newTestEnv(t)
	e.seedJob("j1", "u1", testNow, domain.StatusPending, domain.PriorityLow)
	e.seedProject("p1", "u1")
	require.Equal(t, http.StatusCreated,
		e.do(http.MethodPost, "/api/notifications", "u1", NotificationDTO{NotificationID: "n1", Message: "hi"}).Code)

	for _, path := range []string{"/api/jobs/j1", "/api/projects/p1", "/api/notifications/n1"} {
		t.Run(path, func(t *testing.T) {
			assert.Equal(t, http.StatusForbidden, e.do(http.MethodPut, path, "u3", `{"title":`).Code)
			assert.Equal(t, http.StatusForbidden, e.do(http.MethodPut, path, "u3", `{}`).Code)
			assert.Equal(t, http.StatusBadRequest, e.do(http.MethodPut, path, "u1", `{"title":`).Code)
		})
	}
}
