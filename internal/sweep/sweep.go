// Package sweep turns due and completed jobs into notifications on a fixed
// schedule.
package sweep

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"schedulerapi/internal/domain"
	"schedulerapi/internal/mail"
)

type State int32

const (
	Idle State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "idle"
}

type JobSource interface {
	DueOrCompleted(ctx context.Context, cutoff time.Time) ([]domain.Job, error)
}

type NotificationSink interface {
	Add(ctx context.Context, n domain.Notification) error
}

type Config struct {
	// Schedule is a robfig/cron spec such as "@every 1m".
	Schedule   string
	DueWindow  time.Duration
	JobTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{Schedule: "@every 1m", DueWindow: 48 * time.Hour, JobTimeout: 30 * time.Second}
}

// Result summarises one batch.
type Result struct {
	Scanned    int
	Emitted    int
	Failed     int
	MailFailed int
}

type Sweeper struct {
	jobs     JobSource
	notes    NotificationSink
	mailer   mail.Mailer
	spec     string
	schedule cron.Schedule
	window   time.Duration
	timeout  time.Duration
	now      func() time.Time

	state    atomic.Int32
	stop     chan struct{}
	stopOnce sync.Once
}

type Option func(*Sweeper)

func WithClock(now func() time.Time) Option {
	return func(s *Sweeper) { s.now = now }
}

func New(cfg Config, jobs JobSource, notes NotificationSink, mailer mail.Mailer, opts ...Option) (*Sweeper, error) {
	sched, err := cron.ParseStandard(cfg.Schedule)
	if err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", cfg.Schedule, err)
	}
	if cfg.DueWindow <= 0 {
		cfg.DueWindow = DefaultConfig().DueWindow
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = DefaultConfig().JobTimeout
	}
	s := &Sweeper{
		jobs:     jobs,
		notes:    notes,
		mailer:   mailer,
		spec:     cfg.Schedule,
		schedule: sched,
		window:   cfg.DueWindow,
		timeout:  cfg.JobTimeout,
		now:      time.Now,
		stop:     make(chan struct{}),
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

func (s *Sweeper) State() State { return State(s.state.Load()) }

// Run ticks immediately and then on the schedule until ctx is cancelled or
// Stop is called. Stopping also cancels a batch in flight; the current job
// finishes first.
func (s *Sweeper) Run(ctx context.Context) {
	log.Info().Str("schedule", s.spec).Dur("due_window", s.window).Msg("reminder sweep started")
	defer log.Info().Msg("reminder sweep stopped")

	next := s.now()
	for {
		timer := time.NewTimer(max(next.Sub(s.now()), 0))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-s.stop:
			timer.Stop()
			return
		case <-timer.C:
		}

		now := s.now()
		s.tickUntilStopped(ctx)
		next = s.schedule.Next(now)
	}
}

func (s *Sweeper) tickUntilStopped(ctx context.Context) {
	tickCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-s.stop:
			cancel()
		case <-tickCtx.Done():
		}
	}()
	s.Tick(tickCtx)
}

// Stop ends Run. It is safe to call more than once.
func (s *Sweeper) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// Tick processes one batch. A failing job is logged and skipped.
func (s *Sweeper) Tick(ctx context.Context) Result {
	s.state.Store(int32(Running))
	defer s.state.Store(int32(Idle))

	now := s.now()
	jobs, err := s.jobs.DueOrCompleted(ctx, now.Add(s.window))
	if err != nil {
		log.Error().Err(err).Msg("failed to load jobs for reminder sweep")
		return Result{}
	}

	res := Result{Scanned: len(jobs)}
	for i, j := range jobs {
		if ctx.Err() != nil {
			log.Warn().Int("remaining", len(jobs)-i).Msg("reminder sweep interrupted")
			break
		}
		s.handle(ctx, j, now, &res)
	}

	log.Info().
		Int("scanned", res.Scanned).
		Int("emitted", res.Emitted).
		Int("failed", res.Failed).
		Int("mail_failed", res.MailFailed).
		Msg("reminder sweep finished")
	return res
}

func (s *Sweeper) handle(ctx context.Context, j domain.Job, now time.Time, res *Result) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	stored := false
	defer func() {
		if r := recover(); r != nil {
			if stored {
				res.MailFailed++
			} else {
				res.Failed++
			}
			log.Error().Interface("panic", r).Str("job_id", j.ID).Bool("stored", stored).Msg("reminder for job panicked")
		}
	}()

	typ, msg := Message(j, now, s.window)
	n := domain.Notification{
		ID:        uuid.NewString(),
		Type:      typ,
		Message:   msg,
		Timestamp: now,
		UserID:    j.UserID,
	}
	if err := s.notes.Add(ctx, n); err != nil {
		res.Failed++
		log.Error().Err(err).Str("job_id", j.ID).Str("user_id", j.UserID).Msg("failed to store reminder")
		return
	}
	stored = true
	res.Emitted++

	if err := s.mailer.Send(ctx, n); err != nil {
		res.MailFailed++
		log.Error().Err(err).Str("job_id", j.ID).Str("notification_id", n.ID).Msg("failed to mail reminder")
	}
}

// Message derives the reminder for j. Completed jobs get a status update,
// combined with the due notice when they also fall inside the window.
func Message(j domain.Job, now time.Time, window time.Duration) (domain.NotificationType, string) {
	hours := int(window.Hours())
	dueSoon := !j.DueDate.After(now.Add(window))
	switch {
	case j.Status == domain.StatusCompleted && dueSoon:
		return domain.StatusUpdate, fmt.Sprintf("Job %s is due in %d hours and has been marked as completed", j.ID, hours)
	case j.Status == domain.StatusCompleted:
		return domain.StatusUpdate, fmt.Sprintf("Job %s has been marked as completed", j.ID)
	default:
		return domain.DueDateReminder, fmt.Sprintf("Job %s is due in %d hours", j.ID, hours)
	}
}
