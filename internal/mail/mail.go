// Package mail delivers notifications to their owner's contact address.
package mail

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"schedulerapi/internal/domain"
)

var ErrNoRecipient = errors.New("no recipient for notification")

// Mailer sends a stored notification to its owner.
type Mailer interface {
	Send(ctx context.Context, n domain.Notification) error
}

// Email is the outbound message handed to a Transport.
type Email struct {
	To             string `json:"to"`
	Subject        string `json:"subject"`
	Body           string `json:"body"`
	UserID         string `json:"user_id"`
	NotificationID string `json:"notification_id"`
}

type Transport interface {
	Deliver(ctx context.Context, e Email) error
}

type UserLookup interface {
	Get(ctx context.Context, id string) (domain.User, error)
}

// Dispatcher resolves the owning user's address and hands the message to a
// transport.
type Dispatcher struct {
	users     UserLookup
	transport Transport
}

func NewDispatcher(users UserLookup, t Transport) *Dispatcher {
	return &Dispatcher{users: users, transport: t}
}

func (d *Dispatcher) Send(ctx context.Context, n domain.Notification) error {
	u, err := d.users.Get(ctx, n.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("%w: user %s", ErrNoRecipient, n.UserID)
	}
	if err != nil {
		return fmt.Errorf("resolve recipient: %w", err)
	}
	if u.Email == "" {
		return fmt.Errorf("%w: user %s has no email", ErrNoRecipient, n.UserID)
	}
	if err := d.transport.Deliver(ctx, Compose(u, n)); err != nil {
		return fmt.Errorf("deliver mail: %w", err)
	}
	return nil
}

func Compose(u domain.User, n domain.Notification) Email {
	subject := "Job status update"
	if n.Type == domain.DueDateReminder {
		subject = "Job due soon"
	}
	return Email{To: u.Email, Subject: subject, Body: n.Message, UserID: u.ID, NotificationID: n.ID}
}

// LogTransport only records that a message would have been sent.
type LogTransport struct{}

func (LogTransport) Deliver(_ context.Context, e Email) error {
	log.Info().
		Str("to", e.To).
		Str("subject", e.Subject).
		Str("notification_id", e.NotificationID).
		Msg("sending mail")
	return nil
}
