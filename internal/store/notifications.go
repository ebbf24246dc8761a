package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"schedulerapi/internal/domain"
)

const notificationColumns = `id,type,message,timestamp,is_read,user_id`

type NotificationStore struct{ db *sqlx.DB }

func NewNotificationStore(db *sqlx.DB) *NotificationStore { return &NotificationStore{db: db} }

func (s *NotificationStore) Get(ctx context.Context, id string) (domain.Notification, error) {
	var n domain.Notification
	err := s.db.GetContext(ctx, &n, s.db.Rebind(`SELECT `+notificationColumns+` FROM notifications WHERE id=?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Notification{}, domain.ErrNotificationNotFound
	}
	if err != nil {
		return domain.Notification{}, fmt.Errorf("get notification: %w", err)
	}
	return n, nil
}

func (s *NotificationStore) List(ctx context.Context) ([]domain.Notification, error) {
	out := []domain.Notification{}
	err := s.db.SelectContext(ctx, &out, `SELECT `+notificationColumns+` FROM notifications ORDER BY timestamp DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return out, nil
}

func (s *NotificationStore) ListByUser(ctx context.Context, userID string) ([]domain.Notification, error) {
	out := []domain.Notification{}
	err := s.db.SelectContext(ctx, &out, s.db.Rebind(`SELECT `+notificationColumns+`
FROM notifications WHERE user_id=? ORDER BY timestamp DESC, id`), userID)
	if err != nil {
		return nil, fmt.Errorf("list user notifications: %w", err)
	}
	return out, nil
}

func (s *NotificationStore) Add(ctx context.Context, n domain.Notification) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`INSERT INTO notifications (`+notificationColumns+`) VALUES (?,?,?,?,?,?)`),
		n.ID, n.Type, n.Message, utc(n.Timestamp), n.IsRead, n.UserID)
	return translate(err, "add notification")
}

func (s *NotificationStore) Update(ctx context.Context, n domain.Notification) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`UPDATE notifications SET type=?,message=?,timestamp=?,is_read=? WHERE id=?`),
		n.Type, n.Message, utc(n.Timestamp), n.IsRead, n.ID)
	if err != nil {
		return translate(err, "update notification")
	}
	return requireAffected(res, domain.ErrNotificationNotFound)
}

// Mark sets the read flag and refreshes the timestamp.
func (s *NotificationStore) Mark(ctx context.Context, id string, read bool, at time.Time) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`UPDATE notifications SET is_read=?,timestamp=? WHERE id=?`),
		read, utc(at), id)
	if err != nil {
		return translate(err, "mark notification")
	}
	return requireAffected(res, domain.ErrNotificationNotFound)
}

func (s *NotificationStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM notifications WHERE id=?`), id)
	if err != nil {
		return translate(err, "delete notification")
	}
	return requireAffected(res, domain.ErrNotificationNotFound)
}
