package repository

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/iliyamo/lab-equipment-booking/internal/database"
	"github.com/iliyamo/lab-equipment-booking/internal/errs"
	"github.com/iliyamo/lab-equipment-booking/internal/model"
)

const notificationsTable = "notifications"

var notificationColumns = []string{"id", "user_id", "booking_id", "message", "is_read", "created_at"}

type NotificationRepo struct{ db *database.DB }

func NewNotificationRepo(db *database.DB) *NotificationRepo { return &NotificationRepo{db: db} }

func (r *NotificationRepo) Create(ctx context.Context, n *model.Notification) error {
	n.ID = uuid.NewString()
	n.CreatedAt = time.Now().UTC()
	n.Read = false

	q, args, err := r.db.QB.Insert(notificationsTable).
		Columns(notificationColumns...).
		Values(n.ID, n.UserID, n.BookingID, n.Message, n.Read, n.CreatedAt).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
		return errors.Wrap(err, "insert notification")
	}
	return nil
}

// ListByUser returns the user's notifications, newest first.
func (r *NotificationRepo) ListByUser(ctx context.Context, userID string, unreadOnly bool) ([]model.Notification, error) {
	sb := r.db.QB.Select(notificationColumns...).
		From(notificationsTable).
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC")
	if unreadOnly {
		sb = sb.Where(sq.Eq{"is_read": false})
	}
	q, args, err := sb.ToSql()
	if err != nil {
		return nil, err
	}
	items := []model.Notification{}
	if err := r.db.SelectContext(ctx, &items, q, args...); err != nil {
		return nil, errors.Wrap(err, "select notifications")
	}
	return items, nil
}

// MarkRead flags the notification as read. Notifications of other users
// are reported as NotFound.
func (r *NotificationRepo) MarkRead(ctx context.Context, id, userID string) error {
	q, args, err := r.db.QB.Update(notificationsTable).
		Set("is_read", true).
		Where(sq.Eq{"id": id, "user_id": userID}).
		ToSql()
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return errors.Wrap(err, "mark notification read")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "rows affected")
	}
	if n == 0 {
		return errs.E(errs.ErrNotFound, "Notification not found")
	}
	return nil
}
