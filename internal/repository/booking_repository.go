package repository

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/iliyamo/lab-equipment-booking/internal/database"
	"github.com/iliyamo/lab-equipment-booking/internal/errs"
	"github.com/iliyamo/lab-equipment-booking/internal/model"
)

const bookingsTable = "bookings"

var errStatusChanged = errors.New("booking status changed concurrently")

// bookingRecord mirrors a bookings row joined with its equipment.
type bookingRecord struct {
	ID                   string    `db:"id"`
	EquipmentID          string    `db:"equipment_id"`
	UserID               string    `db:"user_id"`
	StartDate            time.Time `db:"start_date"`
	EndDate              time.Time `db:"end_date"`
	Quantity             int       `db:"quantity"`
	Status               string    `db:"status"`
	CreatedAt            time.Time `db:"created_at"`
	UpdatedAt            time.Time `db:"updated_at"`
	EquipmentName        string    `db:"equipment_name"`
	EquipmentDescription string    `db:"equipment_description"`
	EquipmentImage       string    `db:"equipment_image"`
	EquipmentCategory    string    `db:"equipment_category"`
}

func (rec bookingRecord) toModel() model.Booking {
	return model.Booking{
		ID:          rec.ID,
		EquipmentID: rec.EquipmentID,
		UserID:      rec.UserID,
		StartDate:   rec.StartDate.UTC(),
		EndDate:     rec.EndDate.UTC(),
		Quantity:    rec.Quantity,
		Status:      model.BookingStatus(rec.Status),
		CreatedAt:   rec.CreatedAt.UTC(),
		UpdatedAt:   rec.UpdatedAt.UTC(),
		Equipment: &model.EquipmentSummary{
			ID:          rec.EquipmentID,
			Name:        rec.EquipmentName,
			Description: rec.EquipmentDescription,
			Image:       rec.EquipmentImage,
			Category:    rec.EquipmentCategory,
		},
	}
}

type BookingRepo struct{ db *database.DB }

func NewBookingRepo(db *database.DB) *BookingRepo { return &BookingRepo{db: db} }

func (r *BookingRepo) selectBookings() sq.SelectBuilder {
	return r.db.QB.Select(
		"b.id", "b.equipment_id", "b.user_id", "b.start_date", "b.end_date",
		"b.quantity", "b.status", "b.created_at", "b.updated_at",
		"e.name AS equipment_name",
		"e.description AS equipment_description",
		"e.image AS equipment_image",
		"e.category AS equipment_category",
	).From(bookingsTable + " b").Join(equipmentTable + " e ON e.id = b.equipment_id")
}

// Create reserves b.Quantity units and inserts the pending booking in one
// transaction. It fails with NotFound or InsufficientAvailability without
// touching availability.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	now := time.Now().UTC()
	b.ID = uuid.NewString()
	b.Status = model.StatusPending
	b.CreatedAt, b.UpdatedAt = now, now

	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if err := adjustAvailability(ctx, tx, r.db.QB, b.EquipmentID, -b.Quantity); err != nil {
			return err
		}
		q, args, err := r.db.QB.Insert(bookingsTable).
			Columns("id", "equipment_id", "user_id", "start_date", "end_date",
				"quantity", "status", "created_at", "updated_at").
			Values(b.ID, b.EquipmentID, b.UserID, b.StartDate.UTC(), b.EndDate.UTC(),
				b.Quantity, b.Status, b.CreatedAt, b.UpdatedAt).
			ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			return errors.Wrap(err, "insert booking")
		}
		return nil
	})
}

func (r *BookingRepo) GetByID(ctx context.Context, id string) (model.Booking, error) {
	return r.get(ctx, r.db, id)
}

func (r *BookingRepo) get(ctx context.Context, q sqlx.QueryerContext, id string) (model.Booking, error) {
	sel, args, err := r.selectBookings().Where(sq.Eq{"b.id": id}).ToSql()
	if err != nil {
		return model.Booking{}, err
	}
	var rec bookingRecord
	if err := sqlx.GetContext(ctx, q, &rec, sel, args...); err != nil {
		return model.Booking{}, notFound(err, "Booking not found")
	}
	return rec.toModel(), nil
}

// List returns bookings newest first.
func (r *BookingRepo) List(ctx context.Context, f model.BookingFilter) ([]model.Booking, error) {
	sb := r.selectBookings().OrderBy("b.created_at DESC", "b.id")
	if f.UserID != "" {
		sb = sb.Where(sq.Eq{"b.user_id": f.UserID})
	}
	if f.EquipmentID != "" {
		sb = sb.Where(sq.Eq{"b.equipment_id": f.EquipmentID})
	}
	if f.Status != "" {
		sb = sb.Where(sq.Eq{"b.status": string(f.Status)})
	}
	q, args, err := sb.ToSql()
	if err != nil {
		return nil, err
	}
	var recs []bookingRecord
	if err := r.db.SelectContext(ctx, &recs, q, args...); err != nil {
		return nil, errors.Wrap(err, "select bookings")
	}
	out := make([]model.Booking, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.toModel())
	}
	return out, nil
}

// Transition moves the booking to status to and applies the matching
// availability change in the same transaction. The status write is a
// compare-and-set on the status read in the transaction. changed is false
// when the booking already had the target status, including when a
// concurrent caller got there first.
func (r *BookingRepo) Transition(ctx context.Context, id string, to model.BookingStatus) (b model.Booking, changed bool, err error) {
	err = r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		cur, err := r.get(ctx, tx, id)
		if err != nil {
			return err
		}
		delta, err := model.NextStatus(cur.Status, to, cur.Quantity)
		if err != nil {
			return err
		}
		if cur.Status == to {
			return nil
		}

		q, args, err := r.db.QB.Update(bookingsTable).
			Set("status", string(to)).
			Set("updated_at", time.Now().UTC()).
			Where(sq.Eq{"id": id, "status": string(cur.Status)}).
			ToSql()
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, q, args...)
		if err != nil {
			return errors.Wrap(err, "update booking status")
		}
		if n, err := res.RowsAffected(); err != nil {
			return errors.Wrap(err, "rows affected")
		} else if n == 0 {
			return errStatusChanged
		}
		if err := adjustAvailability(ctx, tx, r.db.QB, cur.EquipmentID, delta); err != nil {
			return err
		}
		changed = true
		return nil
	})
	if errors.Is(err, errStatusChanged) {
		b, err = r.GetByID(ctx, id)
		if err != nil {
			return model.Booking{}, false, err
		}
		if b.Status == to {
			return b, false, nil
		}
		return model.Booking{}, false, errs.E(errs.ErrConflict, "Booking was modified concurrently, retry")
	}
	if err != nil {
		return model.Booking{}, false, err
	}
	b, err = r.GetByID(ctx, id)
	return b, changed, err
}

// Delete removes the booking, returning its units to the pool when it was
// still active. The deleted booking is returned.
func (r *BookingRepo) Delete(ctx context.Context, id string) (model.Booking, error) {
	var deleted model.Booking
	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		cur, err := r.get(ctx, tx, id)
		if err != nil {
			return err
		}
		q, args, err := r.db.QB.Delete(bookingsTable).
			Where(sq.Eq{"id": id, "status": string(cur.Status)}).
			ToSql()
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, q, args...)
		if err != nil {
			return errors.Wrap(err, "delete booking")
		}
		if n, err := res.RowsAffected(); err != nil {
			return errors.Wrap(err, "rows affected")
		} else if n == 0 {
			return errs.E(errs.ErrConflict, "Booking was modified concurrently, retry")
		}
		if cur.Status.Active() {
			if err := adjustAvailability(ctx, tx, r.db.QB, cur.EquipmentID, cur.Quantity); err != nil {
				return err
			}
		}
		deleted = cur
		return nil
	})
	if err != nil {
		return model.Booking{}, err
	}
	return deleted, nil
}
