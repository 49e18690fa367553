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

const equipmentTable = "equipment"

var equipmentColumns = []string{
	"id", "name", "description", "image", "category",
	"total_quantity", "available", "created_at", "updated_at",
}

type EquipmentRepo struct{ db *database.DB }

func NewEquipmentRepo(db *database.DB) *EquipmentRepo { return &EquipmentRepo{db: db} }

func (r *EquipmentRepo) List(ctx context.Context, f model.EquipmentFilter) ([]model.Equipment, error) {
	sb := r.db.QB.Select(equipmentColumns...).From(equipmentTable).OrderBy("name")
	if f.Category != "" {
		sb = sb.Where(sq.Eq{"category": f.Category})
	}
	if f.AvailableOnly {
		sb = sb.Where(sq.Gt{"available": 0})
	}
	q, args, err := sb.ToSql()
	if err != nil {
		return nil, err
	}
	items := []model.Equipment{}
	if err := r.db.SelectContext(ctx, &items, q, args...); err != nil {
		return nil, errors.Wrap(err, "select equipment")
	}
	return items, nil
}

func (r *EquipmentRepo) GetByID(ctx context.Context, id string) (model.Equipment, error) {
	q, args, err := r.db.QB.Select(equipmentColumns...).
		From(equipmentTable).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return model.Equipment{}, err
	}
	var e model.Equipment
	if err := r.db.GetContext(ctx, &e, q, args...); err != nil {
		return model.Equipment{}, notFound(err, "Equipment not found")
	}
	return e, nil
}

// Create inserts e with every unit available.
func (r *EquipmentRepo) Create(ctx context.Context, e *model.Equipment) error {
	now := time.Now().UTC()
	e.ID = uuid.NewString()
	e.Available = e.TotalQuantity
	e.CreatedAt, e.UpdatedAt = now, now

	q, args, err := r.db.QB.Insert(equipmentTable).
		Columns(equipmentColumns...).
		Values(e.ID, e.Name, e.Description, e.Image, e.Category,
			e.TotalQuantity, e.Available, e.CreatedAt, e.UpdatedAt).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
		return errors.Wrap(err, "insert equipment")
	}
	return nil
}

// Update applies p. A new total quantity shifts available by the same
// difference and fails with Conflict when more units are booked than the
// new total allows.
func (r *EquipmentRepo) Update(ctx context.Context, id string, p model.EquipmentPatch) (model.Equipment, error) {
	ub := r.db.QB.Update(equipmentTable).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": id})
	if p.Name != nil {
		ub = ub.Set("name", *p.Name)
	}
	if p.Description != nil {
		ub = ub.Set("description", *p.Description)
	}
	if p.Image != nil {
		ub = ub.Set("image", *p.Image)
	}
	if p.Category != nil {
		ub = ub.Set("category", *p.Category)
	}
	if p.TotalQuantity != nil {
		n := *p.TotalQuantity
		// MySQL evaluates SET left to right, so available must be
		// computed before total_quantity changes
		ub = ub.Set("available", sq.Expr("available + (? - total_quantity)", n)).
			Set("total_quantity", n).
			Where(sq.Expr("available + (? - total_quantity) >= 0", n))
	}
	q, args, err := ub.ToSql()
	if err != nil {
		return model.Equipment{}, err
	}
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		if database.IsCheckViolation(err) {
			return model.Equipment{}, errs.E(errs.ErrConflict, "Total quantity is below the number of booked units")
		}
		return model.Equipment{}, errors.Wrap(err, "update equipment")
	}
	if n, err := res.RowsAffected(); err != nil {
		return model.Equipment{}, errors.Wrap(err, "rows affected")
	} else if n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return model.Equipment{}, err
		}
		return model.Equipment{}, errs.E(errs.ErrConflict, "Total quantity is below the number of booked units")
	}
	return r.GetByID(ctx, id)
}

// Delete removes the equipment. Rows still referenced by bookings are
// rejected with Conflict.
func (r *EquipmentRepo) Delete(ctx context.Context, id string) error {
	q, args, err := r.db.QB.Delete(equipmentTable).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return errors.Wrap(constraint(err, "Equipment has bookings and cannot be deleted"), "delete equipment")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "rows affected")
	}
	if n == 0 {
		return errs.E(errs.ErrNotFound, "Equipment not found")
	}
	return nil
}

// AdjustAvailability changes available by delta in one conditional
// statement, keeping 0 <= available <= total_quantity.
func (r *EquipmentRepo) AdjustAvailability(ctx context.Context, id string, delta int) error {
	return adjustAvailability(ctx, r.db, r.db.QB, id, delta)
}

// adjustAvailability is shared with the booking transactions; ext is either
// the pool or an open *sqlx.Tx.
func adjustAvailability(ctx context.Context, ext sqlx.ExtContext, qb sq.StatementBuilderType, id string, delta int) error {
	if delta == 0 {
		return nil
	}
	q, args, err := qb.Update(equipmentTable).
		Set("available", sq.Expr("available + ?", delta)).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"id": id}).
		Where(sq.Expr("available + ? >= 0", delta)).
		Where(sq.Expr("available + ? <= total_quantity", delta)).
		ToSql()
	if err != nil {
		return err
	}
	res, err := ext.ExecContext(ctx, q, args...)
	if err != nil {
		return errors.Wrap(err, "adjust availability")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "rows affected")
	}
	if n > 0 {
		return nil
	}

	sel, selArgs, err := qb.Select("available").From(equipmentTable).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}
	var available int
	if err := sqlx.GetContext(ctx, ext, &available, sel, selArgs...); err != nil {
		return notFound(err, "Equipment not found")
	}
	if delta < 0 {
		return errs.Ef(errs.ErrInsufficientAvailability,
			"Only %d unit(s) available, %d requested", available, -delta)
	}
	return errs.E(errs.ErrConflict, "Release exceeds total quantity")
}
