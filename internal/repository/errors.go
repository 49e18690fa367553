// Package repository persists users, equipment, bookings and notifications.
// Methods return errs kinds for the conditions callers branch on and wrap
// everything else.
package repository

import (
	"database/sql"

	"github.com/pkg/errors"

	"github.com/iliyamo/lab-equipment-booking/internal/database"
	"github.com/iliyamo/lab-equipment-booking/internal/errs"
)

// notFound converts sql.ErrNoRows into a NotFound error carrying msg.
func notFound(err error, msg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return errs.E(errs.ErrNotFound, msg)
	}
	return err
}

// constraint maps unique and foreign key violations to Conflict.
func constraint(err error, msg string) error {
	if database.IsUniqueViolation(err) || database.IsForeignKeyViolation(err) {
		return errs.E(errs.ErrConflict, msg)
	}
	return err
}
