package repository

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/lab-equipment-booking/internal/config"
	"github.com/iliyamo/lab-equipment-booking/internal/database"
	"github.com/iliyamo/lab-equipment-booking/internal/errs"
	"github.com/iliyamo/lab-equipment-booking/internal/model"
)

type fixture struct {
	users         *UserRepo
	equipment     *EquipmentRepo
	bookings      *BookingRepo
	notifications *NotificationRepo
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	db, err := database.Open(ctx, config.Database{Driver: "sqlite3", Path: filepath.Join(t.TempDir(), "lab.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.MigrateUp(ctx))
	return fixture{
		users:         NewUserRepo(db),
		equipment:     NewEquipmentRepo(db),
		bookings:      NewBookingRepo(db),
		notifications: NewNotificationRepo(db),
	}
}

func (f fixture) user(t *testing.T, name string) model.User {
	t.Helper()
	u := model.User{Username: name, Email: name + "@lab.edu", PasswordHash: "hash", Role: model.RoleStudent}
	require.NoError(t, f.users.Create(context.Background(), &u))
	return u
}

func (f fixture) item(t *testing.T, total int) model.Equipment {
	t.Helper()
	e := model.Equipment{Name: "Oscilloscope", Description: "4 channel", Category: "electronics", TotalQuantity: total}
	require.NoError(t, f.equipment.Create(context.Background(), &e))
	return e
}

func (f fixture) available(t *testing.T, id string) int {
	t.Helper()
	e, err := f.equipment.GetByID(context.Background(), id)
	require.NoError(t, err)
	return e.Available
}

func newBooking(userID, equipmentID string, qty int) *model.Booking {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return &model.Booking{
		UserID:      userID,
		EquipmentID: equipmentID,
		Quantity:    qty,
		StartDate:   start,
		EndDate:     start.Add(4 * time.Hour),
	}
}

func TestUserRepo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u := model.User{Username: "ann", Email: "  Ann@Lab.edu ", PasswordHash: "hash", Role: model.RoleAdmin}
	require.NoError(t, f.users.Create(ctx, &u))
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "ann@lab.edu", u.Email)

	got, err := f.users.GetByEmail(ctx, "ANN@lab.edu")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, model.RoleAdmin, got.Role)

	ok, err := f.users.Exists(ctx, "other@lab.edu", "ann")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = f.users.Exists(ctx, "other@lab.edu", "bob")
	require.NoError(t, err)
	assert.False(t, ok)

	dup := model.User{Username: "ann2", Email: "ann@lab.edu", PasswordHash: "hash", Role: model.RoleStudent}
	err = f.users.Create(ctx, &dup)
	assert.True(t, errors.Is(err, errs.ErrConflict), "got %v", err)

	_, err = f.users.GetByID(ctx, "missing")
	assert.True(t, errors.Is(err, errs.ErrNotFound))

	all, err := f.users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestEquipmentRepo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	e := f.item(t, 5)
	assert.Equal(t, 5, e.Available)

	other := model.Equipment{Name: "Centrifuge", Category: "biology", TotalQuantity: 0}
	require.NoError(t, f.equipment.Create(ctx, &other))

	list, err := f.equipment.List(ctx, model.EquipmentFilter{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Centrifuge", list[0].Name)

	list, err = f.equipment.List(ctx, model.EquipmentFilter{AvailableOnly: true})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, e.ID, list[0].ID)

	list, err = f.equipment.List(ctx, model.EquipmentFilter{Category: "biology"})
	require.NoError(t, err)
	require.Len(t, list, 1)

	name := "Digital oscilloscope"
	updated, err := f.equipment.Update(ctx, e.ID, model.EquipmentPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)
	assert.Equal(t, 5, updated.Available)

	_, err = f.equipment.Update(ctx, "missing", model.EquipmentPatch{Name: &name})
	assert.True(t, errors.Is(err, errs.ErrNotFound))

	require.NoError(t, f.equipment.Delete(ctx, other.ID))
	err = f.equipment.Delete(ctx, other.ID)
	assert.True(t, errors.Is(err, errs.ErrNotFound))
}

func TestEquipmentUpdateTotalShiftsAvailable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "ann")
	e := f.item(t, 5)
	require.NoError(t, f.bookings.Create(ctx, newBooking(u.ID, e.ID, 3)))

	total := 8
	updated, err := f.equipment.Update(ctx, e.ID, model.EquipmentPatch{TotalQuantity: &total})
	require.NoError(t, err)
	assert.Equal(t, 8, updated.TotalQuantity)
	assert.Equal(t, 5, updated.Available)

	total = 2
	_, err = f.equipment.Update(ctx, e.ID, model.EquipmentPatch{TotalQuantity: &total})
	assert.True(t, errors.Is(err, errs.ErrConflict), "got %v", err)
	assert.Equal(t, 5, f.available(t, e.ID))

	total = 3
	updated, err = f.equipment.Update(ctx, e.ID, model.EquipmentPatch{TotalQuantity: &total})
	require.NoError(t, err)
	assert.Equal(t, 0, updated.Available)
}

func TestAdjustAvailabilityBounds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	e := f.item(t, 2)

	require.NoError(t, f.equipment.AdjustAvailability(ctx, e.ID, -2))
	err := f.equipment.AdjustAvailability(ctx, e.ID, -1)
	assert.True(t, errors.Is(err, errs.ErrInsufficientAvailability))
	require.NoError(t, f.equipment.AdjustAvailability(ctx, e.ID, 2))
	err = f.equipment.AdjustAvailability(ctx, e.ID, 1)
	assert.True(t, errors.Is(err, errs.ErrConflict))
	assert.Equal(t, 2, f.available(t, e.ID))

	err = f.equipment.AdjustAvailability(ctx, "missing", -1)
	assert.True(t, errors.Is(err, errs.ErrNotFound))
}

func TestBookingScenarioExhaustsStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "ann")
	e := f.item(t, 5)

	b := newBooking(u.ID, e.ID, 5)
	require.NoError(t, f.bookings.Create(ctx, b))
	assert.Equal(t, model.StatusPending, b.Status)
	assert.Equal(t, 0, f.available(t, e.ID))

	err := f.bookings.Create(ctx, newBooking(u.ID, e.ID, 1))
	assert.True(t, errors.Is(err, errs.ErrInsufficientAvailability))
	assert.Equal(t, 0, f.available(t, e.ID))

	list, err := f.bookings.List(ctx, model.BookingFilter{UserID: u.ID})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Oscilloscope", list[0].Equipment.Name)
}

func TestBookingCreateMissingEquipment(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "ann")
	err := f.bookings.Create(context.Background(), newBooking(u.ID, "missing", 1))
	assert.True(t, errors.Is(err, errs.ErrNotFound))
}

func TestBookingCancelIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "ann")
	e := f.item(t, 5)
	b := newBooking(u.ID, e.ID, 2)
	require.NoError(t, f.bookings.Create(ctx, b))
	assert.Equal(t, 3, f.available(t, e.ID))

	got, changed, err := f.bookings.Transition(ctx, b.ID, model.StatusCancelled)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, model.StatusCancelled, got.Status)
	assert.Equal(t, 5, f.available(t, e.ID))

	_, changed, err = f.bookings.Transition(ctx, b.ID, model.StatusCancelled)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, 5, f.available(t, e.ID))

	_, _, err = f.bookings.Transition(ctx, b.ID, model.StatusConfirmed)
	assert.True(t, errors.Is(err, errs.ErrInvalidTransition))
}

func TestBookingConfirmThenComplete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "ann")
	e := f.item(t, 3)
	b := newBooking(u.ID, e.ID, 3)
	require.NoError(t, f.bookings.Create(ctx, b))

	_, _, err := f.bookings.Transition(ctx, b.ID, model.StatusCompleted)
	assert.True(t, errors.Is(err, errs.ErrInvalidTransition))

	_, changed, err := f.bookings.Transition(ctx, b.ID, model.StatusConfirmed)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 0, f.available(t, e.ID))

	got, _, err := f.bookings.Transition(ctx, b.ID, model.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, got.Status)
	assert.Equal(t, 3, f.available(t, e.ID))
}

func TestBookingConcurrentCancelReleasesOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "ann")
	e := f.item(t, 4)
	b := newBooking(u.ID, e.ID, 4)
	require.NoError(t, f.bookings.Create(ctx, b))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := f.bookings.Transition(ctx, b.ID, model.StatusCancelled)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, 4, f.available(t, e.ID))
}

func TestBookingConcurrentCreateNeverOverbooks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "ann")
	e := f.item(t, 3)

	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := f.bookings.Create(ctx, newBooking(u.ID, e.ID, 1)); err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			} else {
				assert.True(t, errors.Is(err, errs.ErrInsufficientAvailability), "got %v", err)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 3, ok)
	assert.Equal(t, 0, f.available(t, e.ID))
}

func TestBookingDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "ann")
	e := f.item(t, 5)

	active := newBooking(u.ID, e.ID, 2)
	require.NoError(t, f.bookings.Create(ctx, active))
	done := newBooking(u.ID, e.ID, 1)
	require.NoError(t, f.bookings.Create(ctx, done))
	_, _, err := f.bookings.Transition(ctx, done.ID, model.StatusCancelled)
	require.NoError(t, err)
	assert.Equal(t, 3, f.available(t, e.ID))

	deleted, err := f.bookings.Delete(ctx, active.ID)
	require.NoError(t, err)
	assert.Equal(t, active.ID, deleted.ID)
	assert.Equal(t, 5, f.available(t, e.ID))

	_, err = f.bookings.Delete(ctx, done.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, f.available(t, e.ID))

	_, err = f.bookings.GetByID(ctx, active.ID)
	assert.True(t, errors.Is(err, errs.ErrNotFound))
	_, err = f.bookings.Delete(ctx, active.ID)
	assert.True(t, errors.Is(err, errs.ErrNotFound))
}

func TestBookingListFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ann := f.user(t, "ann")
	bob := f.user(t, "bob")
	e := f.item(t, 5)

	require.NoError(t, f.bookings.Create(ctx, newBooking(ann.ID, e.ID, 1)))
	bb := newBooking(bob.ID, e.ID, 1)
	require.NoError(t, f.bookings.Create(ctx, bb))
	_, _, err := f.bookings.Transition(ctx, bb.ID, model.StatusConfirmed)
	require.NoError(t, err)

	all, err := f.bookings.List(ctx, model.BookingFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mine, err := f.bookings.List(ctx, model.BookingFilter{UserID: ann.ID})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, ann.ID, mine[0].UserID)

	confirmed, err := f.bookings.List(ctx, model.BookingFilter{Status: model.StatusConfirmed, EquipmentID: e.ID})
	require.NoError(t, err)
	require.Len(t, confirmed, 1)
	assert.Equal(t, bb.ID, confirmed[0].ID)
}

func TestEquipmentDeleteWithBookingsConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "ann")
	e := f.item(t, 1)
	require.NoError(t, f.bookings.Create(ctx, newBooking(u.ID, e.ID, 1)))

	err := f.equipment.Delete(ctx, e.ID)
	assert.True(t, errors.Is(err, errs.ErrConflict), "got %v", err)
}

func TestNotificationRepo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ann := f.user(t, "ann")
	bob := f.user(t, "bob")

	bookingID := "b-1"
	n := model.Notification{UserID: ann.ID, BookingID: &bookingID, Message: "Your booking was confirmed"}
	require.NoError(t, f.notifications.Create(ctx, &n))

	list, err := f.notifications.ListByUser(ctx, ann.ID, false)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.False(t, list[0].Read)
	require.NotNil(t, list[0].BookingID)
	assert.Equal(t, bookingID, *list[0].BookingID)

	err = f.notifications.MarkRead(ctx, n.ID, bob.ID)
	assert.True(t, errors.Is(err, errs.ErrNotFound))
	require.NoError(t, f.notifications.MarkRead(ctx, n.ID, ann.ID))

	unread, err := f.notifications.ListByUser(ctx, ann.ID, true)
	require.NoError(t, err)
	assert.Empty(t, unread)
}
