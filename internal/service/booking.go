package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/lab-equipment-booking/internal/errs"
	"github.com/iliyamo/lab-equipment-booking/internal/model"
	"github.com/iliyamo/lab-equipment-booking/internal/queue"
)

type CreateBookingInput struct {
	EquipmentID string
	Quantity    int
	StartDate   time.Time
	EndDate     time.Time
}

// BookingService runs the booking lifecycle. Availability changes happen
// inside the store's transactions; the service validates input, checks
// ownership and publishes events.
type BookingService struct {
	store  BookingStore
	events queue.Publisher
	log    *zap.Logger
}

func NewBookingService(store BookingStore, events queue.Publisher, log *zap.Logger) *BookingService {
	return &BookingService{store: store, events: events, log: log.Named("booking")}
}

func (s *BookingService) Create(ctx context.Context, actor model.Actor, in CreateBookingInput) (model.Booking, error) {
	if !actor.Role.Can(model.CapBookingCreate) {
		return model.Booking{}, errs.E(errs.ErrForbidden, "Not allowed to create bookings")
	}
	if in.EquipmentID == "" {
		return model.Booking{}, errs.E(errs.ErrValidation, "Equipment is required")
	}
	if in.Quantity < 1 {
		return model.Booking{}, errs.E(errs.ErrValidation, "Quantity must be at least 1")
	}
	if in.StartDate.IsZero() || in.EndDate.IsZero() {
		return model.Booking{}, errs.E(errs.ErrValidation, "Start and end dates are required")
	}
	if !in.EndDate.After(in.StartDate) {
		return model.Booking{}, errs.E(errs.ErrInvalidRange, "End date must be after start date")
	}

	b := model.Booking{
		EquipmentID: in.EquipmentID,
		UserID:      actor.ID,
		Quantity:    in.Quantity,
		StartDate:   in.StartDate.UTC(),
		EndDate:     in.EndDate.UTC(),
	}
	if err := s.store.Create(ctx, &b); err != nil {
		return model.Booking{}, err
	}
	created, err := s.store.GetByID(ctx, b.ID)
	if err != nil {
		return model.Booking{}, err
	}
	s.log.Info("booking created",
		zap.String("id", created.ID), zap.String("equipment_id", created.EquipmentID),
		zap.Int("quantity", created.Quantity), zap.String("user_id", actor.ID))
	s.publish(ctx, queue.NewBookingEvent(queue.BookingCreated, created, actor.ID))
	return created, nil
}

func (s *BookingService) Get(ctx context.Context, actor model.Actor, id string) (model.Booking, error) {
	b, err := s.store.GetByID(ctx, id)
	if err != nil {
		return model.Booking{}, err
	}
	if !actor.Owns(b.UserID, model.CapBookingReadAny) {
		return model.Booking{}, errs.E(errs.ErrForbidden, "Not authorized to view this booking")
	}
	return b, nil
}

// List scopes the filter to the actor's own bookings unless the role may
// read everyone's.
func (s *BookingService) List(ctx context.Context, actor model.Actor, f model.BookingFilter) ([]model.Booking, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, errs.Ef(errs.ErrValidation, "invalid status %q", f.Status)
	}
	if !actor.Role.Can(model.CapBookingReadAny) {
		f.UserID = actor.ID
	}
	return s.store.List(ctx, f)
}

// UpdateStatus applies a lifecycle transition. Setting the current status
// again returns the booking unchanged.
func (s *BookingService) UpdateStatus(ctx context.Context, actor model.Actor, id string, to model.BookingStatus) (model.Booking, error) {
	if !to.Valid() {
		return model.Booking{}, errs.Ef(errs.ErrValidation, "invalid status %q", to)
	}
	cur, err := s.store.GetByID(ctx, id)
	if err != nil {
		return model.Booking{}, err
	}
	if !actor.Owns(cur.UserID, model.CapBookingManageAny) {
		return model.Booking{}, errs.E(errs.ErrForbidden, "Not authorized to update this booking")
	}
	b, changed, err := s.store.Transition(ctx, id, to)
	if err != nil {
		return model.Booking{}, err
	}
	if changed {
		s.log.Info("booking status changed",
			zap.String("id", b.ID), zap.String("from", string(cur.Status)),
			zap.String("to", string(b.Status)), zap.String("actor", actor.ID))
		s.publish(ctx, queue.NewBookingEvent(queue.EventForStatus(b.Status), b, actor.ID))
	}
	return b, nil
}

func (s *BookingService) Delete(ctx context.Context, actor model.Actor, id string) error {
	cur, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !actor.Owns(cur.UserID, model.CapBookingManageAny) {
		return errs.E(errs.ErrForbidden, "Not authorized to delete this booking")
	}
	deleted, err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	s.log.Info("booking deleted", zap.String("id", id), zap.String("actor", actor.ID))
	s.publish(ctx, queue.NewBookingEvent(queue.BookingDeleted, deleted, actor.ID))
	return nil
}

// publish is best effort; the booking change is already committed.
func (s *BookingService) publish(ctx context.Context, ev queue.BookingEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, ev); err != nil {
		s.log.Warn("publish booking event failed",
			zap.Error(err), zap.String("type", string(ev.Type)), zap.String("booking_id", ev.BookingID))
	}
}
