package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/iliyamo/lab-equipment-booking/internal/model"
	"github.com/iliyamo/lab-equipment-booking/internal/queue"
)

type MockUserStore struct{ mock.Mock }

func (m *MockUserStore) Create(ctx context.Context, u *model.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (model.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUserStore) GetByID(ctx context.Context, id string) (model.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUserStore) Exists(ctx context.Context, email, username string) (bool, error) {
	args := m.Called(ctx, email, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserStore) List(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.User), args.Error(1)
}

type MockEquipmentStore struct{ mock.Mock }

func (m *MockEquipmentStore) List(ctx context.Context, f model.EquipmentFilter) ([]model.Equipment, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]model.Equipment), args.Error(1)
}

func (m *MockEquipmentStore) GetByID(ctx context.Context, id string) (model.Equipment, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Equipment), args.Error(1)
}

func (m *MockEquipmentStore) Create(ctx context.Context, e *model.Equipment) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockEquipmentStore) Update(ctx context.Context, id string, p model.EquipmentPatch) (model.Equipment, error) {
	args := m.Called(ctx, id, p)
	return args.Get(0).(model.Equipment), args.Error(1)
}

func (m *MockEquipmentStore) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockBookingStore struct{ mock.Mock }

func (m *MockBookingStore) Create(ctx context.Context, b *model.Booking) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockBookingStore) GetByID(ctx context.Context, id string) (model.Booking, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Booking), args.Error(1)
}

func (m *MockBookingStore) List(ctx context.Context, f model.BookingFilter) ([]model.Booking, error) {
	args := m.Called(ctx, f)
	return args.Get(0).([]model.Booking), args.Error(1)
}

func (m *MockBookingStore) Transition(ctx context.Context, id string, to model.BookingStatus) (model.Booking, bool, error) {
	args := m.Called(ctx, id, to)
	return args.Get(0).(model.Booking), args.Bool(1), args.Error(2)
}

func (m *MockBookingStore) Delete(ctx context.Context, id string) (model.Booking, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Booking), args.Error(1)
}

type MockNotificationStore struct{ mock.Mock }

func (m *MockNotificationStore) Create(ctx context.Context, n *model.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockNotificationStore) ListByUser(ctx context.Context, userID string, unreadOnly bool) ([]model.Notification, error) {
	args := m.Called(ctx, userID, unreadOnly)
	return args.Get(0).([]model.Notification), args.Error(1)
}

func (m *MockNotificationStore) MarkRead(ctx context.Context, id, userID string) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

type MockPublisher struct{ mock.Mock }

func (m *MockPublisher) Publish(ctx context.Context, ev queue.BookingEvent) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

func (m *MockPublisher) Close() error { return nil }
