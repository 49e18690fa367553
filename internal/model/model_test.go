package model

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/lab-equipment-booking/internal/errs"
)

func TestRoleCan(t *testing.T) {
	tests := []struct {
		role Role
		cap  Capability
		want bool
	}{
		{RoleStudent, CapEquipmentRead, true},
		{RoleStudent, CapEquipmentWrite, false},
		{RoleStudent, CapBookingCreate, true},
		{RoleStudent, CapBookingReadAny, false},
		{RoleStudent, CapBookingManageAny, false},
		{RoleLabAssistant, CapEquipmentWrite, true},
		{RoleLabAssistant, CapBookingManageAny, true},
		{RoleLabAssistant, CapUserList, false},
		{RoleAdmin, CapUserList, true},
		{Role("janitor"), CapEquipmentRead, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.role)+"/"+string(tt.cap), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.role.Can(tt.cap))
		})
	}
}

func TestParseRole(t *testing.T) {
	r, err := ParseRole("")
	require.NoError(t, err)
	assert.Equal(t, RoleStudent, r)

	r, err = ParseRole("Lab-Assistant")
	require.NoError(t, err)
	assert.Equal(t, RoleLabAssistant, r)

	r, err = ParseRole("admin")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, r)

	_, err = ParseRole("superuser")
	assert.True(t, errors.Is(err, errs.ErrValidation))
}

func TestActorOwns(t *testing.T) {
	student := Actor{ID: "u1", Role: RoleStudent}
	assert.True(t, student.Owns("u1", CapBookingManageAny))
	assert.False(t, student.Owns("u2", CapBookingManageAny))

	assistant := Actor{ID: "u3", Role: RoleLabAssistant}
	assert.True(t, assistant.Owns("u2", CapBookingManageAny))
}

func TestNextStatus(t *testing.T) {
	tests := []struct {
		name      string
		from, to  BookingStatus
		wantDelta int
		wantErr   error
	}{
		{"confirm", StatusPending, StatusConfirmed, 0, nil},
		{"cancel pending", StatusPending, StatusCancelled, 3, nil},
		{"cancel confirmed", StatusConfirmed, StatusCancelled, 3, nil},
		{"complete", StatusConfirmed, StatusCompleted, 3, nil},
		{"same status", StatusCancelled, StatusCancelled, 0, nil},
		{"complete pending", StatusPending, StatusCompleted, 0, errs.ErrInvalidTransition},
		{"revive cancelled", StatusCancelled, StatusPending, 0, errs.ErrInvalidTransition},
		{"reopen completed", StatusCompleted, StatusConfirmed, 0, errs.ErrInvalidTransition},
		{"unknown", StatusPending, BookingStatus("lost"), 0, errs.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			delta, err := NextStatus(tt.from, tt.to, 3)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDelta, delta)
		})
	}
}

func TestEquipmentJSON(t *testing.T) {
	b, err := json.Marshal(Equipment{ID: "e1", Name: "Scope", TotalQuantity: 2, Available: 0})
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, "Scope", out["name"])
	assert.Equal(t, float64(2), out["totalQuantity"])
	assert.Equal(t, false, out["isAvailable"])
}

func TestUserJSONHidesPassword(t *testing.T) {
	b, err := json.Marshal(User{ID: "u1", Email: "a@b.c", PasswordHash: "secret"})
	require.NoError(t, err)
	assert.NotContains(t, string(b), "secret")
}
