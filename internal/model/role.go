package model

import (
	"strings"

	"github.com/iliyamo/lab-equipment-booking/internal/errs"
)

// Role is the closed set of account classes.
type Role string

const (
	RoleStudent      Role = "student"
	RoleLabAssistant Role = "lab_assistant"
	RoleAdmin        Role = "admin"
)

// Capability names an action gated by role.
type Capability string

const (
	CapEquipmentRead    Capability = "equipment:read"
	CapEquipmentWrite   Capability = "equipment:write"
	CapBookingCreate    Capability = "booking:create"
	CapBookingReadAny   Capability = "booking:read_any"
	CapBookingManageAny Capability = "booking:manage_any"
	CapUserList         Capability = "user:list"
)

// capabilities is the single source of truth for authorization.
var capabilities = map[Role]map[Capability]bool{
	RoleStudent: {
		CapEquipmentRead: true,
		CapBookingCreate: true,
	},
	RoleLabAssistant: {
		CapEquipmentRead:    true,
		CapEquipmentWrite:   true,
		CapBookingCreate:    true,
		CapBookingReadAny:   true,
		CapBookingManageAny: true,
	},
	RoleAdmin: {
		CapEquipmentRead:    true,
		CapEquipmentWrite:   true,
		CapBookingCreate:    true,
		CapBookingReadAny:   true,
		CapBookingManageAny: true,
		CapUserList:         true,
	},
}

// Can reports whether the role grants the capability. Unknown roles grant
// nothing.
func (r Role) Can(c Capability) bool {
	return capabilities[r][c]
}

func (r Role) Valid() bool {
	_, ok := capabilities[r]
	return ok
}

// ParseRole normalises s ("Lab-Assistant" -> lab_assistant). An empty
// string yields the default student role.
func ParseRole(s string) (Role, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return RoleStudent, nil
	}
	r := Role(strings.ReplaceAll(s, "-", "_"))
	if !r.Valid() {
		return "", errs.Ef(errs.ErrValidation, "unknown role %q", s)
	}
	return r, nil
}

// Actor is the authenticated caller of a service operation.
type Actor struct {
	ID   string
	Role Role
}

// Owns reports whether the actor may act on a resource owned by userID,
// either directly or through capability c.
func (a Actor) Owns(userID string, c Capability) bool {
	return a.ID == userID || a.Role.Can(c)
}
