package domain

import "strings"

// Role is the coarse permission level attached to a session user.
type Role string

// Supported roles, from most to least privileged.
const (
	RoleAdmin   Role = "admin"
	RoleStaff   Role = "staff"
	RoleVisitor Role = "visitor"
)

// Capability names an action that front ends gate on the current role.
type Capability string

// Capabilities checked by front ends. Stores do not enforce them.
const (
	CapView            Capability = "view"
	CapManageInventory Capability = "manage_inventory"
	CapCreateRecords   Capability = "create_records"
	CapApproveRecords  Capability = "approve_records"
	CapManagePayments  Capability = "manage_payments"
)

var roleCapabilities = map[Role]map[Capability]bool{
	RoleAdmin: {
		CapView:            true,
		CapManageInventory: true,
		CapCreateRecords:   true,
		CapApproveRecords:  true,
		CapManagePayments:  true,
	},
	RoleStaff: {
		CapView:            true,
		CapManageInventory: true,
		CapCreateRecords:   true,
		CapManagePayments:  true,
	},
	RoleVisitor: {
		CapView: true,
	},
}

// ParseRole normalizes s into a Role.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	return r, r.Valid()
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	_, ok := roleCapabilities[r]
	return ok
}

// Can reports whether the role grants the capability.
func (r Role) Can(c Capability) bool {
	return roleCapabilities[r][c]
}
