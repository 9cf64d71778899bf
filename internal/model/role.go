package model

import "strings"

// Role is the single enumerated account role.  It replaces the scattered
// staff/admin boolean flags of older schemas: every authorization decision
// starts from a Role and the capability set derived from it.
type Role string

const (
	RoleClient      Role = "client"
	RoleHotelAdmin  Role = "hotel_admin"
	RoleSystemAdmin Role = "system_admin"
)

// ParseRole normalizes a role string.  It returns false for unknown roles.
func ParseRole(s string) (Role, bool) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleClient, RoleHotelAdmin, RoleSystemAdmin:
		return r, true
	}
	return "", false
}

// SelfRegistrable reports whether users may pick this role at sign-up.
// System admins are provisioned out of band.
func (r Role) SelfRegistrable() bool {
	return r == RoleClient || r == RoleHotelAdmin
}

// Capability names one operation family a caller may perform.
type Capability string

const (
	CapBookRoom         Capability = "book_room"
	CapWriteReview      Capability = "write_review"
	CapManageHotel      Capability = "manage_hotel"
	CapRespondReview    Capability = "respond_review"
	CapViewFinance      Capability = "view_finance"
	CapApproveHotel     Capability = "approve_hotel"
	CapCancelAnyBooking Capability = "cancel_any_booking"
	CapViewAllFinance   Capability = "view_all_finance"
	CapDeleteHotel      Capability = "delete_hotel"
)

// CapabilitySet is an immutable set of capabilities.
type CapabilitySet map[Capability]struct{}

// Has reports whether c is part of the set.
func (s CapabilitySet) Has(c Capability) bool {
	_, ok := s[c]
	return ok
}

var capabilities = map[Role]CapabilitySet{
	RoleClient: {
		CapBookRoom:    {},
		CapWriteReview: {},
	},
	RoleHotelAdmin: {
		CapManageHotel:   {},
		CapRespondReview: {},
		CapViewFinance:   {},
	},
	RoleSystemAdmin: {
		CapViewFinance:      {},
		CapApproveHotel:     {},
		CapCancelAnyBooking: {},
		CapViewAllFinance:   {},
		CapDeleteHotel:      {},
	},
}

// CapabilitiesFor returns the capability set granted to a role.  Unknown
// roles get an empty set.
func CapabilitiesFor(r Role) CapabilitySet {
	if s, ok := capabilities[r]; ok {
		return s
	}
	return CapabilitySet{}
}

// Principal is the authenticated caller of an operation.
type Principal struct {
	UserID uint64
	Role   Role
}

// Can reports whether the principal's role grants capability c.
func (p Principal) Can(c Capability) bool {
	return CapabilitiesFor(p.Role).Has(c)
}

// CanAll reports whether every capability in cs is granted.
func (p Principal) CanAll(cs ...Capability) bool {
	for _, c := range cs {
		if !p.Can(c) {
			return false
		}
	}
	return true
}
