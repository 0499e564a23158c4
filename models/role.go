package models

import "github.com/google/uuid"

type Role string

const (
	RoleGuest Role = "guest"
	RoleHost  Role = "host"
	RoleAdmin Role = "admin"
)

func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleGuest, RoleHost, RoleAdmin:
		return Role(s), true
	}
	return "", false
}

func (r Role) Valid() bool {
	_, ok := ParseRole(string(r))
	return ok
}

// Principal is the authenticated caller of an operation. System is set for
// trusted internal callers such as the payment provider webhook.
type Principal struct {
	UserID uuid.UUID
	Role   Role
	System bool
}

var SystemPrincipal = Principal{System: true}

func (p Principal) IsAdmin() bool {
	return !p.System && p.Role == RoleAdmin
}

func (p Principal) ownsListing(hostID uuid.UUID) bool {
	return p.Role == RoleHost && p.UserID != uuid.Nil && p.UserID == hostID
}

// CanConfirmBooking: only the host that owns the listing.
func (p Principal) CanConfirmBooking(hostID uuid.UUID) bool {
	return p.ownsListing(hostID)
}

// CanSettleBooking: the owning host, an admin operator or the system.
func (p Principal) CanSettleBooking(hostID uuid.UUID) bool {
	return p.System || p.IsAdmin() || p.ownsListing(hostID)
}

func (p Principal) CanManageListing(hostID uuid.UUID) bool {
	return p.ownsListing(hostID)
}

func (p Principal) CanCreateListing() bool {
	return p.Role == RoleHost
}

func (p Principal) CanBook() bool {
	return !p.System && p.UserID != uuid.Nil
}

func (p Principal) CanModerate() bool {
	return p.IsAdmin()
}
