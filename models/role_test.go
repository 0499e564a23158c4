package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	for _, s := range []string{"guest", "host", "admin"} {
		r, ok := ParseRole(s)
		assert.True(t, ok)
		assert.Equal(t, s, string(r))
	}
	_, ok := ParseRole("superuser")
	assert.False(t, ok)
	_, ok = ParseRole("Admin")
	assert.False(t, ok)
}

func TestPrincipalCapabilities(t *testing.T) {
	hostID := uuid.New()
	owner := Principal{UserID: hostID, Role: RoleHost}
	otherHost := Principal{UserID: uuid.New(), Role: RoleHost}
	guest := Principal{UserID: hostID, Role: RoleGuest}
	admin := Principal{UserID: uuid.New(), Role: RoleAdmin}

	assert.True(t, owner.CanConfirmBooking(hostID))
	assert.False(t, otherHost.CanConfirmBooking(hostID))
	assert.False(t, guest.CanConfirmBooking(hostID), "role must be host, not just a matching id")
	assert.False(t, admin.CanConfirmBooking(hostID))
	assert.False(t, SystemPrincipal.CanConfirmBooking(hostID))

	assert.True(t, owner.CanSettleBooking(hostID))
	assert.True(t, admin.CanSettleBooking(hostID))
	assert.True(t, SystemPrincipal.CanSettleBooking(hostID))
	assert.False(t, otherHost.CanSettleBooking(hostID))
	assert.False(t, guest.CanSettleBooking(hostID))

	assert.True(t, admin.CanModerate())
	assert.False(t, owner.CanModerate())
	assert.False(t, SystemPrincipal.CanModerate())
}
