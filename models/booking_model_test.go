package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNightsBetween(t *testing.T) {
	in := time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC)
	assert.Equal(t, 3, NightsBetween(in, time.Date(2026, 3, 4, 11, 0, 0, 0, time.UTC)))
	assert.Equal(t, 0, NightsBetween(in, in))
	assert.Equal(t, 31, NightsBetween(in, in.AddDate(0, 1, 0)))
}

func TestBookingStatusSettleable(t *testing.T) {
	assert.True(t, BookingConfirmed.Settleable())
	assert.True(t, BookingCompleted.Settleable())
	assert.False(t, BookingPending.Settleable())
	assert.False(t, BookingCancelled.Settleable())
}
