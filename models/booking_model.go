package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

// Settleable reports whether the host has accepted the stay.
func (s BookingStatus) Settleable() bool {
	return s == BookingConfirmed || s == BookingCompleted
}

type Booking struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	GuestID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"guest_id"`
	ListingID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"listing_id"`
	CheckIn       time.Time       `gorm:"not null" json:"check_in"`
	CheckOut      time.Time       `gorm:"not null" json:"check_out"`
	Guests        int             `gorm:"not null;default:1" json:"guests"`
	TotalAmount   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_amount"`
	Currency      string          `gorm:"size:3;not null;default:'USD'" json:"currency"`
	Status        BookingStatus   `gorm:"size:20;not null;default:'pending';index" json:"status"`
	PaymentStatus PaymentStatus   `gorm:"size:20;not null;default:'pending'" json:"payment_status"`
	SpecialNotes  *string         `gorm:"type:text" json:"special_notes,omitempty"`

	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`

	Guest   User    `gorm:"foreignkey:GuestID" json:"guest,omitempty"`
	Listing Listing `gorm:"foreignkey:ListingID" json:"listing,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Nights counts whole nights between check-in and check-out dates.
func (b *Booking) Nights() int {
	return NightsBetween(b.CheckIn, b.CheckOut)
}

func NightsBetween(checkIn, checkOut time.Time) int {
	in := time.Date(checkIn.Year(), checkIn.Month(), checkIn.Day(), 0, 0, 0, 0, time.UTC)
	out := time.Date(checkOut.Year(), checkOut.Month(), checkOut.Day(), 0, 0, 0, 0, time.UTC)
	return int(out.Sub(in).Hours() / 24)
}
