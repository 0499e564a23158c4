package services

import (
	"context"
	"time"

	"github.com/anjiri1684/stay_booking/models"
	"github.com/google/uuid"
)

// BookingStore is the persistence the booking lifecycle needs. Lookups return
// gorm.ErrRecordNotFound for unknown rows; state changes are compare-and-set
// and return database.ErrStateChanged when the row moved on.
type BookingStore interface {
	GetListing(ctx context.Context, id uuid.UUID) (*models.Listing, error)
	GetBooking(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	CreateBooking(ctx context.Context, booking *models.Booking) error
	ConfirmBooking(ctx context.Context, id uuid.UUID, at time.Time) error
	CancelBooking(ctx context.Context, id uuid.UUID, at time.Time) error
	CompleteFinishedStays(ctx context.Context, now time.Time) (int64, error)
}

// SettlementStore is the persistence the settlement pipeline needs.
type SettlementStore interface {
	GetBooking(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	// RecordPayment flips the booking to paid and inserts the payment in one
	// transaction, or returns database.ErrAlreadySettled.
	RecordPayment(ctx context.Context, payment *models.BookingPayment) error
	// CreditHostWallet is idempotent on payment.ID and returns
	// database.ErrWalletNotFound when the host has no wallet.
	CreditHostWallet(ctx context.Context, payment *models.BookingPayment) error
	// PostLedger is idempotent on payment.ID.
	PostLedger(ctx context.Context, payment *models.BookingPayment, entries []models.Transaction) error
	ListUnreconciledPayments(ctx context.Context, createdBefore time.Time, limit int) ([]models.BookingPayment, error)
}
