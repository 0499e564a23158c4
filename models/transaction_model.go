package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TxBookingPayment TransactionType = "booking_payment"
	TxHostEarning    TransactionType = "host_earning"
	TxCommission     TransactionType = "commission"
	TxPayout         TransactionType = "payout"
	TxPayoutReversal TransactionType = "payout_reversal"
)

// Transaction is an append-only ledger row. ReferenceID+Type is unique so
// replays of the same movement are absorbed by the database.
type Transaction struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	BookingID   *uuid.UUID      `gorm:"type:uuid;index" json:"booking_id,omitempty"`
	Type        TransactionType `gorm:"size:30;not null;uniqueIndex:idx_transactions_reference_type" json:"type"`
	Amount      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Currency    string          `gorm:"size:3;not null;default:'USD'" json:"currency"`
	ReferenceID string          `gorm:"size:64;not null;uniqueIndex:idx_transactions_reference_type" json:"reference_id"`
	Description string          `gorm:"type:text" json:"description"`

	CreatedAt time.Time `json:"created_at"`
}
