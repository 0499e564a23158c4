package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const PaymentRecordCompleted = "completed"

// BookingPayment is written once per settled booking and never updated,
// apart from the reconciliation markers and the receipt link.
type BookingPayment struct {
	ID                   uuid.UUID       `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	BookingID            uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex" json:"booking_id"`
	GuestID              uuid.UUID       `gorm:"type:uuid;not null;index" json:"guest_id"`
	HostID               uuid.UUID       `gorm:"type:uuid;not null;index" json:"host_id"`
	Amount               decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Currency             string          `gorm:"size:3;not null;default:'USD'" json:"currency"`
	CommissionRate       decimal.Decimal `gorm:"type:numeric(5,2);not null" json:"commission_rate"`
	CommissionAmount     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"commission_amount"`
	HostEarnings         decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"host_earnings"`
	PaymentMethod        string          `gorm:"size:50;not null" json:"payment_method"`
	TransactionReference string          `gorm:"size:255;not null;index" json:"transaction_reference"`
	Status               string          `gorm:"size:20;not null" json:"status"`
	PaidAt               time.Time       `gorm:"not null" json:"paid_at"`

	WalletCredited bool    `gorm:"not null;default:false;index" json:"-"`
	LedgerPosted   bool    `gorm:"not null;default:false;index" json:"-"`
	ReceiptURL     *string `gorm:"type:text" json:"receipt_url,omitempty"`

	Booking Booking `gorm:"foreignkey:BookingID" json:"booking,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (BookingPayment) TableName() string {
	return "booking_payments"
}

func (p *BookingPayment) Reconciled() bool {
	return p.WalletCredited && p.LedgerPosted
}
