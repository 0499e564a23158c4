package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PayoutStatus string

const (
	PayoutPending   PayoutStatus = "pending"
	PayoutCompleted PayoutStatus = "completed"
	PayoutRejected  PayoutStatus = "rejected"
)

type PayoutRequest struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	HostID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"host_id"`
	Amount      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Status      PayoutStatus    `gorm:"size:20;not null;default:'pending'" json:"status"`
	AdminNotes  *string         `gorm:"type:text" json:"admin_notes,omitempty"`
	RequestedAt time.Time       `gorm:"not null" json:"requested_at"`
	ProcessedAt *time.Time      `json:"processed_at,omitempty"`

	Host User `gorm:"foreignkey:HostID" json:"host,omitempty"`
}
