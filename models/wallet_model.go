package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type HostWallet struct {
	ID                  uuid.UUID       `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	HostID              uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex" json:"host_id"`
	AvailableBalance    decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"available_balance"`
	TotalEarnings       decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"total_earnings"`
	TotalCommissionPaid decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"total_commission_paid"`
	TotalWithdrawn      decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"total_withdrawn"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (HostWallet) TableName() string {
	return "host_wallets"
}
