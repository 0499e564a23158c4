package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ListingStatus string

const (
	ListingPending  ListingStatus = "pending"
	ListingApproved ListingStatus = "approved"
	ListingRejected ListingStatus = "rejected"
)

type Listing struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	HostID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"host_id"`
	Title         string          `gorm:"size:255;not null" json:"title"`
	Description   string          `gorm:"type:text" json:"description"`
	Location      string          `gorm:"size:255;not null;index" json:"location"`
	PropertyType  string          `gorm:"size:50" json:"property_type"`
	PricePerNight decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price_per_night"`
	Currency      string          `gorm:"size:3;not null;default:'USD'" json:"currency"`
	MaxGuests     int             `gorm:"not null;default:1" json:"max_guests"`
	Bedrooms      int             `gorm:"default:1" json:"bedrooms"`
	ImageURLs     string          `gorm:"type:text" json:"image_urls"`

	// Percent retained by the platform; nil falls back to the configured default.
	CommissionRate *decimal.Decimal `gorm:"type:numeric(5,2)" json:"commission_rate"`
	Status         ListingStatus    `gorm:"size:20;not null;default:'pending'" json:"status"`
	AvgRating      float32          `gorm:"default:0" json:"avg_rating"`

	Host User `gorm:"foreignkey:HostID" json:"host,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
