package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MarketPrice is a reference price snapshot for a commodity.
type MarketPrice struct {
	ID                 string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	CommodityName      string          `json:"commodity_name" gorm:"type:varchar(100);not null"`
	CurrentPricePerKg  decimal.Decimal `json:"current_price_per_kg" gorm:"type:numeric;not null"`
	PriceChangePercent decimal.Decimal `json:"price_change_percent_vs_last_week" gorm:"type:numeric;not null"`
	Level              string          `json:"level" gorm:"type:varchar(10);not null"`
	LastUpdatedDate    time.Time       `json:"last_updated_date" gorm:"index"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// MarketOpportunity is a bulk buyer's standing requirement.
type MarketOpportunity struct {
	ID                     string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	BuyerName              string          `json:"buyer_name" gorm:"type:varchar(100);not null"`
	RequirementDescription string          `json:"requirement_description" gorm:"type:text;not null"`
	QuantityNeededKg       decimal.Decimal `json:"quantity_needed_kg" gorm:"type:numeric;not null"`
	OfferedPricePerKg      decimal.Decimal `json:"offered_price_per_kg" gorm:"type:numeric;not null"`
	Location               string          `json:"location" gorm:"type:varchar(100);not null"`
	Status                 string          `json:"status" gorm:"type:varchar(10);index;not null"`
	ContactPhone           string          `json:"contact_phone,omitempty" gorm:"type:varchar(20)"`
	ContactEmail           string          `json:"contact_email,omitempty" gorm:"type:varchar(255)"`
	CreatedAt              time.Time       `json:"created_at"`
	UpdatedAt              time.Time       `json:"updated_at"`
}

const OpportunityActive = "active"
