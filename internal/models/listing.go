package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category classifies listed produce.
type Category string

const (
	CategoryVegetables Category = "Vegetables"
	CategoryFruits     Category = "Fruits"
	CategoryOther      Category = "Other"
)

func (c Category) IsValid() bool {
	switch c {
	case CategoryVegetables, CategoryFruits, CategoryOther:
		return true
	}
	return false
}

// ListingStatus is the availability of a listing.
type ListingStatus string

const (
	ListingAvailable ListingStatus = "available"
	ListingSold      ListingStatus = "sold"
)

func (s ListingStatus) IsValid() bool {
	return s == ListingAvailable || s == ListingSold
}

const DefaultCurrency = "INR"

// Listing is a farmer's sellable stock of one product. Quantities are in kilograms.
type Listing struct {
	ID           string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	FarmerID     string          `json:"farmer_id" gorm:"type:varchar(36);index;not null"`
	Name         string          `json:"name" gorm:"type:varchar(100);not null"`
	Category     Category        `json:"category" gorm:"type:varchar(20);not null"`
	QuantityKg   decimal.Decimal `json:"quantity_kg" gorm:"type:numeric;not null"`
	PricePerKg   decimal.Decimal `json:"price_per_kg" gorm:"type:numeric;not null"`
	CurrencyCode string          `json:"currency_code" gorm:"type:varchar(3);not null;default:INR"`
	Status       ListingStatus   `json:"status" gorm:"type:varchar(16);index;not null"`
	HarvestDate  time.Time       `json:"harvest_date" gorm:"not null"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`

	// Seller details joined in for consumer browsing.
	FarmerName    string `json:"farmer_name,omitempty" gorm:"->;-:migration"`
	FarmerVillage string `json:"farmer_village,omitempty" gorm:"->;-:migration"`
	FarmerState   string `json:"farmer_state,omitempty" gorm:"->;-:migration"`
}

func (Listing) TableName() string {
	return "listings"
}
