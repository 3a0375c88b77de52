package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type LedgerStatus string

const (
	LedgerCompleted LedgerStatus = "completed"
	LedgerPending   LedgerStatus = "pending"
)

func (s LedgerStatus) IsValid() bool {
	return s == LedgerCompleted || s == LedgerPending
}

// OrderBuyerName is recorded on ledger entries produced by completed orders.
const OrderBuyerName = "Consumer Order"

// LedgerEntry records a sale. Entries are append-only and do not point back
// at the order that produced them.
type LedgerEntry struct {
	ID            string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	FarmerID      string          `json:"farmer_id" gorm:"type:varchar(36);index;not null"`
	ListingID     string          `json:"listing_id" gorm:"type:varchar(36);index;not null"`
	ConsumerID    *string         `json:"consumer_id,omitempty" gorm:"type:varchar(36)"`
	BuyerName     string          `json:"buyer_name" gorm:"type:varchar(100);not null"`
	QuantityKg    decimal.Decimal `json:"quantity_kg" gorm:"type:numeric;not null"`
	TotalAmount   decimal.Decimal `json:"total_amount" gorm:"type:numeric;not null"`
	CurrencyCode  string          `json:"currency_code" gorm:"type:varchar(3);not null;default:INR"`
	PaymentMethod PaymentMethod   `json:"payment_method" gorm:"type:varchar(20);not null"`
	Status        LedgerStatus    `json:"status" gorm:"type:varchar(16);not null"`
	Date          time.Time       `json:"date" gorm:"index;not null"`
	CreatedAt     time.Time       `json:"created_at"`
}

func (LedgerEntry) TableName() string {
	return "ledger_entries"
}
