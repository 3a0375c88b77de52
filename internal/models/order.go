package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is a state of the order lifecycle.
type OrderStatus string

const (
	OrderRequested OrderStatus = "requested"
	OrderAccepted  OrderStatus = "accepted"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
)

func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderRequested, OrderAccepted, OrderCompleted, OrderCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no transition may leave s.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderCompleted || s == OrderCancelled
}

// IsPending reports whether the order still awaits completion.
func (s OrderStatus) IsPending() bool {
	return s == OrderRequested || s == OrderAccepted
}

// PaymentMethod is how the buyer settles an order.
type PaymentMethod string

const (
	PaymentCash         PaymentMethod = "Cash"
	PaymentBankTransfer PaymentMethod = "Bank Transfer"
	PaymentUPI          PaymentMethod = "UPI"
)

func (p PaymentMethod) IsValid() bool {
	switch p {
	case PaymentCash, PaymentBankTransfer, PaymentUPI:
		return true
	}
	return false
}

// Order is a consumer's request to buy from one listing. UnitPrice and
// CurrencyCode are captured from the listing at creation and TotalAmount is
// never recomputed.
type Order struct {
	ID            string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	BuyerID       string          `json:"buyer_id" gorm:"type:varchar(36);index;not null"`
	SellerID      string          `json:"seller_id" gorm:"type:varchar(36);index;not null"`
	ListingID     string          `json:"listing_id" gorm:"type:varchar(36);index;not null"`
	QuantityKg    decimal.Decimal `json:"quantity_kg" gorm:"type:numeric;not null"`
	UnitPrice     decimal.Decimal `json:"unit_price" gorm:"type:numeric;not null"`
	TotalAmount   decimal.Decimal `json:"total_amount" gorm:"type:numeric;not null"`
	CurrencyCode  string          `json:"currency_code" gorm:"type:varchar(3);not null;default:INR"`
	PaymentMethod PaymentMethod   `json:"payment_method" gorm:"type:varchar(20);not null"`
	Status        OrderStatus     `json:"status" gorm:"type:varchar(16);index;not null"`
	OrderDate     time.Time       `json:"order_date" gorm:"index;not null"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`

	// Display names joined in by the list queries.
	ProductName string `json:"product_name,omitempty" gorm:"->;-:migration"`
	SellerName  string `json:"seller_name,omitempty" gorm:"->;-:migration"`
	BuyerName   string `json:"buyer_name,omitempty" gorm:"->;-:migration"`
}

func (Order) TableName() string {
	return "orders"
}
