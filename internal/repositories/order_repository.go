package repositories

import (
	"context"

	"farmconnect/internal/models"
)

// OrderRepository defines the interface for order data access. Orders are
// never deleted.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	ListByBuyer(ctx context.Context, buyerID string) ([]models.Order, error)
	ListBySeller(ctx context.Context, sellerID string) ([]models.Order, error)
	// UpdateStatus moves the order from one status to another and fails with
	// ErrStaleWrite when the stored status is no longer from.
	UpdateStatus(ctx context.Context, id string, from, to models.OrderStatus) error
}
