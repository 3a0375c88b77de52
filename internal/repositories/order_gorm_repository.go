package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"farmconnect/internal/models"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{db: db}
}

func (r *GORMOrderRepository) Create(ctx context.Context, order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	if order.OrderDate.IsZero() {
		order.OrderDate = time.Now()
	}
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (r *GORMOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order %s: %w", id, err)
	}
	return &order, nil
}

func (r *GORMOrderRepository) ListByBuyer(ctx context.Context, buyerID string) ([]models.Order, error) {
	return r.list(ctx, "orders.buyer_id = ?", buyerID)
}

func (r *GORMOrderRepository) ListBySeller(ctx context.Context, sellerID string) ([]models.Order, error) {
	return r.list(ctx, "orders.seller_id = ?", sellerID)
}

// list returns matching orders with the product, seller and buyer names.
// Names of deleted listings or users come back empty.
func (r *GORMOrderRepository) list(ctx context.Context, query string, arg string) ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Select("orders.*, "+
			"COALESCE(listings.name, '') AS product_name, "+
			"COALESCE(sellers.name, '') AS seller_name, "+
			"COALESCE(buyers.name, '') AS buyer_name").
		Joins("LEFT JOIN listings ON listings.id = orders.listing_id").
		Joins("LEFT JOIN users AS sellers ON sellers.id = orders.seller_id").
		Joins("LEFT JOIN users AS buyers ON buyers.id = orders.buyer_id").
		Where(query, arg).
		Order("orders.order_date DESC").
		Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

func (r *GORMOrderRepository) UpdateStatus(ctx context.Context, id string, from, to models.OrderStatus) error {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{
			"status":     to,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update order %s status: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order %s no longer %s: %w", id, from, ErrStaleWrite)
	}
	return nil
}
