package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"farmconnect/internal/models"
)

// MarketRepository reads the market reference tables.
type MarketRepository interface {
	ListPrices(ctx context.Context) ([]models.MarketPrice, error)
	ListActiveOpportunities(ctx context.Context) ([]models.MarketOpportunity, error)
}

type GORMMarketRepository struct {
	db *gorm.DB
}

func NewGORMMarketRepository(db *gorm.DB) *GORMMarketRepository {
	return &GORMMarketRepository{db: db}
}

func (r *GORMMarketRepository) ListPrices(ctx context.Context) ([]models.MarketPrice, error) {
	var prices []models.MarketPrice
	if err := r.db.WithContext(ctx).Order("last_updated_date DESC").Find(&prices).Error; err != nil {
		return nil, fmt.Errorf("failed to list market prices: %w", err)
	}
	return prices, nil
}

func (r *GORMMarketRepository) ListActiveOpportunities(ctx context.Context) ([]models.MarketOpportunity, error) {
	var opps []models.MarketOpportunity
	if err := r.db.WithContext(ctx).
		Where("status = ?", models.OpportunityActive).
		Order("created_at DESC").
		Find(&opps).Error; err != nil {
		return nil, fmt.Errorf("failed to list market opportunities: %w", err)
	}
	return opps, nil
}
