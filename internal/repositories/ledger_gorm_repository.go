package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"farmconnect/internal/models"
)

// GORMLedgerRepository is a GORM implementation of LedgerRepository.
type GORMLedgerRepository struct {
	db *gorm.DB
}

func NewGORMLedgerRepository(db *gorm.DB) *GORMLedgerRepository {
	return &GORMLedgerRepository{db: db}
}

func (r *GORMLedgerRepository) Create(ctx context.Context, entry *models.LedgerEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Date.IsZero() {
		entry.Date = time.Now()
	}
	if entry.CurrencyCode == "" {
		entry.CurrencyCode = models.DefaultCurrency
	}
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to create ledger entry: %w", err)
	}
	return nil
}

// ListByFarmer returns the farmer's entries, most recent date first.
func (r *GORMLedgerRepository) ListByFarmer(ctx context.Context, farmerID string) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry
	if err := r.db.WithContext(ctx).
		Where("farmer_id = ?", farmerID).
		Order("date DESC").
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to list ledger for farmer %s: %w", farmerID, err)
	}
	return entries, nil
}
