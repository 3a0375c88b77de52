package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"farmconnect/internal/models"
)

// GORMListingRepository is a GORM implementation of ListingRepository.
type GORMListingRepository struct {
	db *gorm.DB
}

// NewGORMListingRepository creates a new instance of GORMListingRepository.
func NewGORMListingRepository(db *gorm.DB) *GORMListingRepository {
	return &GORMListingRepository{db: db}
}

// ListByFarmer returns the farmer's listings, newest first.
func (r *GORMListingRepository) ListByFarmer(ctx context.Context, farmerID string) ([]models.Listing, error) {
	var listings []models.Listing
	if err := r.db.WithContext(ctx).
		Where("farmer_id = ?", farmerID).
		Order("created_at DESC").
		Find(&listings).Error; err != nil {
		return nil, fmt.Errorf("failed to list listings for farmer %s: %w", farmerID, err)
	}
	return listings, nil
}

// ListAvailable returns every available listing across farmers, newest first,
// with the farmer's name and location.
func (r *GORMListingRepository) ListAvailable(ctx context.Context) ([]models.Listing, error) {
	var listings []models.Listing
	if err := r.db.WithContext(ctx).
		Model(&models.Listing{}).
		Select("listings.*, "+
			"COALESCE(users.name, '') AS farmer_name, "+
			"COALESCE(users.village, '') AS farmer_village, "+
			"COALESCE(users.state, '') AS farmer_state").
		Joins("LEFT JOIN users ON users.id = listings.farmer_id").
		Where("listings.status = ?", models.ListingAvailable).
		Order("listings.created_at DESC").
		Find(&listings).Error; err != nil {
		return nil, fmt.Errorf("failed to list available listings: %w", err)
	}
	return listings, nil
}

func (r *GORMListingRepository) GetByID(ctx context.Context, id string) (*models.Listing, error) {
	var listing models.Listing
	if err := r.db.WithContext(ctx).First(&listing, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("listing %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get listing %s: %w", id, err)
	}
	return &listing, nil
}

func (r *GORMListingRepository) Create(ctx context.Context, listing *models.Listing) error {
	if listing.ID == "" {
		listing.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(listing).Error; err != nil {
		return fmt.Errorf("failed to create listing: %w", err)
	}
	return nil
}

// Update saves every field of listing.
func (r *GORMListingRepository) Update(ctx context.Context, listing *models.Listing) error {
	res := r.db.WithContext(ctx).
		Model(&models.Listing{}).
		Where("id = ?", listing.ID).
		Select("*").
		Omit("id", "created_at", "farmer_name", "farmer_village", "farmer_state").
		Updates(listing)
	if res.Error != nil {
		return fmt.Errorf("failed to update listing %s: %w", listing.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("listing %s: %w", listing.ID, ErrNotFound)
	}
	return nil
}

func (r *GORMListingRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Listing{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete listing %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("listing %s: %w", id, ErrNotFound)
	}
	return nil
}

// Deplete computes the remaining stock in decimal and writes it back with a
// compare-and-swap on the quantity it read, so the database never does
// arithmetic on the column and a concurrent depletion turns into ErrStaleWrite.
func (r *GORMListingRepository) Deplete(ctx context.Context, id string, qty decimal.Decimal, strict bool) error {
	listing, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if strict && listing.QuantityKg.LessThan(qty) {
		return fmt.Errorf("listing %s holds %s kg: %w", id, listing.QuantityKg, ErrInsufficientStock)
	}

	remaining := listing.QuantityKg.Sub(qty)
	status := listing.Status
	if !remaining.IsPositive() {
		remaining = decimal.Zero
		status = models.ListingSold
	}

	res := r.db.WithContext(ctx).
		Model(&models.Listing{}).
		Where("id = ? AND quantity_kg = ?", id, listing.QuantityKg).
		Updates(map[string]any{
			"quantity_kg": remaining,
			"status":      status,
			"updated_at":  time.Now(),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to deplete listing %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("listing %s stock changed: %w", id, ErrStaleWrite)
	}
	return nil
}
