package repositories

import (
	"context"

	"github.com/shopspring/decimal"

	"farmconnect/internal/models"
)

// ListingRepository defines the interface for catalog data access.
type ListingRepository interface {
	ListByFarmer(ctx context.Context, farmerID string) ([]models.Listing, error)
	ListAvailable(ctx context.Context) ([]models.Listing, error)
	GetByID(ctx context.Context, id string) (*models.Listing, error)
	Create(ctx context.Context, listing *models.Listing) error
	Update(ctx context.Context, listing *models.Listing) error
	Delete(ctx context.Context, id string) error
	// Deplete subtracts qty from the listing's stock, clamping at zero and
	// marking the listing sold when nothing is left. With strict set it fails
	// with ErrInsufficientStock unless the stock covers qty. A concurrent
	// change to the stock yields ErrStaleWrite.
	Deplete(ctx context.Context, id string, qty decimal.Decimal, strict bool) error
}
