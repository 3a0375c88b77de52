package repositories

import (
	"context"

	"farmconnect/internal/models"
)

// LedgerRepository is append-only: there is no update or delete.
type LedgerRepository interface {
	Create(ctx context.Context, entry *models.LedgerEntry) error
	ListByFarmer(ctx context.Context, farmerID string) ([]models.LedgerEntry, error)
}
