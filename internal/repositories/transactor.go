package repositories

import (
	"context"

	"gorm.io/gorm"
)

// Store groups the repositories that take part in an order completion.
type Store struct {
	Listings ListingRepository
	Orders   OrderRepository
	Ledger   LedgerRepository
}

// Transactor runs fn against repositories bound to a single transaction.
// The transaction commits when fn returns nil and rolls back otherwise.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
}

// GORMTransactor is a Transactor over a GORM connection.
type GORMTransactor struct {
	db *gorm.DB
}

func NewGORMTransactor(db *gorm.DB) *GORMTransactor {
	return &GORMTransactor{db: db}
}

func (t *GORMTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, Store{
			Listings: NewGORMListingRepository(tx),
			Orders:   NewGORMOrderRepository(tx),
			Ledger:   NewGORMLedgerRepository(tx),
		})
	})
}
