package repositories_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"farmconnect/internal/database"
	"farmconnect/internal/identity"
	"farmconnect/internal/models"
	"farmconnect/internal/repositories"
)

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenMemory("repo_" + uuid.New().String())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func seedListing(t *testing.T, repo *repositories.GORMListingRepository, farmerID string, qty, price int64) *models.Listing {
	t.Helper()
	l := &models.Listing{
		FarmerID:     farmerID,
		Name:         "Tomato",
		Category:     models.CategoryVegetables,
		QuantityKg:   decimal.NewFromInt(qty),
		PricePerKg:   decimal.NewFromInt(price),
		CurrencyCode: models.DefaultCurrency,
		Status:       models.ListingAvailable,
		HarvestDate:  time.Now().Add(-24 * time.Hour),
	}
	require.NoError(t, repo.Create(context.Background(), l))
	return l
}

func TestListingDeplete(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMListingRepository(openDB(t))
	l := seedListing(t, repo, "farmer-1", 10, 20)

	require.NoError(t, repo.Deplete(ctx, l.ID, decimal.NewFromInt(4), true))
	got, err := repo.GetByID(ctx, l.ID)
	require.NoError(t, err)
	assert.True(t, got.QuantityKg.Equal(decimal.NewFromInt(6)), "got %s", got.QuantityKg)
	assert.Equal(t, models.ListingAvailable, got.Status)

	// Strict mode refuses to oversell and leaves the row untouched.
	err = repo.Deplete(ctx, l.ID, decimal.NewFromInt(7), true)
	assert.True(t, errors.Is(err, repositories.ErrInsufficientStock))
	got, err = repo.GetByID(ctx, l.ID)
	require.NoError(t, err)
	assert.True(t, got.QuantityKg.Equal(decimal.NewFromInt(6)))

	// Lenient mode clamps at zero and marks the listing sold.
	require.NoError(t, repo.Deplete(ctx, l.ID, decimal.NewFromInt(7), false))
	got, err = repo.GetByID(ctx, l.ID)
	require.NoError(t, err)
	assert.True(t, got.QuantityKg.IsZero())
	assert.Equal(t, models.ListingSold, got.Status)

	err = repo.Deplete(ctx, "missing", decimal.NewFromInt(1), true)
	assert.True(t, errors.Is(err, repositories.ErrNotFound))
}

func TestListingDepleteExactQuantityMarksSold(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMListingRepository(openDB(t))
	l := seedListing(t, repo, "farmer-1", 5, 10)

	require.NoError(t, repo.Deplete(ctx, l.ID, decimal.NewFromInt(5), true))
	got, err := repo.GetByID(ctx, l.ID)
	require.NoError(t, err)
	assert.True(t, got.QuantityKg.IsZero())
	assert.Equal(t, models.ListingSold, got.Status)
}

func TestListingDepleteFractionalQuantities(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMListingRepository(openDB(t))
	l := seedListing(t, repo, "farmer-1", 0, 20)
	l.QuantityKg = decimal.RequireFromString("0.3")
	require.NoError(t, repo.Update(ctx, l))

	tenth := decimal.RequireFromString("0.1")
	for _, want := range []string{"0.2", "0.1", "0"} {
		require.NoError(t, repo.Deplete(ctx, l.ID, tenth, true))
		got, err := repo.GetByID(ctx, l.ID)
		require.NoError(t, err)
		assert.True(t, got.QuantityKg.Equal(decimal.RequireFromString(want)), "want %s, got %s", want, got.QuantityKg)
	}

	got, err := repo.GetByID(ctx, l.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ListingSold, got.Status)
}

func seedUser(t *testing.T, db *gorm.DB, name, role, village, state string) *models.User {
	t.Helper()
	u := &models.User{
		Name:              name,
		Phone:             uuid.New().String()[:12],
		Email:             uuid.New().String() + "@example.com",
		PasswordHash:      "x",
		Role:              identity.Role(role),
		Village:           village,
		State:             state,
		PreferredLanguage: "en",
	}
	require.NoError(t, repositories.NewGORMUserRepository(db).Create(context.Background(), u))
	return u
}

func TestListAvailableCarriesFarmerDetails(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	farmer := seedUser(t, db, "Ravi", "farmer", "Khed", "Maharashtra")
	repo := repositories.NewGORMListingRepository(db)
	seedListing(t, repo, farmer.ID, 10, 20)

	listings, err := repo.ListAvailable(ctx)
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Equal(t, "Ravi", listings[0].FarmerName)
	assert.Equal(t, "Khed", listings[0].FarmerVillage)
	assert.Equal(t, "Maharashtra", listings[0].FarmerState)
}

func TestOrderListsCarryNames(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	farmer := seedUser(t, db, "Ravi", "farmer", "", "")
	consumer := seedUser(t, db, "Meena", "consumer", "", "")
	listings := repositories.NewGORMListingRepository(db)
	l := seedListing(t, listings, farmer.ID, 10, 20)

	orders := repositories.NewGORMOrderRepository(db)
	require.NoError(t, orders.Create(ctx, &models.Order{
		BuyerID:       consumer.ID,
		SellerID:      farmer.ID,
		ListingID:     l.ID,
		QuantityKg:    decimal.NewFromInt(2),
		UnitPrice:     decimal.NewFromInt(20),
		TotalAmount:   decimal.NewFromInt(40),
		PaymentMethod: models.PaymentCash,
		Status:        models.OrderRequested,
	}))

	purchases, err := orders.ListByBuyer(ctx, consumer.ID)
	require.NoError(t, err)
	require.Len(t, purchases, 1)
	assert.Equal(t, "Tomato", purchases[0].ProductName)
	assert.Equal(t, "Ravi", purchases[0].SellerName)
	assert.Equal(t, "Meena", purchases[0].BuyerName)
	assert.Equal(t, models.DefaultCurrency, purchases[0].CurrencyCode)

	// A deleted listing leaves the order listed without a product name.
	require.NoError(t, listings.Delete(ctx, l.ID))
	sales, err := orders.ListBySeller(ctx, farmer.ID)
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Empty(t, sales[0].ProductName)
	assert.Equal(t, "Meena", sales[0].BuyerName)
}

func TestListingUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMListingRepository(openDB(t))
	l := seedListing(t, repo, "farmer-1", 5, 10)
	seedListing(t, repo, "farmer-2", 3, 12)

	l.Name = "Cherry Tomato"
	l.Status = models.ListingSold
	require.NoError(t, repo.Update(ctx, l))

	own, err := repo.ListByFarmer(ctx, "farmer-1")
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, "Cherry Tomato", own[0].Name)

	available, err := repo.ListAvailable(ctx)
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, "farmer-2", available[0].FarmerID)

	require.NoError(t, repo.Delete(ctx, l.ID))
	_, err = repo.GetByID(ctx, l.ID)
	assert.True(t, errors.Is(err, repositories.ErrNotFound))
	assert.True(t, errors.Is(repo.Delete(ctx, l.ID), repositories.ErrNotFound))
	assert.True(t, errors.Is(repo.Update(ctx, l), repositories.ErrNotFound))
}

func TestOrderUpdateStatusIsConditional(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMOrderRepository(openDB(t))
	o := &models.Order{
		BuyerID:       "consumer-1",
		SellerID:      "farmer-1",
		ListingID:     "listing-1",
		QuantityKg:    decimal.NewFromInt(2),
		UnitPrice:     decimal.NewFromInt(10),
		TotalAmount:   decimal.NewFromInt(20),
		PaymentMethod: models.PaymentCash,
		Status:        models.OrderRequested,
	}
	require.NoError(t, repo.Create(ctx, o))
	assert.NotEmpty(t, o.ID)

	require.NoError(t, repo.UpdateStatus(ctx, o.ID, models.OrderRequested, models.OrderAccepted))
	err := repo.UpdateStatus(ctx, o.ID, models.OrderRequested, models.OrderCancelled)
	assert.True(t, errors.Is(err, repositories.ErrStaleWrite))

	got, err := repo.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderAccepted, got.Status)
	assert.True(t, got.TotalAmount.Equal(decimal.NewFromInt(20)))

	byBuyer, err := repo.ListByBuyer(ctx, "consumer-1")
	require.NoError(t, err)
	assert.Len(t, byBuyer, 1)
	bySeller, err := repo.ListBySeller(ctx, "farmer-2")
	require.NoError(t, err)
	assert.Empty(t, bySeller)

	_, err = repo.GetByID(ctx, "nope")
	assert.True(t, errors.Is(err, repositories.ErrNotFound))
}

func TestLedgerListByFarmerNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMLedgerRepository(openDB(t))
	older := time.Now().Add(-48 * time.Hour)
	for i, d := range []time.Time{older, time.Now()} {
		require.NoError(t, repo.Create(ctx, &models.LedgerEntry{
			FarmerID:      "farmer-1",
			ListingID:     "listing-1",
			BuyerName:     "Market stall",
			QuantityKg:    decimal.NewFromInt(int64(i + 1)),
			TotalAmount:   decimal.NewFromInt(int64(10 * (i + 1))),
			PaymentMethod: models.PaymentUPI,
			Status:        models.LedgerCompleted,
			Date:          d,
		}))
	}

	entries, err := repo.ListByFarmer(ctx, "farmer-1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.True(t, entries[0].TotalAmount.Equal(decimal.NewFromInt(20)))
	assert.Equal(t, models.DefaultCurrency, entries[0].CurrencyCode)
}

func TestTransactorRollsBack(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	listings := repositories.NewGORMListingRepository(db)
	l := seedListing(t, listings, "farmer-1", 10, 20)
	boom := errors.New("boom")

	err := repositories.NewGORMTransactor(db).WithinTransaction(ctx, func(ctx context.Context, tx repositories.Store) error {
		if err := tx.Listings.Deplete(ctx, l.ID, decimal.NewFromInt(4), true); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := listings.GetByID(ctx, l.ID)
	require.NoError(t, err)
	assert.True(t, got.QuantityKg.Equal(decimal.NewFromInt(10)))
}

func TestUserDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewGORMUserRepository(openDB(t))
	u := &models.User{Name: "Asha", Phone: "900", Email: "asha@example.com", PasswordHash: "x", Role: "farmer", PreferredLanguage: "en"}
	require.NoError(t, repo.Create(ctx, u))

	dup := &models.User{Name: "Other", Phone: "901", Email: "asha@example.com", PasswordHash: "x", Role: "consumer", PreferredLanguage: "en"}
	assert.True(t, errors.Is(repo.Create(ctx, dup), repositories.ErrDuplicate))

	got, err := repo.GetByEmail(ctx, "ASHA@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
}

func TestMarketListsActiveOpportunities(t *testing.T) {
	ctx := context.Background()
	db := openDB(t)
	require.NoError(t, db.Create(&[]models.MarketOpportunity{
		{ID: "o1", BuyerName: "Hotel", RequirementDescription: "Onions", QuantityNeededKg: decimal.NewFromInt(100), OfferedPricePerKg: decimal.NewFromInt(30), Location: "Pune", Status: models.OpportunityActive},
		{ID: "o2", BuyerName: "Mill", RequirementDescription: "Wheat", QuantityNeededKg: decimal.NewFromInt(500), OfferedPricePerKg: decimal.NewFromInt(25), Location: "Indore", Status: "closed"},
	}).Error)
	require.NoError(t, db.Create(&models.MarketPrice{ID: "p1", CommodityName: "Onion", CurrentPricePerKg: decimal.NewFromInt(28), PriceChangePercent: decimal.NewFromFloat(-2.5), Level: "medium", LastUpdatedDate: time.Now()}).Error)

	repo := repositories.NewGORMMarketRepository(db)
	opps, err := repo.ListActiveOpportunities(ctx)
	require.NoError(t, err)
	require.Len(t, opps, 1)
	assert.Equal(t, "o1", opps[0].ID)

	prices, err := repo.ListPrices(ctx)
	require.NoError(t, err)
	require.Len(t, prices, 1)
	assert.True(t, prices[0].PriceChangePercent.Equal(decimal.NewFromFloat(-2.5)))
}
