package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farmconnect/internal/identity"
	"farmconnect/internal/models"
	"farmconnect/internal/services"
	"farmconnect/pkg/apperrors"
)

func TestLedgerService_RecordSale(t *testing.T) {
	ctx := context.Background()
	ledger := &fakeLedger{}
	listings := new(MockListingRepository)
	listings.On("GetByID", ctx, "l1").Return(&models.Listing{ID: "l1", FarmerID: "farmer-1", CurrencyCode: "INR"}, nil)
	listings.On("GetByID", ctx, "missing").Return(nil, notFound("listing"))
	svc := services.NewLedgerService(ledger, listings)
	farmer := identity.Farmer{ID: "farmer-1"}

	date := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	entry, err := svc.RecordSale(ctx, farmer, services.RecordSaleInput{
		ListingID:   "l1",
		BuyerName:   "Village market",
		QuantityKg:  decimal.NewFromInt(3),
		TotalAmount: decimal.NewFromInt(90),
		Date:        &date,
	})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCash, entry.PaymentMethod)
	assert.Equal(t, models.LedgerCompleted, entry.Status)
	assert.Nil(t, entry.ConsumerID)
	assert.Equal(t, date, entry.Date)

	entries, err := svc.ListEntries(ctx, farmer)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	_, err = svc.RecordSale(ctx, identity.Farmer{ID: "farmer-2"}, services.RecordSaleInput{
		ListingID: "l1", BuyerName: "x", QuantityKg: decimal.NewFromInt(1),
	})
	assert.True(t, apperrors.Is(err, apperrors.CodeUnauthorized))

	_, err = svc.RecordSale(ctx, farmer, services.RecordSaleInput{
		ListingID: "missing", BuyerName: "x", QuantityKg: decimal.NewFromInt(1),
	})
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))

	_, err = svc.RecordSale(ctx, farmer, services.RecordSaleInput{ListingID: "l1", Status: "void"})
	require.True(t, apperrors.Is(err, apperrors.CodeInvalidInput))
	details := apperrors.As(err).Details().(map[string]string)
	assert.Contains(t, details, "buyer_name")
	assert.Contains(t, details, "quantity_kg")
	assert.Contains(t, details, "status")

	_, err = svc.ListEntries(ctx, identity.Consumer{ID: "c"})
	assert.True(t, apperrors.Is(err, apperrors.CodeForbidden))
}
