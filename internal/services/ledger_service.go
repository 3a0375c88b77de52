package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"farmconnect/internal/identity"
	"farmconnect/internal/models"
	"farmconnect/internal/repositories"
	"farmconnect/pkg/apperrors"
)

// RecordSaleInput describes a sale made outside the platform.
type RecordSaleInput struct {
	ListingID     string
	BuyerName     string
	QuantityKg    decimal.Decimal
	TotalAmount   decimal.Decimal
	PaymentMethod string
	Status        string
	Date          *time.Time
}

// LedgerService exposes a farmer's sales ledger.
type LedgerService struct {
	ledger   repositories.LedgerRepository
	listings repositories.ListingRepository
}

func NewLedgerService(ledger repositories.LedgerRepository, listings repositories.ListingRepository) *LedgerService {
	return &LedgerService{ledger: ledger, listings: listings}
}

// ListEntries returns the farmer's ledger, most recent first.
func (s *LedgerService) ListEntries(ctx context.Context, actor identity.Actor) ([]models.LedgerEntry, error) {
	farmer, err := identity.RequireFarmer(actor)
	if err != nil {
		return nil, err
	}
	entries, err := s.ledger.ListByFarmer(ctx, farmer.ID)
	if err != nil {
		return nil, apperrors.Internal(err, "list ledger")
	}
	return entries, nil
}

// RecordSale appends a manual entry against one of the farmer's own listings.
func (s *LedgerService) RecordSale(ctx context.Context, actor identity.Actor, in RecordSaleInput) (*models.LedgerEntry, error) {
	farmer, err := identity.RequireFarmer(actor)
	if err != nil {
		return nil, err
	}

	payment := models.PaymentMethod(in.PaymentMethod)
	if payment == "" {
		payment = models.PaymentCash
	}
	status := models.LedgerStatus(in.Status)
	if status == "" {
		status = models.LedgerCompleted
	}

	details := map[string]string{}
	if strings.TrimSpace(in.BuyerName) == "" {
		details["buyer_name"] = "is required"
	}
	if !in.QuantityKg.IsPositive() {
		details["quantity_kg"] = "must be greater than zero"
	}
	if in.TotalAmount.IsNegative() {
		details["total_amount"] = "must not be negative"
	}
	if !payment.IsValid() {
		details["payment_method"] = "must be one of Cash, Bank Transfer, UPI"
	}
	if !status.IsValid() {
		details["status"] = "must be completed or pending"
	}
	if len(details) > 0 {
		return nil, apperrors.New(apperrors.CodeInvalidInput, "invalid transaction").WithDetails(details)
	}

	listing, err := s.listings.GetByID(ctx, in.ListingID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "product not found")
		}
		return nil, apperrors.Internal(err, "load listing for transaction")
	}
	if listing.FarmerID != farmer.ID {
		return nil, apperrors.New(apperrors.CodeUnauthorized, "not authorized for this product")
	}

	date := time.Now()
	if in.Date != nil && !in.Date.IsZero() {
		date = *in.Date
	}
	entry := &models.LedgerEntry{
		FarmerID:      farmer.ID,
		ListingID:     listing.ID,
		BuyerName:     strings.TrimSpace(in.BuyerName),
		QuantityKg:    in.QuantityKg,
		TotalAmount:   in.TotalAmount,
		CurrencyCode:  listing.CurrencyCode,
		PaymentMethod: payment,
		Status:        status,
		Date:          date,
	}
	if err := s.ledger.Create(ctx, entry); err != nil {
		return nil, apperrors.Internal(err, "record transaction")
	}
	return entry, nil
}
