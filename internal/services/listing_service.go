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

// CreateListingInput holds the fields of a new listing.
type CreateListingInput struct {
	Name         string
	Category     string
	QuantityKg   decimal.Decimal
	PricePerKg   decimal.Decimal
	CurrencyCode string
	HarvestDate  time.Time
	Status       string
}

// UpdateListingInput is a partial update: nil fields are left unchanged.
type UpdateListingInput struct {
	Name         *string
	Category     *string
	QuantityKg   *decimal.Decimal
	PricePerKg   *decimal.Decimal
	CurrencyCode *string
	HarvestDate  *time.Time
	Status       *string
}

// ListingService handles the farmer catalog.
type ListingService struct {
	repo repositories.ListingRepository
}

// NewListingService creates a new ListingService.
func NewListingService(repo repositories.ListingRepository) *ListingService {
	return &ListingService{repo: repo}
}

// ListOwn returns the farmer's listings.
func (s *ListingService) ListOwn(ctx context.Context, actor identity.Actor) ([]models.Listing, error) {
	farmer, err := identity.RequireFarmer(actor)
	if err != nil {
		return nil, err
	}
	listings, err := s.repo.ListByFarmer(ctx, farmer.ID)
	if err != nil {
		return nil, apperrors.Internal(err, "list own listings")
	}
	return listings, nil
}

// ListAvailable returns every farmer's available listings to a consumer.
func (s *ListingService) ListAvailable(ctx context.Context, actor identity.Actor) ([]models.Listing, error) {
	if _, err := identity.RequireConsumer(actor); err != nil {
		return nil, err
	}
	listings, err := s.repo.ListAvailable(ctx)
	if err != nil {
		return nil, apperrors.Internal(err, "list available listings")
	}
	return listings, nil
}

func (s *ListingService) CreateListing(ctx context.Context, actor identity.Actor, in CreateListingInput) (*models.Listing, error) {
	farmer, err := identity.RequireFarmer(actor)
	if err != nil {
		return nil, err
	}

	status := models.ListingStatus(in.Status)
	if status == "" {
		status = models.ListingAvailable
	}
	currency := strings.ToUpper(in.CurrencyCode)
	if currency == "" {
		currency = models.DefaultCurrency
	}
	listing := &models.Listing{
		FarmerID:     farmer.ID,
		Name:         strings.TrimSpace(in.Name),
		Category:     models.Category(in.Category),
		QuantityKg:   in.QuantityKg,
		PricePerKg:   in.PricePerKg,
		CurrencyCode: currency,
		Status:       status,
		HarvestDate:  in.HarvestDate,
	}
	if err := validateListing(listing); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, listing); err != nil {
		return nil, apperrors.Internal(err, "create listing")
	}
	return listing, nil
}

func (s *ListingService) UpdateListing(ctx context.Context, actor identity.Actor, id string, in UpdateListingInput) (*models.Listing, error) {
	listing, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		listing.Name = strings.TrimSpace(*in.Name)
	}
	if in.Category != nil {
		listing.Category = models.Category(*in.Category)
	}
	if in.QuantityKg != nil {
		listing.QuantityKg = *in.QuantityKg
	}
	if in.PricePerKg != nil {
		listing.PricePerKg = *in.PricePerKg
	}
	if in.CurrencyCode != nil {
		listing.CurrencyCode = strings.ToUpper(*in.CurrencyCode)
	}
	if in.HarvestDate != nil {
		listing.HarvestDate = *in.HarvestDate
	}
	if in.Status != nil {
		listing.Status = models.ListingStatus(*in.Status)
	}
	if err := validateListing(listing); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, listing); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "product not found")
		}
		return nil, apperrors.Internal(err, "update listing")
	}
	return listing, nil
}

func (s *ListingService) DeleteListing(ctx context.Context, actor identity.Actor, id string) error {
	if _, err := s.owned(ctx, actor, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperrors.New(apperrors.CodeNotFound, "product not found")
		}
		return apperrors.Internal(err, "delete listing")
	}
	return nil
}

// owned loads a listing and checks that the farmer actor owns it.
func (s *ListingService) owned(ctx context.Context, actor identity.Actor, id string) (*models.Listing, error) {
	farmer, err := identity.RequireFarmer(actor)
	if err != nil {
		return nil, err
	}
	listing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "product not found")
		}
		return nil, apperrors.Internal(err, "load listing")
	}
	if listing.FarmerID != farmer.ID {
		return nil, apperrors.New(apperrors.CodeUnauthorized, "not authorized for this product")
	}
	return listing, nil
}

func validateListing(l *models.Listing) error {
	details := map[string]string{}
	if l.Name == "" {
		details["name"] = "is required"
	}
	if !l.Category.IsValid() {
		details["category"] = "must be one of Vegetables, Fruits, Other"
	}
	if l.QuantityKg.IsNegative() {
		details["quantity_kg"] = "must not be negative"
	}
	if !l.PricePerKg.IsPositive() {
		details["price_per_kg"] = "must be greater than zero"
	}
	if !l.Status.IsValid() {
		details["status"] = "must be available or sold"
	}
	if l.HarvestDate.IsZero() {
		details["harvest_date"] = "is required"
	}
	if len(l.CurrencyCode) != 3 {
		details["currency_code"] = "must be a 3 letter code"
	}
	if len(details) > 0 {
		return apperrors.New(apperrors.CodeInvalidInput, "invalid product").WithDetails(details)
	}
	return nil
}
