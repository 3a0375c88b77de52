package services

import (
	"context"
	"time"

	"farmconnect/internal/models"
	"farmconnect/internal/repositories"
	"farmconnect/pkg/apperrors"
	"farmconnect/pkg/cache"
	"farmconnect/pkg/logger"
)

var (
	marketPricesKey        = cache.Key("market", "prices")
	marketOpportunitiesKey = cache.Key("market", "opportunities")
)

// MarketService serves market reference data, cache-aside when a cache is set.
type MarketService struct {
	repo  repositories.MarketRepository
	cache cache.Cache
	ttl   time.Duration
	log   *logger.Logger
}

// NewMarketService creates a MarketService. c may be nil to read straight from the database.
func NewMarketService(repo repositories.MarketRepository, c cache.Cache, ttl time.Duration, log *logger.Logger) *MarketService {
	if log == nil {
		log = logger.Nop()
	}
	return &MarketService{repo: repo, cache: c, ttl: ttl, log: log}
}

func (s *MarketService) Prices(ctx context.Context) ([]models.MarketPrice, error) {
	var prices []models.MarketPrice
	if s.fromCache(ctx, marketPricesKey, &prices) {
		return prices, nil
	}
	prices, err := s.repo.ListPrices(ctx)
	if err != nil {
		return nil, apperrors.Internal(err, "list market prices")
	}
	s.toCache(ctx, marketPricesKey, prices)
	return prices, nil
}

func (s *MarketService) Opportunities(ctx context.Context) ([]models.MarketOpportunity, error) {
	var opps []models.MarketOpportunity
	if s.fromCache(ctx, marketOpportunitiesKey, &opps) {
		return opps, nil
	}
	opps, err := s.repo.ListActiveOpportunities(ctx)
	if err != nil {
		return nil, apperrors.Internal(err, "list market opportunities")
	}
	s.toCache(ctx, marketOpportunitiesKey, opps)
	return opps, nil
}

func (s *MarketService) fromCache(ctx context.Context, key string, dst any) bool {
	if s.cache == nil {
		return false
	}
	hit, err := s.cache.GetJSON(ctx, key, dst)
	if err != nil {
		s.log.Warn(ctx, "market cache read failed", err)
		return false
	}
	return hit
}

func (s *MarketService) toCache(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetJSON(ctx, key, value, s.ttl); err != nil {
		s.log.Warn(ctx, "market cache write failed", err)
	}
}
