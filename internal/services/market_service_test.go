package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"farmconnect/internal/models"
	"farmconnect/internal/services"
)

type MockMarketRepository struct {
	mock.Mock
}

func (m *MockMarketRepository) ListPrices(ctx context.Context) ([]models.MarketPrice, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.MarketPrice), args.Error(1)
}

func (m *MockMarketRepository) ListActiveOpportunities(ctx context.Context) ([]models.MarketOpportunity, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.MarketOpportunity), args.Error(1)
}

// memoryCache is an in-process cache.Cache.
type memoryCache struct {
	data   map[string][]byte
	getErr error
	ttl    time.Duration
}

func (c *memoryCache) GetJSON(_ context.Context, key string, dst any) (bool, error) {
	if c.getErr != nil {
		return false, c.getErr
	}
	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dst)
}

func (c *memoryCache) SetJSON(_ context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = raw
	c.ttl = ttl
	return nil
}

func TestMarketService_CachesPrices(t *testing.T) {
	ctx := context.Background()
	repo := new(MockMarketRepository)
	repo.On("ListPrices", ctx).Return([]models.MarketPrice{{ID: "p1", CommodityName: "Onion"}}, nil).Once()
	c := &memoryCache{data: map[string][]byte{}}
	svc := services.NewMarketService(repo, c, 10*time.Minute, nil)

	first, err := svc.Prices(ctx)
	require.NoError(t, err)
	second, err := svc.Prices(ctx)
	require.NoError(t, err)

	assert.Equal(t, "Onion", second[0].CommodityName)
	assert.Equal(t, first[0].ID, second[0].ID)
	assert.Equal(t, 10*time.Minute, c.ttl)
	repo.AssertExpectations(t)
}

func TestMarketService_CacheFailureFallsBack(t *testing.T) {
	ctx := context.Background()
	repo := new(MockMarketRepository)
	repo.On("ListActiveOpportunities", ctx).Return([]models.MarketOpportunity{{ID: "o1"}}, nil).Twice()
	c := &memoryCache{data: map[string][]byte{}, getErr: errors.New("connection refused")}
	svc := services.NewMarketService(repo, c, time.Minute, nil)

	for i := 0; i < 2; i++ {
		opps, err := svc.Opportunities(ctx)
		require.NoError(t, err)
		assert.Len(t, opps, 1)
	}
	repo.AssertExpectations(t)

	uncached := services.NewMarketService(repo, nil, time.Minute, nil)
	repo.On("ListActiveOpportunities", ctx).Return([]models.MarketOpportunity{}, nil).Once()
	_, err := uncached.Opportunities(ctx)
	assert.NoError(t, err)
}
