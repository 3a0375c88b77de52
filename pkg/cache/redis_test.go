package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	values  map[string]string
	ttls    map[string]time.Duration
	getErr  error
	pingErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeStore) Ping(context.Context) *redis.StatusCmd {
	if f.pingErr != nil {
		return redis.NewStatusResult("", f.pingErr)
	}
	return redis.NewStatusResult("PONG", nil)
}

func (f *fakeStore) Get(_ context.Context, key string) *redis.StringCmd {
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	v, ok := f.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeStore) Set(_ context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd {
	switch v := value.(type) {
	case []byte:
		f.values[key] = string(v)
	case string:
		f.values[key] = v
	}
	f.ttls[key] = ttl
	return redis.NewStatusResult("OK", nil)
}

type price struct {
	Commodity string `json:"commodity"`
	Price     int    `json:"price"`
}

func TestRedisCacheRoundTrip(t *testing.T) {
	store := newFakeStore()
	c := newWithStore(store)
	ctx := context.Background()
	key := Key("market", "prices")
	assert.Equal(t, "fc:market:prices", key)

	var got []price
	hit, err := c.GetJSON(ctx, key, &got)
	require.NoError(t, err)
	assert.False(t, hit)

	want := []price{{Commodity: "Tomato", Price: 30}}
	require.NoError(t, c.SetJSON(ctx, key, want, time.Minute))
	assert.Equal(t, time.Minute, store.ttls[key])

	hit, err = c.GetJSON(ctx, key, &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, want, got)
}

func TestRedisCacheGetError(t *testing.T) {
	store := newFakeStore()
	store.getErr = errors.New("connection refused")
	c := newWithStore(store)

	var got []price
	hit, err := c.GetJSON(context.Background(), Key("x"), &got)
	assert.Error(t, err)
	assert.False(t, hit)
}

func TestRedisCachePing(t *testing.T) {
	store := newFakeStore()
	c := newWithStore(store)
	assert.NoError(t, c.Ping(context.Background()))

	store.pingErr = errors.New("connection refused")
	assert.Error(t, c.Ping(context.Background()))
}
