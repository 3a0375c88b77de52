package app

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farmconnect/internal/config"
	"farmconnect/internal/database"
	"farmconnect/pkg/metrics"
)

func TestHealthAndMetrics(t *testing.T) {
	db, err := database.OpenMemory("app_" + uuid.New().String())
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	m := metrics.NewOrderMetrics(reg)
	m.IncCreated()

	a := New(Deps{
		Config:   &config.Config{JWT: config.JWTConfig{Secret: "s", TTL: time.Hour}},
		DB:       db,
		Gatherer: reg,
		Metrics:  m,
	})

	resp, err := a.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
	resp.Body.Close()

	resp, err = a.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "orders_created_total 1")

	resp, err = a.Test(httptest.NewRequest(http.MethodGet, "/nowhere", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
	resp, err = a.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	resp.Body.Close()
}

// downCache is a cache whose backend never answers.
type downCache struct{}

func (downCache) GetJSON(context.Context, string, any) (bool, error) {
	return false, errors.New("connection refused")
}

func (downCache) SetJSON(context.Context, string, any, time.Duration) error {
	return errors.New("connection refused")
}

func (downCache) Ping(context.Context) error {
	return errors.New("connection refused")
}

func TestHealthReportsCacheOutage(t *testing.T) {
	db, err := database.OpenMemory("app_" + uuid.New().String())
	require.NoError(t, err)

	a := New(Deps{
		Config: &config.Config{JWT: config.JWTConfig{Secret: "s", TTL: time.Hour}},
		DB:     db,
		Cache:  downCache{},
	})

	resp, err := a.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	// Market reads fall back to the database, so a cache outage is not fatal.
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "degraded", body["status"])
	assert.Equal(t, "down", body["cache"])
}
