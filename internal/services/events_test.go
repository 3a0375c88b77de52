package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farmconnect/internal/models"
	"farmconnect/internal/services"
)

func TestOrderEventAuditor(t *testing.T) {
	auditor := services.NewOrderEventAuditor(nil, nil)
	body, err := json.Marshal(services.OrderEvent{
		Type:        "order.completed",
		OrderID:     "order-1",
		Status:      models.OrderCompleted,
		TotalAmount: decimal.NewFromInt(80),
	})
	require.NoError(t, err)

	assert.NoError(t, auditor.Handle(context.Background(), "order.completed", body))

	err = auditor.Handle(context.Background(), "order.completed", []byte("{not json"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, services.ErrMalformedEvent))
}
