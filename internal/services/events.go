package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"farmconnect/internal/models"
	"farmconnect/pkg/logger"
	"farmconnect/pkg/metrics"
)

// EventPublisher sends an event body under a routing key.
type EventPublisher interface {
	Publish(routingKey string, body []byte) error
}

// OrderEvent is the payload published after an order is created or changes status.
type OrderEvent struct {
	Type        string             `json:"type"`
	OrderID     string             `json:"order_id"`
	BuyerID     string             `json:"buyer_id"`
	SellerID    string             `json:"seller_id"`
	ListingID   string             `json:"listing_id"`
	Status      models.OrderStatus `json:"status"`
	QuantityKg  decimal.Decimal    `json:"quantity_kg"`
	TotalAmount decimal.Decimal    `json:"total_amount"`
	OccurredAt  time.Time          `json:"occurred_at"`
}

const eventCreated = "order.created"

func eventTypeFor(status models.OrderStatus) string {
	return "order." + string(status)
}

func newOrderEvent(eventType string, o *models.Order) OrderEvent {
	return OrderEvent{
		Type:        eventType,
		OrderID:     o.ID,
		BuyerID:     o.BuyerID,
		SellerID:    o.SellerID,
		ListingID:   o.ListingID,
		Status:      o.Status,
		QuantityKg:  o.QuantityKg,
		TotalAmount: o.TotalAmount,
		OccurredAt:  time.Now().UTC(),
	}
}

// ErrMalformedEvent is returned for an event body that cannot be decoded.
var ErrMalformedEvent = errors.New("malformed order event")

// OrderEventAuditor writes one audit log line per consumed order event.
type OrderEventAuditor struct {
	log     *logger.Logger
	metrics *metrics.OrderMetrics
}

// NewOrderEventAuditor creates an auditor. A nil log discards output.
func NewOrderEventAuditor(log *logger.Logger, m *metrics.OrderMetrics) *OrderEventAuditor {
	if log == nil {
		log = logger.Nop()
	}
	return &OrderEventAuditor{log: log, metrics: m}
}

// Handle decodes body and records it. A body that does not decode yields
// ErrMalformedEvent.
func (a *OrderEventAuditor) Handle(ctx context.Context, routingKey string, body []byte) error {
	var evt OrderEvent
	if err := json.Unmarshal(body, &evt); err != nil {
		return fmt.Errorf("%w %s: %w", ErrMalformedEvent, routingKey, err)
	}
	a.metrics.IncEventConsumed(routingKey)
	a.log.Infow(ctx, "order event", map[string]any{
		"routing_key":  routingKey,
		"order_id":     evt.OrderID,
		"status":       evt.Status,
		"buyer_id":     evt.BuyerID,
		"seller_id":    evt.SellerID,
		"total_amount": evt.TotalAmount.String(),
	})
	return nil
}
