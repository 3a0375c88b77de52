package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"farmconnect/internal/identity"
	"farmconnect/internal/models"
	"farmconnect/internal/repositories"
	"farmconnect/pkg/apperrors"
	"farmconnect/pkg/logger"
	"farmconnect/pkg/metrics"
)

// CreateOrderInput is a consumer's request to buy from one listing.
type CreateOrderInput struct {
	ListingID     string
	QuantityKg    decimal.Decimal
	PaymentMethod string
}

// OrderOptions carries the optional collaborators of OrderService.
type OrderOptions struct {
	// Publisher may be nil, in which case no events are sent.
	Publisher   EventPublisher
	Metrics     *metrics.OrderMetrics
	Logger      *logger.Logger
	StrictStock bool
}

// OrderService owns order creation and the order status state machine.
type OrderService struct {
	orders      repositories.OrderRepository
	listings    repositories.ListingRepository
	tx          repositories.Transactor
	publisher   EventPublisher
	metrics     *metrics.OrderMetrics
	log         *logger.Logger
	strictStock bool
}

// NewOrderService creates a new OrderService.
func NewOrderService(
	orders repositories.OrderRepository,
	listings repositories.ListingRepository,
	tx repositories.Transactor,
	opts OrderOptions,
) *OrderService {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &OrderService{
		orders:      orders,
		listings:    listings,
		tx:          tx,
		publisher:   opts.Publisher,
		metrics:     opts.Metrics,
		log:         log,
		strictStock: opts.StrictStock,
	}
}

// CreateOrder places a requested order for a consumer. Stock is checked but not reserved.
func (s *OrderService) CreateOrder(ctx context.Context, actor identity.Actor, in CreateOrderInput) (*models.Order, error) {
	consumer, err := identity.RequireConsumer(actor)
	if err != nil {
		return nil, err
	}
	if !in.QuantityKg.IsPositive() {
		return nil, apperrors.New(apperrors.CodeInvalidInput, "quantity must be greater than zero").
			WithDetails(map[string]string{"quantity_kg": "must be greater than zero"})
	}
	payment := models.PaymentMethod(in.PaymentMethod)
	if payment == "" {
		payment = models.PaymentCash
	}
	if !payment.IsValid() {
		return nil, apperrors.Newf(apperrors.CodeInvalidInput, "unsupported payment method %q", in.PaymentMethod).
			WithDetails(map[string]string{"payment_method": "must be one of Cash, Bank Transfer, UPI"})
	}

	listing, err := s.listings.GetByID(ctx, in.ListingID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "product not found")
		}
		return nil, apperrors.Internal(err, "load listing for order")
	}

	if in.QuantityKg.GreaterThan(listing.QuantityKg) {
		return nil, apperrors.New(apperrors.CodeInsufficientQuantity, "insufficient quantity available").
			WithDetails(map[string]string{
				"requested": in.QuantityKg.String(),
				"available": listing.QuantityKg.String(),
			})
	}

	order := &models.Order{
		BuyerID:       consumer.ID,
		SellerID:      listing.FarmerID,
		ListingID:     listing.ID,
		QuantityKg:    in.QuantityKg,
		UnitPrice:     listing.PricePerKg,
		TotalAmount:   in.QuantityKg.Mul(listing.PricePerKg),
		CurrencyCode:  listing.CurrencyCode,
		PaymentMethod: payment,
		Status:        models.OrderRequested,
		OrderDate:     time.Now(),
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, apperrors.Internal(err, "create order")
	}

	s.metrics.IncCreated()
	s.log.Infow(ctx, "order created", map[string]any{
		"order_id":   order.ID,
		"listing_id": order.ListingID,
		"total":      order.TotalAmount.String(),
	})
	s.publish(ctx, eventCreated, order)
	return order, nil
}

// ListOrders returns the caller's orders, newest first: purchases for a
// consumer and sales for a farmer.
func (s *OrderService) ListOrders(ctx context.Context, actor identity.Actor) ([]models.Order, error) {
	var (
		orders []models.Order
		err    error
	)
	switch a := actor.(type) {
	case identity.Farmer:
		orders, err = s.orders.ListBySeller(ctx, a.ID)
	case identity.Consumer:
		orders, err = s.orders.ListByBuyer(ctx, a.ID)
	default:
		return nil, apperrors.New(apperrors.CodeForbidden, "invalid role")
	}
	if err != nil {
		return nil, apperrors.Internal(err, "list orders")
	}
	return orders, nil
}

// GetOrder returns one order the caller is a party to.
func (s *OrderService) GetOrder(ctx context.Context, actor identity.Actor, id string) (*models.Order, error) {
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeParty(actor, order); err != nil {
		return nil, err
	}
	return order, nil
}

// UpdateOrderStatus applies one state machine transition. Completing an order
// depletes the listing and appends a ledger entry in the same transaction.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, actor identity.Actor, id, status string) (order *models.Order, err error) {
	to := models.OrderStatus(status)
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = string(apperrors.CodeOf(err))
		}
		s.metrics.ObserveTransition(string(to), outcome)
	}()

	if !to.IsValid() {
		return nil, apperrors.Newf(apperrors.CodeInvalidInput, "unknown order status %q", status).
			WithDetails(map[string]string{"status": "must be one of requested, accepted, completed, cancelled"})
	}

	order, err = s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkTransition(actor, order, to); err != nil {
		return nil, err
	}

	from := order.Status
	if to == models.OrderCompleted {
		err = s.complete(ctx, order)
	} else {
		err = s.orders.UpdateStatus(ctx, order.ID, from, to)
		err = s.translateWriteErr(err)
	}
	if err != nil {
		return nil, err
	}

	order.Status = to
	order.UpdatedAt = time.Now()
	s.log.Infow(ctx, "order status changed", map[string]any{
		"order_id": order.ID,
		"from":     from,
		"to":       to,
	})
	s.publish(ctx, eventTypeFor(to), order)
	return order, nil
}

func (s *OrderService) complete(ctx context.Context, order *models.Order) error {
	return s.tx.WithinTransaction(ctx, func(ctx context.Context, tx repositories.Store) error {
		if err := tx.Orders.UpdateStatus(ctx, order.ID, order.Status, models.OrderCompleted); err != nil {
			return s.translateWriteErr(err)
		}

		err := tx.Listings.Deplete(ctx, order.ListingID, order.QuantityKg, s.strictStock)
		switch {
		case err == nil:
		case errors.Is(err, repositories.ErrNotFound):
			s.log.Warn(ctx, "listing deleted before completion, stock not depleted", err)
		case errors.Is(err, repositories.ErrInsufficientStock):
			s.metrics.IncStockConflict()
			return apperrors.Wrap(apperrors.CodeConflict, err, "listing no longer holds the ordered quantity")
		case errors.Is(err, repositories.ErrStaleWrite):
			s.metrics.IncStockConflict()
			return apperrors.Wrap(apperrors.CodeConflict, err, "listing stock was modified concurrently")
		default:
			return apperrors.Internal(err, "deplete listing")
		}

		buyerID := order.BuyerID
		currency := order.CurrencyCode
		if currency == "" {
			currency = models.DefaultCurrency
		}
		entry := &models.LedgerEntry{
			FarmerID:      order.SellerID,
			ListingID:     order.ListingID,
			ConsumerID:    &buyerID,
			BuyerName:     models.OrderBuyerName,
			QuantityKg:    order.QuantityKg,
			TotalAmount:   order.TotalAmount,
			CurrencyCode:  currency,
			PaymentMethod: order.PaymentMethod,
			Status:        models.LedgerCompleted,
			Date:          time.Now(),
		}
		if err := tx.Ledger.Create(ctx, entry); err != nil {
			return apperrors.Internal(err, "record ledger entry")
		}
		return nil
	})
}

func (s *OrderService) load(ctx context.Context, id string) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "order not found")
		}
		return nil, apperrors.Internal(err, "load order")
	}
	return order, nil
}

func (s *OrderService) translateWriteErr(err error) error {
	switch {
	case err == nil:
		return nil
	case apperrors.As(err) != nil:
		return err
	case errors.Is(err, repositories.ErrStaleWrite):
		return apperrors.Wrap(apperrors.CodeConflict, err, "order was modified concurrently")
	default:
		return apperrors.Internal(err, "update order status")
	}
}

// publish is best effort: failures are logged and never reach the caller.
func (s *OrderService) publish(ctx context.Context, routingKey string, order *models.Order) {
	if s.publisher == nil {
		return
	}
	body, err := json.Marshal(newOrderEvent(routingKey, order))
	if err != nil {
		s.log.Warn(ctx, "encode order event", err)
		return
	}
	if err := s.publisher.Publish(routingKey, body); err != nil {
		s.log.Warn(ctx, "publish order event "+routingKey, err)
	}
}
