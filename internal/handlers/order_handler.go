package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"farmconnect/internal/services"
)

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	service *services.OrderService
	respond func(*fiber.Ctx, error) error
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(service *services.OrderService, respond func(*fiber.Ctx, error) error) *OrderHandler {
	return &OrderHandler{service: service, respond: respond}
}

// RegisterRoutes registers the order routes. Only consumers may place orders.
func (h *OrderHandler) RegisterRoutes(router fiber.Router, consumerOnly fiber.Handler) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/", h.HandleGetOrders)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Post("/", consumerOnly, h.HandleCreateOrder)
	orderRoutes.Put("/:id/status", h.HandleUpdateOrderStatus)
}

// CreateOrderRequest is the body of POST /orders.
type CreateOrderRequest struct {
	ListingID     string          `json:"listing_id" validate:"required"`
	QuantityKg    decimal.Decimal `json:"quantity_kg"`
	PaymentMethod string          `json:"payment_method"`
}

// UpdateStatusRequest is the body of PUT /orders/:id/status.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// HandleGetOrders returns the caller's orders.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return h.respond(c, err)
	}
	orders, err := h.service.ListOrders(c.UserContext(), actor)
	if err != nil {
		return h.respond(c, err)
	}
	return c.JSON(orders)
}

// HandleGetOrderByID retrieves a single order by its ID.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return h.respond(c, err)
	}
	order, err := h.service.GetOrder(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return h.respond(c, err)
	}
	return c.JSON(order)
}

// HandleCreateOrder creates a new order.
func (h *OrderHandler) HandleCreateOrder(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return h.respond(c, err)
	}
	var req CreateOrderRequest
	if err := bind(c, &req); err != nil {
		return h.respond(c, err)
	}

	createdOrder, err := h.service.CreateOrder(c.UserContext(), actor, services.CreateOrderInput{
		ListingID:     req.ListingID,
		QuantityKg:    req.QuantityKg,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		return h.respond(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(createdOrder)
}

// HandleUpdateOrderStatus moves an order through its lifecycle.
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return h.respond(c, err)
	}
	var req UpdateStatusRequest
	if err := bind(c, &req); err != nil {
		return h.respond(c, err)
	}

	order, err := h.service.UpdateOrderStatus(c.UserContext(), actor, c.Params("id"), req.Status)
	if err != nil {
		return h.respond(c, err)
	}
	return c.JSON(order)
}
