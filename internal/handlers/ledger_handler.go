package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"farmconnect/internal/services"
)

// LedgerHandler serves a farmer's transactions.
type LedgerHandler struct {
	service *services.LedgerService
	respond func(*fiber.Ctx, error) error
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(service *services.LedgerService, respond func(*fiber.Ctx, error) error) *LedgerHandler {
	return &LedgerHandler{service: service, respond: respond}
}

// RegisterRoutes registers the transaction routes, all restricted to farmers.
func (h *LedgerHandler) RegisterRoutes(router fiber.Router, farmerOnly fiber.Handler) {
	txRoutes := router.Group("/transactions", farmerOnly)
	txRoutes.Get("/", h.HandleList)
	txRoutes.Post("/", h.HandleRecord)
}

// RecordSaleRequest is the body of POST /transactions.
type RecordSaleRequest struct {
	ProductID     string          `json:"product_id" validate:"required"`
	BuyerName     string          `json:"buyer_name" validate:"required,max=100"`
	QuantityKg    decimal.Decimal `json:"quantity_kg"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaymentMethod string          `json:"payment_method"`
	Status        string          `json:"status"`
	Date          string          `json:"date"`
}

// HandleList returns the farmer's ledger, newest first.
func (h *LedgerHandler) HandleList(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return h.respond(c, err)
	}
	entries, err := h.service.ListEntries(c.UserContext(), actor)
	if err != nil {
		return h.respond(c, err)
	}
	return c.JSON(entries)
}

// HandleRecord records a sale made outside the platform.
func (h *LedgerHandler) HandleRecord(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return h.respond(c, err)
	}
	var req RecordSaleRequest
	if err := bind(c, &req); err != nil {
		return h.respond(c, err)
	}

	in := services.RecordSaleInput{
		ListingID:     req.ProductID,
		BuyerName:     req.BuyerName,
		QuantityKg:    req.QuantityKg,
		TotalAmount:   req.TotalAmount,
		PaymentMethod: req.PaymentMethod,
		Status:        req.Status,
	}
	if req.Date != "" {
		var date time.Time
		if date, err = parseDate("date", req.Date); err != nil {
			return h.respond(c, err)
		}
		in.Date = &date
	}

	entry, err := h.service.RecordSale(c.UserContext(), actor, in)
	if err != nil {
		return h.respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(entry)
}
