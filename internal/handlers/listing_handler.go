package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"farmconnect/internal/services"
)

// ListingHandler serves the catalog under /products.
type ListingHandler struct {
	service *services.ListingService
	respond func(*fiber.Ctx, error) error
}

// NewListingHandler creates a new ListingHandler.
func NewListingHandler(service *services.ListingService, respond func(*fiber.Ctx, error) error) *ListingHandler {
	return &ListingHandler{service: service, respond: respond}
}

// RegisterRoutes registers the farmer catalog routes and the consumer browse route.
func (h *ListingHandler) RegisterRoutes(router fiber.Router, farmerOnly, consumerOnly fiber.Handler) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/public", consumerOnly, h.HandleListAvailable)
	productRoutes.Get("/", farmerOnly, h.HandleListOwn)
	productRoutes.Post("/", farmerOnly, h.HandleCreate)
	productRoutes.Put("/:id", farmerOnly, h.HandleUpdate)
	productRoutes.Delete("/:id", farmerOnly, h.HandleDelete)
}

// CreateListingRequest is the body of POST /products. Field names match the
// listing JSON so a fetched listing can be posted back.
type CreateListingRequest struct {
	Name         string           `json:"name" validate:"required,max=100"`
	Category     string           `json:"category" validate:"required"`
	QuantityKg   *decimal.Decimal `json:"quantity_kg" validate:"required"`
	PricePerKg   *decimal.Decimal `json:"price_per_kg" validate:"required"`
	CurrencyCode string           `json:"currency_code"`
	HarvestDate  string           `json:"harvest_date" validate:"required"`
	Status       string           `json:"status"`
}

// UpdateListingRequest is the body of PUT /products/:id; absent fields are kept.
type UpdateListingRequest struct {
	Name         *string          `json:"name" validate:"omitempty,max=100"`
	Category     *string          `json:"category"`
	QuantityKg   *decimal.Decimal `json:"quantity_kg"`
	PricePerKg   *decimal.Decimal `json:"price_per_kg"`
	CurrencyCode *string          `json:"currency_code"`
	HarvestDate  *string          `json:"harvest_date"`
	Status       *string          `json:"status"`
}

// HandleListOwn returns the calling farmer's listings.
func (h *ListingHandler) HandleListOwn(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return h.respond(c, err)
	}
	listings, err := h.service.ListOwn(c.UserContext(), actor)
	if err != nil {
		return h.respond(c, err)
	}
	return c.JSON(listings)
}

// HandleListAvailable returns every available listing with its farmer's name and location.
func (h *ListingHandler) HandleListAvailable(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return h.respond(c, err)
	}
	listings, err := h.service.ListAvailable(c.UserContext(), actor)
	if err != nil {
		return h.respond(c, err)
	}
	return c.JSON(listings)
}

// HandleCreate adds a listing for the calling farmer.
func (h *ListingHandler) HandleCreate(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return h.respond(c, err)
	}
	var req CreateListingRequest
	if err := bind(c, &req); err != nil {
		return h.respond(c, err)
	}
	harvest, err := parseDate("harvest_date", req.HarvestDate)
	if err != nil {
		return h.respond(c, err)
	}

	listing, err := h.service.CreateListing(c.UserContext(), actor, services.CreateListingInput{
		Name:         req.Name,
		Category:     req.Category,
		QuantityKg:   *req.QuantityKg,
		PricePerKg:   *req.PricePerKg,
		CurrencyCode: req.CurrencyCode,
		HarvestDate:  harvest,
		Status:       req.Status,
	})
	if err != nil {
		return h.respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(listing)
}

// HandleUpdate applies a partial update to one of the farmer's listings.
func (h *ListingHandler) HandleUpdate(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return h.respond(c, err)
	}
	var req UpdateListingRequest
	if err := bind(c, &req); err != nil {
		return h.respond(c, err)
	}

	in := services.UpdateListingInput{
		Name:         req.Name,
		Category:     req.Category,
		QuantityKg:   req.QuantityKg,
		PricePerKg:   req.PricePerKg,
		CurrencyCode: req.CurrencyCode,
		Status:       req.Status,
	}
	if req.HarvestDate != nil {
		var harvest time.Time
		if harvest, err = parseDate("harvest_date", *req.HarvestDate); err != nil {
			return h.respond(c, err)
		}
		in.HarvestDate = &harvest
	}

	listing, err := h.service.UpdateListing(c.UserContext(), actor, c.Params("id"), in)
	if err != nil {
		return h.respond(c, err)
	}
	return c.JSON(listing)
}

// HandleDelete removes one of the farmer's listings.
func (h *ListingHandler) HandleDelete(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return h.respond(c, err)
	}
	if err := h.service.DeleteListing(c.UserContext(), actor, c.Params("id")); err != nil {
		return h.respond(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product removed"})
}
