package handlers

import (
	"github.com/gofiber/fiber/v2"

	"farmconnect/internal/services"
)

// MarketHandler serves market prices and buyer opportunities to both roles.
type MarketHandler struct {
	service *services.MarketService
	respond func(*fiber.Ctx, error) error
}

func NewMarketHandler(service *services.MarketService, respond func(*fiber.Ctx, error) error) *MarketHandler {
	return &MarketHandler{service: service, respond: respond}
}

func (h *MarketHandler) RegisterRoutes(router fiber.Router) {
	market := router.Group("/market")
	market.Get("/prices", h.HandlePrices)
	market.Get("/opportunities", h.HandleOpportunities)
}

func (h *MarketHandler) HandlePrices(c *fiber.Ctx) error {
	prices, err := h.service.Prices(c.UserContext())
	if err != nil {
		return h.respond(c, err)
	}
	return c.JSON(prices)
}

func (h *MarketHandler) HandleOpportunities(c *fiber.Ctx) error {
	opps, err := h.service.Opportunities(c.UserContext())
	if err != nil {
		return h.respond(c, err)
	}
	return c.JSON(opps)
}
