package handlers

import (
	"github.com/gofiber/fiber/v2"

	"farmconnect/internal/services"
)

// DashboardHandler serves the per-role summaries.
type DashboardHandler struct {
	service *services.DashboardService
	respond func(*fiber.Ctx, error) error
}

func NewDashboardHandler(service *services.DashboardService, respond func(*fiber.Ctx, error) error) *DashboardHandler {
	return &DashboardHandler{service: service, respond: respond}
}

func (h *DashboardHandler) RegisterRoutes(router fiber.Router, farmerOnly, consumerOnly fiber.Handler) {
	dash := router.Group("/dashboard")
	dash.Get("/farmer-summary", farmerOnly, h.HandleFarmerSummary)
	dash.Get("/consumer-summary", consumerOnly, h.HandleConsumerSummary)
}

func (h *DashboardHandler) HandleFarmerSummary(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return h.respond(c, err)
	}
	summary, err := h.service.FarmerSummary(c.UserContext(), actor)
	if err != nil {
		return h.respond(c, err)
	}
	return c.JSON(summary)
}

func (h *DashboardHandler) HandleConsumerSummary(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return h.respond(c, err)
	}
	summary, err := h.service.ConsumerSummary(c.UserContext(), actor)
	if err != nil {
		return h.respond(c, err)
	}
	return c.JSON(summary)
}
