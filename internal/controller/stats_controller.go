package controller

import (
	"github.com/gofiber/fiber/v2"

	"realty_backend/internal/service"
)

type StatsController struct {
	listings *service.ListingService
}

func NewStatsController(listings *service.ListingService) *StatsController {
	return &StatsController{listings: listings}
}

// GetDashboardStats returns listing, view and lead totals for the caller.
func (h *StatsController) GetDashboardStats(c *fiber.Ctx) error {
	id, err := currentUser(c)
	if err != nil {
		return err
	}

	stats, err := h.listings.Stats(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(stats)
}
