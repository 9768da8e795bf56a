package handler

import (
	"go-inventory-stock/internal/service"

	"github.com/gofiber/fiber/v2"
)

const (
	defaultMovementDays = 7
	maxMovementDays     = 90
)

type DashboardHandler struct {
	service service.DashboardService
}

func NewDashboardHandler(s service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: s}
}

// GetStockMovement returns daily incoming/outgoing totals of the active branch
// GET /api/v1/dashboard/stock-movement?days=7 (1..90)
func (h *DashboardHandler) GetStockMovement(c *fiber.Ctx) error {
	days := c.QueryInt("days", defaultMovementDays)
	if days <= 0 {
		days = defaultMovementDays
	}
	if days > maxMovementDays {
		days = maxMovementDays
	}

	branchID := getBranchID(c)
	data, err := h.service.GetStockMovement(c.UserContext(), branchID, days)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch stock movement"})
	}

	return c.JSON(fiber.Map{
		"branch_id": branchID,
		"period":    days,
		"data":      data,
	})
}

// GetDashboardStats returns product count, low stock count and valuation of the active branch
// GET /api/v1/dashboard/stats
func (h *DashboardHandler) GetDashboardStats(c *fiber.Ctx) error {
	stats, err := h.service.GetDashboardStats(c.UserContext(), getBranchID(c))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch dashboard stats"})
	}

	return c.JSON(stats)
}
