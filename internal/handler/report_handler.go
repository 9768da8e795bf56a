package handler

import (
	"go-inventory-stock/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ReportHandler struct {
	reconcile service.ReconcileService
}

func NewReportHandler(s service.ReconcileService) *ReportHandler {
	return &ReportHandler{reconcile: s}
}

// Reconciliation lists products whose quantity disagrees with their transactions
// GET /api/v1/reports/reconciliation
func (h *ReportHandler) Reconciliation(c *fiber.Ctx) error {
	branchID := getBranchID(c)
	drifts, err := h.reconcile.Run(c.UserContext(), branchID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to reconcile stock"})
	}
	return c.JSON(fiber.Map{
		"branch_id":  branchID,
		"consistent": len(drifts) == 0,
		"drifts":     drifts,
	})
}
