package handler

import (
	"go-inventory-stock/internal/entry"
	"go-inventory-stock/internal/service"

	"github.com/gofiber/fiber/v2"
)

// StockHandler serves the adjustment workflow: find a product, resolve its variants,
// submit the movement.
type StockHandler struct {
	flow *entry.Flow
}

func NewStockHandler(flow *entry.Flow) *StockHandler {
	return &StockHandler{flow: flow}
}

// Search GET /api/v1/products/search?q=
func (h *StockHandler) Search(c *fiber.Ctx) error {
	res, err := h.flow.Search(c.UserContext(), getBranchID(c), c.Query("q"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(res)
}

// Scan GET /api/v1/products/scan/:sku
func (h *StockHandler) Scan(c *fiber.Ctx) error {
	target, err := h.flow.Scan(c.UserContext(), getBranchID(c), c.Params("sku"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(target)
}

// Resolve GET /api/v1/products/:id/resolve
func (h *StockHandler) Resolve(c *fiber.Ctx) error {
	target, err := h.flow.Select(c.UserContext(), getBranchID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	if target.Direct == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":   "Select a variant",
			"choices": target.Choices,
		})
	}
	return c.JSON(target)
}

// Adjust POST /api/v1/stock/adjustments
func (h *StockHandler) Adjust(c *fiber.Ctx) error {
	var req service.AdjustRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if req.IdempotencyKey == "" {
		req.IdempotencyKey = c.Get("Idempotency-Key")
	}

	res, err := h.flow.Submit(c.UserContext(), req, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}

	status := fiber.StatusCreated
	if res.Replayed {
		status = fiber.StatusOK
	}
	return c.Status(status).JSON(fiber.Map{"message": "Stock adjusted", "data": res})
}
