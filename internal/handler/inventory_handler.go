package handler

import (
	"go-inventory-stock/internal/model"
	"go-inventory-stock/internal/service"

	"github.com/gofiber/fiber/v2"
)

type InventoryHandler struct {
	service service.InventoryService
}

func NewInventoryHandler(s service.InventoryService) *InventoryHandler {
	return &InventoryHandler{service: s}
}

func (h *InventoryHandler) CreateProduct(c *fiber.Ctx) error {
	var req service.ProductInput
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	product, err := h.service.CreateProduct(c.UserContext(), &req, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(201).JSON(fiber.Map{"message": "Product created", "data": product})
}

func (h *InventoryHandler) UpdateProduct(c *fiber.Ctx) error {
	id, err := model.ParseID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	var req service.ProductInput
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	updated, err := h.service.UpdateProduct(c.UserContext(), id, &req, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"message": "Product updated", "data": updated})
}

func (h *InventoryHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := model.ParseID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	if err := h.service.DeleteProduct(c.UserContext(), id, actorFrom(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product deleted"})
}

func (h *InventoryHandler) GetProduct(c *fiber.Ctx) error {
	id, err := model.ParseID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
	}

	product, err := h.service.GetProduct(c.UserContext(), getBranchID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(product)
}

// GetProducts returns one cached catalog page. Query params: page (default 0)
func (h *InventoryHandler) GetProducts(c *fiber.Ctx) error {
	page := c.QueryInt("page", 0)
	if page < 0 {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid page"})
	}

	res, err := h.service.ListProducts(c.UserContext(), getBranchID(c), page)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to load products"})
	}
	return c.JSON(fiber.Map{
		"page":       page,
		"data":       res.Products,
		"stale":      res.Stale,
		"fetched_at": res.FetchedAt,
	})
}

// GetTransactions lists movements, newest first. Query params: product_id, limit (default 100)
func (h *InventoryHandler) GetTransactions(c *fiber.Ctx) error {
	var productID *model.ID
	if raw := c.Query("product_id"); raw != "" {
		id, err := model.ParseID(raw)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid product ID"})
		}
		productID = &id
	}
	limit := c.QueryInt("limit", 100)

	transactions, err := h.service.GetAllTransactions(c.UserContext(), getBranchID(c), productID, limit)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.JSON(transactions)
}

func (h *InventoryHandler) GetTransaction(c *fiber.Ctx) error {
	txID, err := model.ParseID(c.Params("id"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid transaction ID"})
	}

	tx, err := h.service.GetTransactionByID(c.UserContext(), getBranchID(c), txID)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Transaction not found"})
	}
	return c.JSON(tx)
}
