package handler

import (
	"errors"

	"go-inventory-stock/internal/entry"
	"go-inventory-stock/internal/middleware"
	"go-inventory-stock/internal/model"
	"go-inventory-stock/internal/repository"
	"go-inventory-stock/internal/service"
	"go-inventory-stock/internal/viewstate"

	"github.com/gofiber/fiber/v2"
)

// Helper untuk ambil User Info dari JWT Context (set by auth middleware)
func getUserID(c *fiber.Ctx) string {
	if v, ok := c.Locals(middleware.LocalUserID).(string); ok {
		return v
	}
	return "system"
}

func getUserName(c *fiber.Ctx) string {
	if v, ok := c.Locals(middleware.LocalUserName).(string); ok {
		return v
	}
	return "Unknown"
}

func getUserEmail(c *fiber.Ctx) string {
	if v, ok := c.Locals(middleware.LocalUserEmail).(string); ok {
		return v
	}
	return ""
}

func getBranchID(c *fiber.Ctx) model.ID {
	if v, ok := c.Locals(middleware.LocalBranchID).(model.ID); ok {
		return v
	}
	return ""
}

func actorFrom(c *fiber.Ctx) service.Actor {
	return service.Actor{
		UserID:   getUserID(c),
		Name:     getUserName(c),
		Email:    getUserEmail(c),
		BranchID: getBranchID(c),
	}
}

// respondError maps domain errors to HTTP statuses.
func respondError(c *fiber.Ctx, err error) error {
	var insufficient *service.InsufficientStockError
	switch {
	case errors.As(err, &insufficient):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":     err.Error(),
			"available": insufficient.Available,
		})
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrQuantityTooLarge),
		errors.Is(err, service.ErrInvalidReference),
		errors.Is(err, service.ErrInvalidDirection),
		errors.Is(err, service.ErrInvalidParent),
		errors.Is(err, service.ErrEmptySheet),
		errors.Is(err, entry.ErrEmptyTerm),
		errors.Is(err, viewstate.ErrInvalid),
		errors.Is(err, model.ErrInvalidID):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrNotStockable),
		errors.Is(err, service.ErrSKUExists),
		errors.Is(err, service.ErrHasVariants),
		errors.Is(err, service.ErrIdempotencyConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, repository.ErrNotFound),
		errors.Is(err, viewstate.ErrUnknownView):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}
