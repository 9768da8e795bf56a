package handler

import (
	"context"

	"go-inventory-stock/internal/model"

	"github.com/gofiber/fiber/v2"
)

// RoleLister lists roles with their privileges
type RoleLister interface {
	FindAll(ctx context.Context) ([]model.Role, error)
}

// PrivilegeLister lists every privilege code
type PrivilegeLister interface {
	FindAll(ctx context.Context) ([]model.Privilege, error)
}

type RoleHandler struct {
	roles      RoleLister
	privileges PrivilegeLister
}

func NewRoleHandler(roles RoleLister, privileges PrivilegeLister) *RoleHandler {
	return &RoleHandler{roles: roles, privileges: privileges}
}

// GetRoles returns all available roles
// GET /api/v1/roles
func (h *RoleHandler) GetRoles(c *fiber.Ctx) error {
	roles, err := h.roles.FindAll(c.UserContext())
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch roles"})
	}
	return c.JSON(roles)
}

// GetPrivileges returns all available privileges
// GET /api/v1/privileges
func (h *RoleHandler) GetPrivileges(c *fiber.Ctx) error {
	privileges, err := h.privileges.FindAll(c.UserContext())
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch privileges"})
	}
	return c.JSON(privileges)
}
