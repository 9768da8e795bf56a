package handler

import (
	"errors"
	"strings"

	"go-inventory-stock/internal/model"
	"go-inventory-stock/internal/service"
	"go-inventory-stock/pkg/jwt"
	"go-inventory-stock/pkg/validator"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6,nefield=OldPassword"`
}

type ValidateTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

// parseBody decodes and validates a request body, writing the 400 itself.
func parseBody(c *fiber.Ctx, out interface{}) (bool, error) {
	if err := c.BodyParser(out); err != nil {
		return false, c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}
	if errs := validator.ValidateStruct(out); len(errs) > 0 {
		return false, c.Status(400).JSON(fiber.Map{"error": "Validation failed", "fields": errs})
	}
	return true, nil
}

// authStatus: inactive accounts are forbidden, every other auth failure is 401
func authStatus(err error) int {
	if errors.Is(err, service.ErrUserInactive) {
		return 403
	}
	return 401
}

// Login handles user authentication
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	response, err := h.authService.Login(c.UserContext(), strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		return c.Status(authStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(response)
}

// ResetPassword changes the password and signs out every session of the user
// POST /api/v1/auth/reset-password
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req ResetPasswordRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	err := h.authService.ResetPassword(c.UserContext(), strings.TrimSpace(req.Email), req.OldPassword, req.NewPassword)
	switch {
	case err == nil:
		return c.JSON(fiber.Map{"message": "Password updated successfully"})
	case errors.Is(err, service.ErrUserNotFound), errors.Is(err, service.ErrWrongPassword):
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	default:
		return c.Status(500).JSON(fiber.Map{"error": "Failed to update password"})
	}
}

// Heartbeat keeps the session alive
// POST /api/v1/auth/heartbeat
func (h *AuthHandler) Heartbeat(c *fiber.Ctx) error {
	if err := h.authService.Heartbeat(c.UserContext(), model.ID(getUserID(c))); err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to update heartbeat"})
	}

	return c.JSON(fiber.Map{"message": "Heartbeat received", "status": "online"})
}

// ValidateToken handles JWT token validation
// POST /api/v1/auth/validate-token
func (h *AuthHandler) ValidateToken(c *fiber.Ctx) error {
	var req ValidateTokenRequest
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	response, err := h.authService.ValidateToken(c.UserContext(), req.Token)
	if err != nil {
		return c.Status(authStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(response)
}

// Refresh exchanges the bearer token for a new one
// POST /api/v1/auth/refresh
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	token := strings.TrimSpace(strings.TrimPrefix(c.Get("Authorization"), "Bearer "))
	if token == "" {
		return c.Status(401).JSON(fiber.Map{"error": jwt.ErrMissingToken.Error()})
	}

	response, err := h.authService.Refresh(c.UserContext(), token)
	if err != nil {
		return c.Status(authStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(response)
}
