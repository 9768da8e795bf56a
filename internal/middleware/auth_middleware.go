package middleware

import (
	"context"
	"strings"

	"go-inventory-stock/internal/model"
	"go-inventory-stock/internal/repository"
	"go-inventory-stock/pkg/jwt"

	"github.com/gofiber/fiber/v2"
)

// Locals keys set by RequireAuth
const (
	LocalUserID     = "user_id"
	LocalUserEmail  = "user_email"
	LocalUserName   = "user_name"
	LocalPrivileges = "user_privileges"
	LocalBranchID   = "branch_id"
)

// BranchHeader lets a client pick the active branch per request.
const BranchHeader = "X-Branch-ID"

// UserFinder is the part of the user repository the middleware needs.
type UserFinder interface {
	FindByID(ctx context.Context, id model.ID) (*model.User, error)
}

var _ UserFinder = repository.UserRepository(nil)

// RequireAuth is middleware that validates JWT token and sets user info in context
func RequireAuth(users UserFinder) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Get Authorization header
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(401).JSON(fiber.Map{"error": "Missing authorization token"})
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid authorization format. Use: Bearer <token>"})
		}

		claims, err := jwt.ValidateToken(parts[1])
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": "Invalid or expired token"})
		}

		// Check strict session against DB
		user, err := users.FindByID(c.UserContext(), model.ID(claims.UserID))
		if err != nil {
			return c.Status(401).JSON(fiber.Map{"error": "User not found"})
		}
		if !user.IsActive {
			return c.Status(401).JSON(fiber.Map{"error": "User account is inactive"})
		}
		if user.TokenVersion != claims.TokenVersion {
			return c.Status(401).JSON(fiber.Map{"error": "Session expired (logged in on another device)"})
		}

		// Cabang aktif: header dulu, kalau kosong pakai claim
		branch := claims.BranchID
		if h := strings.TrimSpace(c.Get(BranchHeader)); h != "" {
			branch = h
		}
		branchID, err := model.ParseID(branch)
		if err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "No active branch selected"})
		}
		if !CanUseBranch(claims, branchID) {
			return c.Status(403).JSON(fiber.Map{"error": "Forbidden: no access to branch " + branch})
		}

		c.Locals(LocalUserID, claims.UserID)
		c.Locals(LocalUserEmail, claims.Email)
		c.Locals(LocalUserName, claims.Name)
		c.Locals(LocalPrivileges, claims.Privileges)
		c.Locals(LocalBranchID, branchID)

		return c.Next()
	}
}

// CanUseBranch reports whether the token may act on branch. Only MASTER_ADMIN
// works outside the branch stored in the token.
func CanUseBranch(claims *jwt.Claims, branch model.ID) bool {
	return branch.String() == claims.BranchID || claims.RoleCode == model.RoleMasterAdmin
}

// RequirePrivilege checks if the authenticated user has the required privilege
func RequirePrivilege(requiredPrivilege string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		privileges, ok := c.Locals(LocalPrivileges).([]string)
		if !ok {
			return c.Status(403).JSON(fiber.Map{"error": "No privileges found"})
		}

		for _, p := range privileges {
			if p == requiredPrivilege {
				return c.Next()
			}
		}

		return c.Status(403).JSON(fiber.Map{
			"error": "Forbidden: requires '" + requiredPrivilege + "' privilege",
		})
	}
}

// RequireAnyPrivilege checks if the user has at least one of the specified privileges
func RequireAnyPrivilege(requiredPrivileges ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		privileges, ok := c.Locals(LocalPrivileges).([]string)
		if !ok {
			return c.Status(403).JSON(fiber.Map{"error": "No privileges found"})
		}

		for _, userPriv := range privileges {
			for _, reqPriv := range requiredPrivileges {
				if userPriv == reqPriv {
					return c.Next()
				}
			}
		}

		return c.Status(403).JSON(fiber.Map{
			"error": "Forbidden: requires one of " + strings.Join(requiredPrivileges, ", ") + " privileges",
		})
	}
}
