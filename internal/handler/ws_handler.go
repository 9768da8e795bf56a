package handler

import (
	"go-inventory-stock/internal/middleware"
	"go-inventory-stock/internal/model"
	"go-inventory-stock/internal/ws"
	"go-inventory-stock/pkg/jwt"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

const localWSBranch = "ws_branch"

type WSHandler struct {
	hub *ws.Hub
}

func NewWSHandler(hub *ws.Hub) *WSHandler {
	return &WSHandler{hub: hub}
}

// Upgrade checks the token and branch query params before the websocket handshake.
// Browsers cannot set headers on a websocket request, so both travel in the query.
func (h *WSHandler) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return c.SendStatus(fiber.StatusUpgradeRequired)
	}

	claims, err := jwt.ValidateToken(c.Query("token"))
	if err != nil {
		return c.Status(401).JSON(fiber.Map{"error": "Invalid or expired token"})
	}

	raw := c.Query("branch", claims.BranchID)
	branchID, err := model.ParseID(raw)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid branch"})
	}
	if !middleware.CanUseBranch(claims, branchID) {
		return c.Status(403).JSON(fiber.Map{"error": "Forbidden: no access to branch " + raw})
	}

	c.Locals(localWSBranch, branchID)
	return c.Next()
}

// Serve streams the branch's change events to the socket until it closes.
func (h *WSHandler) Serve() fiber.Handler {
	return websocket.New(func(c *websocket.Conn) {
		branchID, _ := c.Locals(localWSBranch).(model.ID)
		h.hub.Register(c, branchID)
		defer h.hub.Unregister(c)

		for {
			// Keep alive loop
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	})
}
