package handler

import (
	"fmt"
	"strings"
	"time"

	"go-inventory-stock/internal/service"

	"github.com/gofiber/fiber/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type SpreadsheetHandler struct {
	service service.SpreadsheetService
}

func NewSpreadsheetHandler(s service.SpreadsheetService) *SpreadsheetHandler {
	return &SpreadsheetHandler{service: s}
}

// ExportProducts GET /api/v1/export/products.xlsx
func (h *SpreadsheetHandler) ExportProducts(c *fiber.Ctx) error {
	buf, err := h.service.ExportProducts(c.UserContext(), getBranchID(c))
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to export products"})
	}

	filename := fmt.Sprintf("products-%s-%s.xlsx", getBranchID(c), time.Now().Format("20060102"))
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(buf.Bytes())
}

// ImportProducts POST /api/v1/import/products (multipart field "file")
func (h *SpreadsheetHandler) ImportProducts(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "File upload failed: " + err.Error()})
	}
	if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".xlsx") {
		return c.Status(400).JSON(fiber.Map{"error": "Only .xlsx files are accepted"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Could not open file"})
	}
	defer file.Close()

	summary, err := h.service.ImportProducts(c.UserContext(), file, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Import finished", "data": summary})
}
