package handler

import (
	"go-inventory-stock/internal/entry"
	"go-inventory-stock/internal/model"
	"go-inventory-stock/internal/variant"
	"go-inventory-stock/internal/viewstate"

	"github.com/gofiber/fiber/v2"
)

type ViewStateHandler struct {
	service *viewstate.Service
	catalog entry.Catalog
}

func NewViewStateHandler(s *viewstate.Service, cat entry.Catalog) *ViewStateHandler {
	return &ViewStateHandler{service: s, catalog: cat}
}

// CatalogRow is one line of the product list screen.
type CatalogRow struct {
	Kind      string        `json:"kind"`
	Product   model.Product `json:"product"`
	Stockable bool          `json:"stockable"`
	Parent    *variant.Ref  `json:"parent,omitempty"`
	Variants  []variant.Ref `json:"variants,omitempty"`
}

func catalogRows(entries []variant.Entry) []CatalogRow {
	rows := make([]CatalogRow, 0, len(entries))
	for _, e := range entries {
		row := CatalogRow{Product: *e.Product(), Stockable: e.Stockable()}
		switch v := e.(type) {
		case *variant.Parent:
			row.Kind = "parent"
			row.Variants = v.Children
		case *variant.Variant:
			row.Kind = "variant"
			parent := v.Parent
			row.Parent = &parent
		default:
			row.Kind = "standalone"
		}
		rows = append(rows, row)
	}
	return rows
}

// Get GET /api/v1/view-state/:view
func (h *ViewStateHandler) Get(c *fiber.Ctx) error {
	prefs, err := h.service.Load(c.UserContext(), getUserID(c), getBranchID(c), c.Params("view"))
	if err != nil {
		return respondError(c, err)
	}
	token, err := viewstate.Encode(prefs)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": prefs, "token": token})
}

// Put PUT /api/v1/view-state/:view
func (h *ViewStateHandler) Put(c *fiber.Ctx) error {
	var prefs model.ViewPrefs
	if token := c.Query("token"); token != "" {
		decoded, err := viewstate.Decode(token)
		if err != nil {
			return respondError(c, err)
		}
		prefs = decoded
	} else if err := c.BodyParser(&prefs); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	saved, err := h.service.Save(c.UserContext(), getUserID(c), getBranchID(c), c.Params("view"), prefs)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "View saved", "data": saved})
}

// Products GET /api/v1/products/rows
// Filters the branch catalog with the saved prefs, or with ?token= when given.
func (h *ViewStateHandler) Products(c *fiber.Ctx) error {
	var (
		prefs model.ViewPrefs
		err   error
	)
	if token := c.Query("token"); token != "" {
		prefs, err = viewstate.Decode(token)
	} else {
		prefs, err = h.service.Load(c.UserContext(), getUserID(c), getBranchID(c), viewstate.ViewProducts)
	}
	if err != nil {
		return respondError(c, err)
	}

	res, err := h.catalog.LoadAll(c.UserContext(), getBranchID(c))
	if err != nil {
		return respondError(c, err)
	}

	rows := catalogRows(variant.Classify(viewstate.Apply(res.Products, prefs)))
	return c.JSON(fiber.Map{
		"data":       rows,
		"prefs":      prefs,
		"stale":      res.Stale,
		"fetched_at": res.FetchedAt,
	})
}
