package handler

import (
	"context"
	"testing"

	"go-inventory-stock/internal/catalog"
	"go-inventory-stock/internal/model"
	"go-inventory-stock/internal/repository"
	"go-inventory-stock/internal/viewstate"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type memViews map[string]*model.ViewState

func (m memViews) Find(_ context.Context, userID string, branchID model.ID, view string) (*model.ViewState, error) {
	if s, ok := m[userID+"/"+branchID.String()+"/"+view]; ok {
		return s, nil
	}
	return nil, repository.ErrNotFound
}

func (m memViews) Save(_ context.Context, s *model.ViewState) error {
	m[s.UserID+"/"+s.BranchID.String()+"/"+s.View] = s
	return nil
}

func newViewApp(views memViews) (*fiber.App, *MockCatalog) {
	cat := new(MockCatalog)
	h := NewViewStateHandler(viewstate.NewService(views, zap.NewNop()), cat)
	app := fiber.New()
	app.Use(withUser)
	app.Get("/products/rows", h.Products)
	app.Get("/view-state/:view", h.Get)
	app.Put("/view-state/:view", h.Put)
	return app, cat
}

func viewCatalog() catalog.Result {
	shirt := model.Product{Name: "Shirt", QuantityInStock: 0}
	shirt.ID = "p1"
	red := testVariantOf("p2", "p1", "Shirt", "Red", 1)
	blue := testVariantOf("p3", "p1", "Shirt", "Blue", 9)
	mug := model.Product{Name: "Mug", QuantityInStock: 0}
	mug.ID = "p4"
	return catalog.Result{Products: []model.Product{mug, shirt, red, blue}}
}

func testVariantOf(id, parent model.ID, name, label string, qty int) model.Product {
	p := model.Product{Name: name, VariantName: &label, IsVariant: true, ParentProductID: &parent, QuantityInStock: qty, MinimumStockLevel: 2}
	p.ID = id
	return p
}

func TestProductRowsClassifiesCatalog(t *testing.T) {
	app, cat := newViewApp(memViews{})
	cat.On("LoadAll", model.ID("b1")).Return(viewCatalog(), nil)

	status, body := do(t, app, "GET", "/products/rows", nil)
	require.Equal(t, 200, status)

	rows := body["data"].([]any)
	require.Len(t, rows, 4)
	kinds := []string{}
	for _, r := range rows {
		kinds = append(kinds, r.(map[string]any)["kind"].(string))
	}
	assert.Equal(t, []string{"standalone", "parent", "variant", "variant"}, kinds)

	parent := rows[1].(map[string]any)
	assert.Equal(t, false, parent["stockable"])
	variants := parent["variants"].([]any)
	// ordered by variant name
	assert.Equal(t, "Blue", variants[0].(map[string]any)["name"])
}

func TestProductRowsUsesSavedPrefs(t *testing.T) {
	views := memViews{}
	views["u1/b1/products"] = &model.ViewState{
		UserID: "u1", BranchID: "b1", View: viewstate.ViewProducts,
		Prefs: datatypes.NewJSONType(model.ViewPrefs{StockLevel: model.StockLow, PageSize: 25}),
	}
	app, cat := newViewApp(views)
	cat.On("LoadAll", model.ID("b1")).Return(viewCatalog(), nil)

	status, body := do(t, app, "GET", "/products/rows", nil)
	require.Equal(t, 200, status)
	rows := body["data"].([]any)
	require.Len(t, rows, 1)
	assert.Equal(t, "p2", rows[0].(map[string]any)["product"].(map[string]any)["id"])
}

func TestProductRowsTokenOverridesSaved(t *testing.T) {
	app, cat := newViewApp(memViews{})
	cat.On("LoadAll", model.ID("b1")).Return(viewCatalog(), nil)

	token, err := viewstate.Encode(model.ViewPrefs{Search: "mug"})
	require.NoError(t, err)

	status, body := do(t, app, "GET", "/products/rows?token="+token, nil)
	require.Equal(t, 200, status)
	assert.Len(t, body["data"], 1)

	status, _ = do(t, app, "GET", "/products/rows?token=!!!", nil)
	assert.Equal(t, 400, status)
}

func TestViewStateRoundTrip(t *testing.T) {
	app, _ := newViewApp(memViews{})

	status, _ := do(t, app, "PUT", "/view-state/products", map[string]any{"search": "shirt", "page_size": 50})
	require.Equal(t, 200, status)

	status, body := do(t, app, "GET", "/view-state/products", nil)
	require.Equal(t, 200, status)
	assert.Equal(t, "shirt", body["data"].(map[string]any)["search"])
	assert.NotEmpty(t, body["token"])

	status, _ = do(t, app, "GET", "/view-state/unknown", nil)
	assert.Equal(t, 404, status)
}
