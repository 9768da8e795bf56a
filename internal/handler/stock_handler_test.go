package handler

import (
	"testing"

	"go-inventory-stock/internal/catalog"
	"go-inventory-stock/internal/model"
	"go-inventory-stock/internal/repository"
	"go-inventory-stock/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAdjustCreated(t *testing.T) {
	app, _, _, stock := newStockApp()
	req := service.AdjustRequest{ProductID: "p1", Direction: service.DirectionIn, Quantity: "3", IdempotencyKey: "k1"}
	stock.On("Adjust", req, alice).Return(&service.AdjustResult{Direction: service.DirectionIn}, nil)

	status, body := do(t, app, "POST", "/stock/adjustments",
		map[string]any{"product_id": "p1", "direction": "in", "quantity": 3},
		"Idempotency-Key", "k1")

	assert.Equal(t, 201, status)
	assert.Equal(t, "Stock adjusted", body["message"])
	stock.AssertExpectations(t)
}

func TestAdjustReplayIsOK(t *testing.T) {
	app, _, _, stock := newStockApp()
	stock.On("Adjust", mock.Anything, alice).Return(&service.AdjustResult{Replayed: true}, nil)

	status, _ := do(t, app, "POST", "/stock/adjustments",
		map[string]any{"product_id": "p1", "direction": "in", "quantity": "3", "idempotency_key": "k1"})
	assert.Equal(t, 200, status)
}

func TestAdjustErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"insufficient", &service.InsufficientStockError{Available: 2, Requested: 5}, 409},
		{"quantity", service.ErrInvalidQuantity, 400},
		{"too large", service.ErrQuantityTooLarge, 400},
		{"reference", service.ErrInvalidReference, 400},
		{"not stockable", service.ErrNotStockable, 409},
		{"not found", service.ErrProductNotFound, 404},
		{"write", service.ErrQuantityWrite, 500},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app, _, _, stock := newStockApp()
			stock.On("Adjust", mock.Anything, mock.Anything).Return(nil, tc.err)

			status, body := do(t, app, "POST", "/stock/adjustments",
				map[string]any{"product_id": "p1", "direction": "out", "quantity": "5"})
			assert.Equal(t, tc.status, status)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestAdjustInsufficientIncludesAvailable(t *testing.T) {
	app, _, _, stock := newStockApp()
	stock.On("Adjust", mock.Anything, mock.Anything).Return(nil, &service.InsufficientStockError{Available: 2, Requested: 5})

	_, body := do(t, app, "POST", "/stock/adjustments",
		map[string]any{"product_id": "p1", "direction": "out", "quantity": "5"})
	assert.EqualValues(t, 2, body["available"])
}

func TestResolveWithVariantsNeedsSelection(t *testing.T) {
	app, _, products, _ := newStockApp()
	parent := model.Product{Name: "Shirt"}
	parent.ID = "p1"
	red := model.Product{Name: "Shirt", IsVariant: true, ParentProductID: &parent.ID}
	red.ID = "v1"
	products.On("FindByID", model.ID("b1"), model.ID("p1")).Return(&parent, nil)
	products.On("FindVariants", model.ID("b1"), model.ID("p1")).Return([]model.Product{red}, nil)

	status, body := do(t, app, "GET", "/products/p1/resolve", nil)
	assert.Equal(t, 409, status)
	choices, ok := body["choices"].([]any)
	require.True(t, ok)
	assert.Len(t, choices, 1)
}

func TestResolveDirect(t *testing.T) {
	app, _, products, _ := newStockApp()
	p := model.Product{Name: "Widget"}
	p.ID = "p1"
	products.On("FindByID", model.ID("b1"), model.ID("p1")).Return(&p, nil)
	products.On("FindVariants", model.ID("b1"), model.ID("p1")).Return([]model.Product{}, nil)

	status, body := do(t, app, "GET", "/products/p1/resolve", nil)
	assert.Equal(t, 200, status)
	assert.NotNil(t, body["direct"])
}

func TestResolveRejectsNullID(t *testing.T) {
	app, _, _, _ := newStockApp()

	status, _ := do(t, app, "GET", "/products/null/resolve", nil)
	assert.Equal(t, 400, status)
}

func TestScanMissReturnsDraft(t *testing.T) {
	app, _, products, _ := newStockApp()
	products.On("FindBySKU", model.ID("b1"), "899").Return(nil, repository.ErrNotFound)

	status, body := do(t, app, "GET", "/products/scan/899", nil)
	assert.Equal(t, 200, status)
	draft, ok := body["draft"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "899", draft["sku"])
}

func TestSearch(t *testing.T) {
	app, cat, _, _ := newStockApp()
	w := model.Product{Name: "Widget", SKU: "W1"}
	w.ID = "p1"
	cat.On("LoadAll", model.ID("b1")).Return(catalog.Result{Products: []model.Product{w}}, nil)

	status, body := do(t, app, "GET", "/products/search?q=widg", nil)
	assert.Equal(t, 200, status)
	assert.Len(t, body["matches"], 1)

	status, _ = do(t, app, "GET", "/products/search?q=", nil)
	assert.Equal(t, 400, status)
}
