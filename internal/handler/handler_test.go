package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"go-inventory-stock/internal/catalog"
	"go-inventory-stock/internal/entry"
	"go-inventory-stock/internal/middleware"
	"go-inventory-stock/internal/model"
	"go-inventory-stock/internal/service"
	"go-inventory-stock/internal/variant"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockStock struct{ mock.Mock }

func (m *MockStock) Adjust(ctx context.Context, req service.AdjustRequest, actor service.Actor) (*service.AdjustResult, error) {
	args := m.Called(req, actor)
	if r, ok := args.Get(0).(*service.AdjustResult); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockCatalog struct{ mock.Mock }

func (m *MockCatalog) LoadAll(ctx context.Context, branchID model.ID) (catalog.Result, error) {
	args := m.Called(branchID)
	return args.Get(0).(catalog.Result), args.Error(1)
}

type MockProducts struct{ mock.Mock }

func (m *MockProducts) FindByID(ctx context.Context, branchID, id model.ID) (*model.Product, error) {
	args := m.Called(branchID, id)
	if p, ok := args.Get(0).(*model.Product); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProducts) FindBySKU(ctx context.Context, branchID model.ID, sku string) (*model.Product, error) {
	args := m.Called(branchID, sku)
	if p, ok := args.Get(0).(*model.Product); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProducts) FindVariants(ctx context.Context, branchID, parentID model.ID) ([]model.Product, error) {
	args := m.Called(branchID, parentID)
	return args.Get(0).([]model.Product), args.Error(1)
}

// withUser stands in for RequireAuth.
func withUser(c *fiber.Ctx) error {
	c.Locals(middleware.LocalUserID, "u1")
	c.Locals(middleware.LocalUserName, "Alice")
	c.Locals(middleware.LocalUserEmail, "alice@example.com")
	c.Locals(middleware.LocalBranchID, model.ID("b1"))
	return c.Next()
}

var alice = service.Actor{UserID: "u1", Name: "Alice", Email: "alice@example.com", BranchID: "b1"}

func do(t *testing.T, app *fiber.App, method, path string, body any, headers ...string) (int, map[string]any) {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]any{}
	raw, _ := io.ReadAll(resp.Body)
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp.StatusCode, out
}

func newStockApp() (*fiber.App, *MockCatalog, *MockProducts, *MockStock) {
	cat, products, stock := new(MockCatalog), new(MockProducts), new(MockStock)
	flow := entry.NewFlow(cat, products, variant.NewResolver(products), stock, zap.NewNop())
	h := NewStockHandler(flow)

	app := fiber.New()
	app.Use(withUser)
	app.Get("/products/search", h.Search)
	app.Get("/products/scan/:sku", h.Scan)
	app.Get("/products/:id/resolve", h.Resolve)
	app.Post("/stock/adjustments", h.Adjust)
	return app, cat, products, stock
}

