package viewstate

import (
	"context"
	"testing"

	"go-inventory-stock/internal/model"
	"go-inventory-stock/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

func TestNormalize(t *testing.T) {
	got, err := Normalize(model.ViewPrefs{
		Search:        "  shirt ",
		StockLevel:    model.StockLow,
		HiddenColumns: []string{"sku", "location", "sku"},
		SelectedIDs:   []model.ID{"p2", "null", "p1", "p2", ""},
	})
	require.NoError(t, err)

	assert.Equal(t, "shirt", got.Search)
	assert.Equal(t, []string{"location", "sku"}, got.HiddenColumns)
	assert.Equal(t, []model.ID{"p2", "p1"}, got.SelectedIDs)
	assert.Equal(t, DefaultPageSize, got.PageSize)
}

func TestNormalizeRejects(t *testing.T) {
	cases := map[string]model.ViewPrefs{
		"stock level": {StockLevel: "plenty"},
		"page size":   {PageSize: MaxPageSize + 1},
		"negative":    {PageSize: -1},
		"column":      {HiddenColumns: []string{"DROP TABLE"}},
	}
	for name, p := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Normalize(p)
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestEncodeDecode(t *testing.T) {
	token, err := Encode(model.ViewPrefs{Search: "bolt", PageSize: 50, SelectedIDs: []model.ID{"p1"}})
	require.NoError(t, err)

	got, err := Decode(token)
	require.NoError(t, err)
	assert.Equal(t, "bolt", got.Search)
	assert.Equal(t, 50, got.PageSize)
	assert.Equal(t, []model.ID{"p1"}, got.SelectedIDs)

	_, err = Decode("%%%")
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestApply(t *testing.T) {
	mk := func(id, name, sku string, qty int) model.Product {
		p := model.Product{Name: name, SKU: sku, QuantityInStock: qty, MinimumStockLevel: 3}
		p.ID = model.ID(id)
		return p
	}
	products := []model.Product{
		mk("p1", "Red Shirt", "RS", 10),
		mk("p2", "Blue Shirt", "BS", 2),
		mk("p3", "Bolt", "SH-1", 0),
	}

	got := Apply(products, model.ViewPrefs{Search: "sh"})
	assert.Len(t, got, 3)

	got = Apply(products, model.ViewPrefs{Search: "shirt", StockLevel: model.StockLow})
	require.Len(t, got, 1)
	assert.Equal(t, model.ID("p2"), got[0].ID)

	got = Apply(products, model.ViewPrefs{StockLevel: model.StockEmpty})
	require.Len(t, got, 1)
	assert.Equal(t, model.ID("p3"), got[0].ID)
}

type MockRepo struct{ mock.Mock }

func (m *MockRepo) Find(ctx context.Context, userID string, branchID model.ID, view string) (*model.ViewState, error) {
	args := m.Called(ctx, userID, branchID, view)
	if s, ok := args.Get(0).(*model.ViewState); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepo) Save(ctx context.Context, state *model.ViewState) error {
	return m.Called(ctx, state).Error(0)
}

func TestServiceLoadDefaults(t *testing.T) {
	repo := new(MockRepo)
	ctx := context.Background()
	repo.On("Find", ctx, "u1", model.ID("b1"), ViewProducts).Return(nil, repository.ErrNotFound)

	prefs, err := NewService(repo, zap.NewNop()).Load(ctx, "u1", "b1", ViewProducts)
	require.NoError(t, err)
	assert.Equal(t, Default(), prefs)
}

func TestServiceSaveNormalizes(t *testing.T) {
	repo := new(MockRepo)
	ctx := context.Background()
	repo.On("Save", ctx, mock.MatchedBy(func(s *model.ViewState) bool {
		return s.UserID == "u1" && s.View == ViewProducts && s.Prefs.Data().Search == "bolt"
	})).Return(nil)

	prefs, err := NewService(repo, zap.NewNop()).Save(ctx, "u1", "b1", ViewProducts, model.ViewPrefs{Search: " bolt "})
	require.NoError(t, err)
	assert.Equal(t, "bolt", prefs.Search)
	repo.AssertExpectations(t)
}

func TestServiceUnknownView(t *testing.T) {
	svc := NewService(new(MockRepo), zap.NewNop())

	_, err := svc.Save(context.Background(), "u1", "b1", "secrets", Default())
	assert.ErrorIs(t, err, ErrUnknownView)
}

func TestServiceLoadIgnoresCorruptState(t *testing.T) {
	repo := new(MockRepo)
	ctx := context.Background()
	stored := &model.ViewState{Prefs: datatypes.NewJSONType(model.ViewPrefs{PageSize: 9999})}
	repo.On("Find", ctx, "u1", model.ID("b1"), ViewProducts).Return(stored, nil)

	prefs, err := NewService(repo, zap.NewNop()).Load(ctx, "u1", "b1", ViewProducts)
	require.NoError(t, err)
	assert.Equal(t, Default(), prefs)
}
