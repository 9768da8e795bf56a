package service

import (
	"context"
	"testing"

	"go-inventory-stock/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

func TestExportImportRoundTrip(t *testing.T) {
	fx := newInventoryFixture(
		testVariant("p1", "v1", "Red", 2),
		testProduct("p1", "Shirt", 0),
		testProduct("p2", "Widget", 9),
	)
	sheets := NewSpreadsheetService(fx.store, fx.svc, zap.NewNop())
	ctx := context.Background()

	buf, err := sheets.ExportProducts(ctx, "b1")
	require.NoError(t, err)

	other := alice
	other.BranchID = "b2"
	summary, err := sheets.ImportProducts(ctx, buf, other)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Created)
	assert.Zero(t, summary.Skipped)

	variant, err := fx.store.FindBySKU(ctx, "b2", "SKU-v1")
	require.NoError(t, err)
	parent, err := fx.store.FindBySKU(ctx, "b2", "SKU-p1")
	require.NoError(t, err)
	assert.True(t, variant.IsVariant)
	assert.Equal(t, parent.ID, *variant.ParentProductID)
	assert.Equal(t, "Shirt - Red", variant.DisplayName())
	assert.Equal(t, 2, variant.QuantityInStock)

	drifts, err := NewReconcileService(fx.store, memTxRepo{fx.store}, zap.NewNop()).Run(ctx, "b2")
	require.NoError(t, err)
	assert.Empty(t, drifts)
}

func TestImportSkipsBadRows(t *testing.T) {
	fx := newInventoryFixture(testProduct("p1", "Widget", 1))
	sheets := NewSpreadsheetService(fx.store, fx.svc, zap.NewNop())

	f := excelize.NewFile()
	rows := [][]interface{}{
		{"SKU", "Name", "Variant", "Parent SKU", "Quantity"},
		{"N-1", "Nut", "", "", "10"},
		{"N-2", "Bolt", "", "", "lots"},
		{"SKU-p1", "Duplicate", "", "", "1"},
		{"N-3", "Washer", "Small", "MISSING", "1"},
	}
	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	summary, err := sheets.ImportProducts(context.Background(), buf, alice)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Created)
	assert.Equal(t, 3, summary.Skipped)
	require.Len(t, summary.Errors, 3)
	assert.Contains(t, summary.Errors[0], "row 3")

	nut, err := fx.store.FindBySKU(context.Background(), "b1", "N-1")
	require.NoError(t, err)
	assert.Equal(t, 10, nut.QuantityInStock)
	assert.Equal(t, model.ProductActive, nut.Status)
}
