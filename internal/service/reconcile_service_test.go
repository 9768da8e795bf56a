package service

import (
	"context"
	"testing"

	"go-inventory-stock/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestReconcileReportsDrift(t *testing.T) {
	store, _, stock := newStockFixture(testProduct("p1", "Widget", 0), testProduct("p2", "Gadget", 4))
	ctx := context.Background()

	_, err := stock.Adjust(ctx, adjust("p1", DirectionIn, "3"), alice)
	require.NoError(t, err)

	drifts, err := NewReconcileService(store, memTxRepo{store}, zap.NewNop()).Run(ctx, "b1")
	require.NoError(t, err)

	require.Len(t, drifts, 1)
	assert.Equal(t, model.Drift{
		ProductID:   "p2",
		ProductName: "Gadget",
		BranchID:    "b1",
		Stored:      4,
		Ledger:      0,
		Delta:       4,
	}, drifts[0])
}

func TestReconcileCleanBranch(t *testing.T) {
	store, _, stock := newStockFixture(testProduct("p1", "Widget", 0))
	ctx := context.Background()
	for _, q := range []string{"5", "2"} {
		_, err := stock.Adjust(ctx, adjust("p1", DirectionIn, q), alice)
		require.NoError(t, err)
	}
	_, err := stock.Adjust(ctx, adjust("p1", DirectionOut, "6"), alice)
	require.NoError(t, err)

	drifts, err := NewReconcileService(store, memTxRepo{store}, zap.NewNop()).Run(ctx, "b1")
	require.NoError(t, err)
	assert.Empty(t, drifts)
}
