package core

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInventoryIncreaseCreatesItem(t *testing.T) {
	ctx := context.Background()
	inv := NewInventoryService(newTestStore(t), testLogger)

	price := dec("5")
	require.NoError(t, inv.Increase(ctx, "Pen", dec("10"), &price))

	items, err := inv.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Pen", items[0].Product)
	assert.True(t, items[0].Quantity.Equal(dec("10")))
	assert.True(t, items[0].Price.Equal(dec("5")))
	assert.NotEmpty(t, items[0].UpdatedAt)
}

func TestInventoryIncreaseAccumulatesAndUpdatesPrice(t *testing.T) {
	ctx := context.Background()
	inv := NewInventoryService(newTestStore(t), testLogger)

	p1 := dec("5")
	require.NoError(t, inv.Increase(ctx, "Pen", dec("10"), &p1))
	// Product key is case-insensitive.
	p2 := dec("6")
	require.NoError(t, inv.Increase(ctx, "pen", dec("4"), &p2))
	// Nil price leaves the cost basis alone.
	require.NoError(t, inv.Increase(ctx, "PEN", dec("1"), nil))

	items, err := inv.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, items[0].Quantity.Equal(dec("15")))
	assert.True(t, items[0].Price.Equal(dec("6")))
}

func TestInventoryDecreaseClampsAtZero(t *testing.T) {
	ctx := context.Background()
	inv := NewInventoryService(newTestStore(t), testLogger)

	require.NoError(t, inv.Increase(ctx, "Pen", dec("3"), nil))
	require.NoError(t, inv.Decrease(ctx, "Pen", dec("10")))

	items, err := inv.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, items[0].Quantity.IsZero(), "quantity must clamp at zero, got %s", items[0].Quantity)
}

func TestInventoryDecreaseUnknownProduct(t *testing.T) {
	ctx := context.Background()
	inv := NewInventoryService(newTestStore(t), testLogger)

	err := inv.Decrease(ctx, "Ghost", dec("1"))
	require.ErrorIs(t, err, ErrNotFound)
}

func TestInventoryOverwrite(t *testing.T) {
	ctx := context.Background()
	inv := NewInventoryService(newTestStore(t), testLogger)

	require.NoError(t, inv.Increase(ctx, "Pen", dec("10"), nil))
	require.NoError(t, inv.Overwrite(ctx, "Pen", dec("2"), dec("7")))

	items, err := inv.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, items[0].Quantity.Equal(dec("2")))
	assert.True(t, items[0].Price.Equal(dec("7")))
}

func TestInventoryLookupPriceUnknownIsZero(t *testing.T) {
	ctx := context.Background()
	inv := NewInventoryService(newTestStore(t), testLogger)

	price, err := inv.LookupPrice(ctx, "Ghost")
	require.NoError(t, err)
	assert.True(t, price.IsZero())
}

func TestInventoryLowStockBoundaryInclusive(t *testing.T) {
	ctx := context.Background()
	inv := NewInventoryService(newTestStore(t), testLogger)

	require.NoError(t, inv.Increase(ctx, "A", dec("3"), nil))
	require.NoError(t, inv.Increase(ctx, "B", dec("10"), nil))
	require.NoError(t, inv.Increase(ctx, "C", dec("5"), nil))

	low, err := inv.LowStock(ctx, decimal.NewFromInt(5))
	require.NoError(t, err)

	var names []string
	for _, it := range low {
		names = append(names, it.Product)
	}
	assert.ElementsMatch(t, []string{"A", "C"}, names)
}

func TestInventoryLowStockNonPositiveThresholdUsesDefault(t *testing.T) {
	ctx := context.Background()
	inv := NewInventoryService(newTestStore(t), testLogger)

	require.NoError(t, inv.Increase(ctx, "A", dec("3"), nil))
	require.NoError(t, inv.Increase(ctx, "B", dec("10"), nil))

	for _, threshold := range []decimal.Decimal{decimal.Zero, dec("-2")} {
		low, err := inv.LowStock(ctx, threshold)
		require.NoError(t, err)
		require.Len(t, low, 1)
		assert.Equal(t, "A", low[0].Product)
	}
}
