package core

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordPurchase(t *testing.T) {
	ctx := context.Background()
	rec := NewRecorderService(newTestStore(t), NewIDGenerator(), testLogger)

	id, total, err := rec.RecordPurchase(ctx, "Sharma Traders", "Pen", dec("10"), dec("5"), "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(id, "P-"))
	assert.True(t, total.Equal(dec("50")))

	purchases, err := rec.Purchases(ctx)
	require.NoError(t, err)
	require.Len(t, purchases, 1)
	assert.Equal(t, id, purchases[0].ID)
	assert.Equal(t, "Sharma Traders", purchases[0].Supplier)
	assert.True(t, purchases[0].Total.Equal(dec("50")))
}

func TestRecordSaleProfit(t *testing.T) {
	tests := []struct {
		name       string
		qty        string
		sell       string
		cost       string
		wantTotal  string
		wantProfit string
	}{
		{"profitable sale", "3", "8", "5", "24", "9"},
		{"zero cost basis keeps full revenue as profit", "2", "10", "0", "20", "20"},
		{"loss-making sale goes negative", "1", "4", "5", "4", "-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			rec := NewRecorderService(newTestStore(t), NewIDGenerator(), testLogger)

			id, total, profit, err := rec.RecordSale(ctx, "Rahul", "Pen", dec(tt.qty), dec(tt.sell), dec(tt.cost), "")
			require.NoError(t, err)
			assert.True(t, strings.HasPrefix(id, "S-"))
			assert.True(t, total.Equal(dec(tt.wantTotal)), "total %s", total)
			assert.True(t, profit.Equal(dec(tt.wantProfit)), "profit %s", profit)
		})
	}
}

func TestRecordSaleSanitizesInput(t *testing.T) {
	ctx := context.Background()
	rec := NewRecorderService(newTestStore(t), NewIDGenerator(), testLogger)

	// Non-positive quantity falls back to 1, negative price to 0.
	_, total, profit, err := rec.RecordSale(ctx, "Rahul", "Pen", dec("0"), dec("-5"), dec("0"), "")
	require.NoError(t, err)
	assert.True(t, total.IsZero())
	assert.True(t, profit.IsZero())

	sales, err := rec.Sales(ctx)
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.True(t, sales[0].Quantity.Equal(dec("1")))
}

func TestRecordIDsUnique(t *testing.T) {
	ctx := context.Background()
	rec := NewRecorderService(newTestStore(t), NewIDGenerator(), testLogger)

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		id, _, err := rec.RecordPurchase(ctx, "S", "Pen", dec("1"), dec("1"), "")
		require.NoError(t, err)
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}
