package core

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shop-agent/internal/store"
)

func TestInvoiceTotals(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	svc := NewInvoiceService(st, NewIDGenerator())

	inv, err := svc.Create(ctx, "Rahul", []InvoiceInput{
		{Product: "Pen", Quantity: dec("2"), Price: dec("10")},
		{Product: "Notebook", Quantity: dec("1"), Price: dec("5")},
	}, dec("10"), dec("2"), dec("10"))
	require.NoError(t, err)

	assert.True(t, inv.Subtotal.Equal(dec("25")))
	// grand = 25 + 25*10/100 - 2 = 25.5
	assert.True(t, inv.GrandTotal.Equal(dec("25.5")), "grand %s", inv.GrandTotal)
	assert.True(t, inv.Due.Equal(dec("15.5")), "due %s", inv.Due)

	records, err := st.ReadAll(ctx, store.Invoice)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, inv.ID, records[0].Get("InvoiceID"))

	var items []InvoiceItem
	require.NoError(t, json.Unmarshal([]byte(records[0].Get("ItemsJSON")), &items))
	require.Len(t, items, 2)
	assert.True(t, items[0].Total.Equal(dec("20")))
}

func TestInvoiceCoercesBadLineItems(t *testing.T) {
	ctx := context.Background()
	svc := NewInvoiceService(newTestStore(t), NewIDGenerator())

	inv, err := svc.Create(ctx, "Rahul", []InvoiceInput{
		{Product: "Pen", Quantity: dec("0"), Price: dec("-3")},
	}, dec("0"), dec("0"), dec("0"))
	require.NoError(t, err)

	require.Len(t, inv.Items, 1)
	assert.True(t, inv.Items[0].Quantity.Equal(dec("1")), "zero quantity falls back to 1")
	assert.True(t, inv.Items[0].Price.IsZero(), "negative price falls back to 0")
	assert.True(t, inv.GrandTotal.IsZero())
	assert.True(t, inv.Due.IsZero())
}
