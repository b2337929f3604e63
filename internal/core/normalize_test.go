package core

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeAliases(t *testing.T) {
	tests := []struct {
		name string
		data map[string]any
		want map[string]string
	}{
		{
			name: "canonical keys pass through",
			data: map[string]any{"product": "Pen", "quantity": "10"},
			want: map[string]string{"product": "Pen", "quantity": "10"},
		},
		{
			name: "aliases resolve",
			data: map[string]any{"item": "Pen", "qty": "10", "vendor": "Sharma"},
			want: map[string]string{"product": "Pen", "quantity": "10", "supplier": "Sharma"},
		},
		{
			name: "keys match case-insensitively",
			data: map[string]any{"Product": "Pen", "QTY": "3"},
			want: map[string]string{"product": "Pen", "quantity": "3"},
		},
		{
			name: "earlier alias wins",
			data: map[string]any{"product_name": "Pen", "item": "Pencil"},
			want: map[string]string{"product": "Pen"},
		},
		{
			name: "blank values are skipped in favor of later aliases",
			data: map[string]any{"product": "  ", "item": "Pen"},
			want: map[string]string{"product": "Pen"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.data, "product", "quantity", "supplier")
			for field, want := range tt.want {
				assert.Equal(t, want, got[field], "field %s", field)
			}
		})
	}
}

func TestNormalizeMissingFieldsPresentButEmpty(t *testing.T) {
	f := Normalize(map[string]any{"Product": "X"}, "product", "quantity", "price")
	assert.Equal(t, "X", f["product"])
	assert.Equal(t, "", f["quantity"])
	assert.Equal(t, "", f["price"])

	// Defaults kick in at coercion time.
	assert.True(t, f.Quantity().Equal(decimal.NewFromInt(1)))
	assert.True(t, f.Price("price").IsZero())
}

func TestNormalizeValueTypes(t *testing.T) {
	f := Normalize(map[string]any{
		"quantity": float64(10),
		"price":    json.Number("49.50"),
		"notes":    "ok",
	}, "quantity", "price", "notes")
	assert.True(t, f.Quantity().Equal(decimal.NewFromInt(10)))
	assert.True(t, f.Price("price").Equal(decimal.RequireFromString("49.5")))
	assert.Equal(t, "ok", f["notes"])
}

func TestCoerceDecimal(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"100", "100", true},
		{"₹1,500", "1500", true},
		{"$25.50", "25.5", true},
		{" 3 ", "3", true},
		{"-4.5", "-4.5", true},
		{"", "0", false},
		{"ten", "0", false},
	}
	for _, tt := range tests {
		got, ok := CoerceDecimal(tt.in)
		require.Equal(t, tt.ok, ok, "input %q", tt.in)
		if ok {
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "input %q got %s", tt.in, got)
		}
	}
}

func TestFieldsTextDefault(t *testing.T) {
	f := Normalize(map[string]any{}, "customer")
	assert.Equal(t, "Walk-in Customer", f.Text("customer", "Walk-in Customer"))
}
