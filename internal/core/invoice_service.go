package core

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"shop-agent/internal/store"
)

// InvoiceInput is one raw line item before normalization.
type InvoiceInput struct {
	Product  string
	Quantity decimal.Decimal
	Price    decimal.Decimal
}

// InvoiceService computes and persists immutable invoices.
type InvoiceService interface {
	// Create computes line totals, subtotal, tax, discount, grand
	// total and amount due, persists the invoice, and returns it.
	Create(ctx context.Context, customer string, items []InvoiceInput, taxRate, discount, paid decimal.Decimal) (*Invoice, error)
}

type invoiceService struct {
	store store.Store
	ids   *IDGenerator
	now   func() time.Time
}

// NewInvoiceService constructs an InvoiceService over the tabular
// store.
func NewInvoiceService(st store.Store, ids *IDGenerator) InvoiceService {
	return &invoiceService{store: st, ids: ids, now: time.Now}
}

func (s *invoiceService) Create(ctx context.Context, customer string, items []InvoiceInput, taxRate, discount, paid decimal.Decimal) (*Invoice, error) {
	lines := make([]InvoiceItem, 0, len(items))
	subtotal := decimal.Zero
	for _, in := range items {
		qty := in.Quantity
		if !qty.IsPositive() {
			qty = decimal.NewFromInt(1)
		}
		price := in.Price
		if price.IsNegative() {
			price = decimal.Zero
		}
		lineTotal := qty.Mul(price)
		subtotal = subtotal.Add(lineTotal)
		lines = append(lines, InvoiceItem{
			Product:  in.Product,
			Quantity: qty,
			Price:    price,
			Total:    lineTotal,
		})
	}

	hundred := decimal.NewFromInt(100)
	taxAmount := subtotal.Mul(taxRate).Div(hundred)
	grandTotal := subtotal.Add(taxAmount).Sub(discount)
	due := grandTotal.Sub(paid)

	inv := &Invoice{
		ID:         s.ids.Next(PrefixInvoice),
		Date:       s.now().UTC().Format(time.RFC3339),
		Customer:   customer,
		Items:      lines,
		Subtotal:   subtotal,
		TaxRate:    taxRate,
		Discount:   discount,
		GrandTotal: grandTotal,
		Paid:       paid,
		Due:        due,
	}

	itemsJSON, err := json.Marshal(inv.Items)
	if err != nil {
		return nil, fmt.Errorf("encode invoice items: %w", err)
	}
	row := []string{
		inv.ID,
		inv.Date,
		inv.Customer,
		string(itemsJSON),
		inv.Subtotal.String(),
		inv.TaxRate.String(),
		inv.Discount.String(),
		inv.GrandTotal.String(),
		inv.Paid.String(),
		inv.Due.String(),
	}
	if err := s.store.AppendRow(ctx, store.Invoice, row); err != nil {
		return nil, fmt.Errorf("append invoice record: %w", err)
	}
	return inv, nil
}
