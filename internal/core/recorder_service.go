package core

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"shop-agent/internal/store"
)

// RecorderService appends immutable purchase and sale records. Records
// are never updated or deleted; corrections are new records.
type RecorderService interface {
	// RecordPurchase appends one purchase line and returns its id and
	// total = qty × unitPrice.
	RecordPurchase(ctx context.Context, supplier, product string, qty, unitPrice decimal.Decimal, notes string) (string, decimal.Decimal, error)

	// RecordSale appends one sale line and returns its id, total and
	// profit = (sellingPrice − purchasePrice) × qty. Profit may be
	// negative; a loss-making sale is recorded as such.
	RecordSale(ctx context.Context, customer, product string, qty, sellingPrice, purchasePrice decimal.Decimal, notes string) (string, decimal.Decimal, decimal.Decimal, error)

	// Purchases returns all purchase records in append order.
	Purchases(ctx context.Context) ([]PurchaseRecord, error)

	// Sales returns all sale records in append order.
	Sales(ctx context.Context) ([]SaleRecord, error)
}

type recorderService struct {
	store  store.Store
	ids    *IDGenerator
	logger *zap.Logger
	now    func() time.Time
}

// NewRecorderService constructs a RecorderService over the tabular
// store.
func NewRecorderService(st store.Store, ids *IDGenerator, logger *zap.Logger) RecorderService {
	return &recorderService{store: st, ids: ids, logger: logger, now: time.Now}
}

func (s *recorderService) RecordPurchase(ctx context.Context, supplier, product string, qty, unitPrice decimal.Decimal, notes string) (string, decimal.Decimal, error) {
	qty, unitPrice = s.sanitize(product, qty, unitPrice)

	id := s.ids.Next(PrefixPurchase)
	total := qty.Mul(unitPrice)
	row := []string{
		id,
		s.now().UTC().Format(time.RFC3339),
		supplier,
		product,
		qty.String(),
		unitPrice.String(),
		total.String(),
		notes,
	}
	if err := s.store.AppendRow(ctx, store.Purchase, row); err != nil {
		return "", decimal.Zero, fmt.Errorf("append purchase record: %w", err)
	}
	return id, total, nil
}

func (s *recorderService) RecordSale(ctx context.Context, customer, product string, qty, sellingPrice, purchasePrice decimal.Decimal, notes string) (string, decimal.Decimal, decimal.Decimal, error) {
	qty, sellingPrice = s.sanitize(product, qty, sellingPrice)

	id := s.ids.Next(PrefixSale)
	total := qty.Mul(sellingPrice)
	profit := sellingPrice.Sub(purchasePrice).Mul(qty)
	row := []string{
		id,
		s.now().UTC().Format(time.RFC3339),
		customer,
		product,
		qty.String(),
		sellingPrice.String(),
		total.String(),
		profit.String(),
		notes,
	}
	if err := s.store.AppendRow(ctx, store.Sales, row); err != nil {
		return "", decimal.Zero, decimal.Zero, fmt.Errorf("append sale record: %w", err)
	}
	return id, total, profit, nil
}

// sanitize enforces qty > 0 and price ≥ 0 by falling back to the
// normalizer defaults instead of rejecting; malformed classifier
// output must degrade, not fail.
func (s *recorderService) sanitize(product string, qty, price decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	if !qty.IsPositive() {
		s.logger.Warn("non-positive quantity coerced to 1",
			zap.String("product", product), zap.String("quantity", qty.String()))
		qty = decimal.NewFromInt(1)
	}
	if price.IsNegative() {
		s.logger.Warn("negative price coerced to 0",
			zap.String("product", product), zap.String("price", price.String()))
		price = decimal.Zero
	}
	return qty, price
}

func (s *recorderService) Purchases(ctx context.Context) ([]PurchaseRecord, error) {
	records, err := s.store.ReadAll(ctx, store.Purchase)
	if err != nil {
		return nil, fmt.Errorf("read purchases: %w", err)
	}
	out := make([]PurchaseRecord, 0, len(records))
	for _, rec := range records {
		qty, _ := CoerceDecimal(rec.Get(store.ColQuantity))
		each, _ := CoerceDecimal(rec.Get("PriceEach"))
		total, _ := CoerceDecimal(rec.Get(store.ColTotal))
		out = append(out, PurchaseRecord{
			ID:        rec.Get("PurchaseID"),
			Date:      rec.Get(store.ColDate),
			Supplier:  rec.Get("Supplier"),
			Product:   rec.Get(store.ColProduct),
			Quantity:  qty,
			PriceEach: each,
			Total:     total,
			Notes:     rec.Get(store.ColNotes),
		})
	}
	return out, nil
}

func (s *recorderService) Sales(ctx context.Context) ([]SaleRecord, error) {
	records, err := s.store.ReadAll(ctx, store.Sales)
	if err != nil {
		return nil, fmt.Errorf("read sales: %w", err)
	}
	out := make([]SaleRecord, 0, len(records))
	for _, rec := range records {
		qty, _ := CoerceDecimal(rec.Get(store.ColQuantity))
		each, _ := CoerceDecimal(rec.Get("PriceEach"))
		total, _ := CoerceDecimal(rec.Get(store.ColTotal))
		profit, _ := CoerceDecimal(rec.Get(store.ColProfit))
		out = append(out, SaleRecord{
			ID:        rec.Get("SaleID"),
			Date:      rec.Get(store.ColDate),
			Customer:  rec.Get(store.ColCustomer),
			Product:   rec.Get(store.ColProduct),
			Quantity:  qty,
			PriceEach: each,
			Total:     total,
			Profit:    profit,
			Notes:     rec.Get(store.ColNotes),
		})
	}
	return out, nil
}
