package core

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"shop-agent/internal/store"
)

// InventoryService is the authoritative ledger of current stock per
// product. Product names are case-insensitive keys. Quantity never
// goes below zero: Decrease clamps rather than underflows.
type InventoryService interface {
	// Increase adds qty to the product's stock, creating the item on
	// first reference. A non-nil price also updates the last-known
	// purchase price.
	Increase(ctx context.Context, product string, qty decimal.Decimal, price *decimal.Decimal) error

	// Decrease subtracts qty, clamping at zero. Returns ErrNotFound
	// when the product has no inventory row; it never creates phantom
	// stock for an unknown product.
	Decrease(ctx context.Context, product string, qty decimal.Decimal) error

	// Overwrite sets quantity and price to exact values, creating the
	// item when absent.
	Overwrite(ctx context.Context, product string, qty, price decimal.Decimal) error

	// LookupPrice returns the last-known purchase price, or zero for
	// an unknown product. This is the cost basis for profit at sale
	// time, a point-in-time estimate rather than a FIFO/LIFO cost layer.
	LookupPrice(ctx context.Context, product string) (decimal.Decimal, error)

	// GetAll returns every inventory item.
	GetAll(ctx context.Context) ([]InventoryItem, error)

	// LowStock returns items with quantity at or below threshold. A
	// non-positive threshold falls back to DefaultLowStockThreshold.
	LowStock(ctx context.Context, threshold decimal.Decimal) ([]InventoryItem, error)
}

// DefaultLowStockThreshold is the stock level at or below which an
// item counts as running low.
var DefaultLowStockThreshold = decimal.NewFromInt(5)

type inventoryService struct {
	store  store.Store
	locks  *keyedLocks
	logger *zap.Logger
	now    func() time.Time
}

// NewInventoryService constructs an InventoryService over the tabular
// store. Writes to a product row are serialized through a per-product
// lock; the store itself offers no isolation for the read-modify-write
// cycle.
func NewInventoryService(st store.Store, logger *zap.Logger) InventoryService {
	return &inventoryService{store: st, locks: newKeyedLocks(), logger: logger, now: time.Now}
}

func (s *inventoryService) Increase(ctx context.Context, product string, qty decimal.Decimal, price *decimal.Decimal) error {
	release := s.locks.acquire(product)
	defer release()

	records, err := s.store.ReadAll(ctx, store.Inventory)
	if err != nil {
		return fmt.Errorf("read inventory: %w", err)
	}

	rec, found := store.FindByKey(records, store.ColProduct, product)
	if !found {
		p := decimal.Zero
		if price != nil {
			p = *price
		}
		row := []string{product, qty.String(), p.String(), s.timestamp()}
		if err := s.store.AppendRow(ctx, store.Inventory, row); err != nil {
			return fmt.Errorf("create inventory item %q: %w", product, err)
		}
		return nil
	}

	current, _ := CoerceDecimal(rec.Get(store.ColQuantity))
	newQty := current.Add(qty)
	if err := s.store.UpdateCell(ctx, store.Inventory, rec.Row, store.ColQuantity, newQty.String()); err != nil {
		return fmt.Errorf("update quantity of %q: %w", product, err)
	}
	if price != nil {
		if err := s.store.UpdateCell(ctx, store.Inventory, rec.Row, store.ColPrice, price.String()); err != nil {
			return fmt.Errorf("update price of %q: %w", product, err)
		}
	}
	if err := s.store.UpdateCell(ctx, store.Inventory, rec.Row, "UpdatedAt", s.timestamp()); err != nil {
		s.logger.Warn("failed to stamp inventory update", zap.String("product", product), zap.Error(err))
	}
	return nil
}

func (s *inventoryService) Decrease(ctx context.Context, product string, qty decimal.Decimal) error {
	release := s.locks.acquire(product)
	defer release()

	records, err := s.store.ReadAll(ctx, store.Inventory)
	if err != nil {
		return fmt.Errorf("read inventory: %w", err)
	}

	rec, found := store.FindByKey(records, store.ColProduct, product)
	if !found {
		return fmt.Errorf("product %q: %w", product, ErrNotFound)
	}

	current, _ := CoerceDecimal(rec.Get(store.ColQuantity))
	newQty := current.Sub(qty)
	if newQty.IsNegative() {
		s.logger.Info("decrease clamped at zero",
			zap.String("product", product),
			zap.String("had", current.String()),
			zap.String("requested", qty.String()))
		newQty = decimal.Zero
	}
	if err := s.store.UpdateCell(ctx, store.Inventory, rec.Row, store.ColQuantity, newQty.String()); err != nil {
		return fmt.Errorf("update quantity of %q: %w", product, err)
	}
	if err := s.store.UpdateCell(ctx, store.Inventory, rec.Row, "UpdatedAt", s.timestamp()); err != nil {
		s.logger.Warn("failed to stamp inventory update", zap.String("product", product), zap.Error(err))
	}
	return nil
}

func (s *inventoryService) Overwrite(ctx context.Context, product string, qty, price decimal.Decimal) error {
	release := s.locks.acquire(product)
	defer release()

	records, err := s.store.ReadAll(ctx, store.Inventory)
	if err != nil {
		return fmt.Errorf("read inventory: %w", err)
	}

	rec, found := store.FindByKey(records, store.ColProduct, product)
	if !found {
		row := []string{product, qty.String(), price.String(), s.timestamp()}
		if err := s.store.AppendRow(ctx, store.Inventory, row); err != nil {
			return fmt.Errorf("create inventory item %q: %w", product, err)
		}
		return nil
	}

	if err := s.store.UpdateCell(ctx, store.Inventory, rec.Row, store.ColQuantity, qty.String()); err != nil {
		return fmt.Errorf("overwrite quantity of %q: %w", product, err)
	}
	if err := s.store.UpdateCell(ctx, store.Inventory, rec.Row, store.ColPrice, price.String()); err != nil {
		return fmt.Errorf("overwrite price of %q: %w", product, err)
	}
	if err := s.store.UpdateCell(ctx, store.Inventory, rec.Row, "UpdatedAt", s.timestamp()); err != nil {
		s.logger.Warn("failed to stamp inventory update", zap.String("product", product), zap.Error(err))
	}
	return nil
}

func (s *inventoryService) LookupPrice(ctx context.Context, product string) (decimal.Decimal, error) {
	records, err := s.store.ReadAll(ctx, store.Inventory)
	if err != nil {
		return decimal.Zero, fmt.Errorf("read inventory: %w", err)
	}
	rec, found := store.FindByKey(records, store.ColProduct, product)
	if !found {
		return decimal.Zero, nil
	}
	price, _ := CoerceDecimal(rec.Get(store.ColPrice))
	return price, nil
}

func (s *inventoryService) GetAll(ctx context.Context) ([]InventoryItem, error) {
	records, err := s.store.ReadAll(ctx, store.Inventory)
	if err != nil {
		return nil, fmt.Errorf("read inventory: %w", err)
	}
	items := make([]InventoryItem, 0, len(records))
	for _, rec := range records {
		items = append(items, itemFromRecord(rec))
	}
	return items, nil
}

func (s *inventoryService) LowStock(ctx context.Context, threshold decimal.Decimal) ([]InventoryItem, error) {
	if !threshold.IsPositive() {
		threshold = DefaultLowStockThreshold
	}
	items, err := s.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	var low []InventoryItem
	for _, it := range items {
		// Equal-to-threshold counts as low.
		if it.Quantity.LessThanOrEqual(threshold) {
			low = append(low, it)
		}
	}
	return low, nil
}

func (s *inventoryService) timestamp() string {
	return s.now().UTC().Format(time.RFC3339)
}

func itemFromRecord(rec store.Record) InventoryItem {
	qty, _ := CoerceDecimal(rec.Get(store.ColQuantity))
	price, _ := CoerceDecimal(rec.Get(store.ColPrice))
	return InventoryItem{
		Product:   rec.Get(store.ColProduct),
		Quantity:  qty,
		Price:     price,
		UpdatedAt: rec.Get("UpdatedAt"),
	}
}
