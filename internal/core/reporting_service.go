package core

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"shop-agent/internal/store"
)

// TopSellingLimit is how many products a top-seller summary lists.
const TopSellingLimit = 3

// ProductVolume aggregates sold quantity per product.
type ProductVolume struct {
	Product  string
	Quantity decimal.Decimal
}

// DaySummary aggregates one calendar day of trading.
type DaySummary struct {
	Date          string
	SalesCount    int
	SalesTotal    decimal.Decimal
	Profit        decimal.Decimal
	PurchaseCount int
	PurchaseTotal decimal.Decimal
}

// ReportingService derives read-only aggregates from the ledgers and
// persists periodic reports.
type ReportingService interface {
	// LowStock lists products at or below the threshold. A
	// non-positive threshold falls back to DefaultLowStockThreshold.
	LowStock(ctx context.Context, threshold decimal.Decimal) ([]InventoryItem, error)
	// TopSelling returns up to TopSellingLimit products by total sold
	// quantity. Ties keep first-sold order.
	TopSelling(ctx context.Context) ([]ProductVolume, error)
	// TotalProfit sums the Profit column of every sale.
	TotalProfit(ctx context.Context) (decimal.Decimal, error)
	// TodaySummary aggregates sales and purchases dated today (UTC).
	TodaySummary(ctx context.Context) (*DaySummary, error)
	// WeeklyReport aggregates the last seven days of trading plus
	// finance income/expense totals, persists the report text to the
	// Report collection, and returns it.
	WeeklyReport(ctx context.Context) (string, error)
	// Suggestions produces restock and sales hints from current state.
	Suggestions(ctx context.Context) ([]string, error)
}

type reportingService struct {
	store     store.Store
	inventory InventoryService
	recorder  RecorderService
	finance   FinanceService
	tasks     TaskService
	logger    *zap.Logger
	now       func() time.Time
}

// NewReportingService constructs a ReportingService over the ledger
// services.
func NewReportingService(st store.Store, inv InventoryService, rec RecorderService, fin FinanceService, tasks TaskService, logger *zap.Logger) ReportingService {
	return &reportingService{
		store:     st,
		inventory: inv,
		recorder:  rec,
		finance:   fin,
		tasks:     tasks,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *reportingService) LowStock(ctx context.Context, threshold decimal.Decimal) ([]InventoryItem, error) {
	if !threshold.IsPositive() {
		threshold = DefaultLowStockThreshold
	}
	return s.inventory.LowStock(ctx, threshold)
}

func (s *reportingService) TopSelling(ctx context.Context) ([]ProductVolume, error) {
	sales, err := s.recorder.Sales(ctx)
	if err != nil {
		return nil, err
	}
	totals := map[string]decimal.Decimal{}
	var order []string
	for _, sale := range sales {
		key := strings.ToLower(strings.TrimSpace(sale.Product))
		if key == "" {
			continue
		}
		if _, seen := totals[key]; !seen {
			order = append(order, key)
		}
		totals[key] = totals[key].Add(sale.Quantity)
	}
	names := map[string]string{}
	for _, sale := range sales {
		key := strings.ToLower(strings.TrimSpace(sale.Product))
		if _, ok := names[key]; !ok {
			names[key] = sale.Product
		}
	}
	// Stable sort keeps first-sold order between equal volumes.
	sort.SliceStable(order, func(i, j int) bool {
		return totals[order[i]].GreaterThan(totals[order[j]])
	})
	if len(order) > TopSellingLimit {
		order = order[:TopSellingLimit]
	}
	out := make([]ProductVolume, 0, len(order))
	for _, key := range order {
		out = append(out, ProductVolume{Product: names[key], Quantity: totals[key]})
	}
	return out, nil
}

func (s *reportingService) TotalProfit(ctx context.Context) (decimal.Decimal, error) {
	sales, err := s.recorder.Sales(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, sale := range sales {
		total = total.Add(sale.Profit)
	}
	return total, nil
}

func (s *reportingService) TodaySummary(ctx context.Context) (*DaySummary, error) {
	day := s.now().UTC().Format("2006-01-02")
	return s.summarizeSince(ctx, day, func(date string) bool {
		return strings.HasPrefix(date, day)
	})
}

func (s *reportingService) summarizeSince(ctx context.Context, label string, include func(date string) bool) (*DaySummary, error) {
	sales, err := s.recorder.Sales(ctx)
	if err != nil {
		return nil, err
	}
	purchases, err := s.recorder.Purchases(ctx)
	if err != nil {
		return nil, err
	}
	sum := &DaySummary{
		Date:          label,
		SalesTotal:    decimal.Zero,
		Profit:        decimal.Zero,
		PurchaseTotal: decimal.Zero,
	}
	for _, sale := range sales {
		if !include(sale.Date) {
			continue
		}
		sum.SalesCount++
		sum.SalesTotal = sum.SalesTotal.Add(sale.Total)
		sum.Profit = sum.Profit.Add(sale.Profit)
	}
	for _, p := range purchases {
		if !include(p.Date) {
			continue
		}
		sum.PurchaseCount++
		sum.PurchaseTotal = sum.PurchaseTotal.Add(p.Total)
	}
	return sum, nil
}

func (s *reportingService) WeeklyReport(ctx context.Context) (string, error) {
	cutoff := s.now().UTC().AddDate(0, 0, -7)
	sum, err := s.summarizeSince(ctx, "last 7 days", func(date string) bool {
		t, err := time.Parse(time.RFC3339, date)
		if err != nil {
			return false
		}
		return !t.Before(cutoff)
	})
	if err != nil {
		return "", err
	}

	entries, err := s.finance.List(ctx)
	if err != nil {
		return "", err
	}
	income, expense := decimal.Zero, decimal.Zero
	for _, e := range entries {
		// Anything not marked income counts as expense, matching the
		// folding the finance ledger applies on write.
		if strings.EqualFold(e.Type, "income") {
			income = income.Add(e.Amount)
		} else {
			expense = expense.Add(e.Amount)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Weekly report (%s)\n", s.now().UTC().Format("2006-01-02"))
	fmt.Fprintf(&b, "Total income: %s\n", income.String())
	fmt.Fprintf(&b, "Total expense: %s\n", expense.String())
	fmt.Fprintf(&b, "Sales: %d entries, total %s, profit %s\n", sum.SalesCount, sum.SalesTotal.String(), sum.Profit.String())
	fmt.Fprintf(&b, "Purchases: %d entries, total %s\n", sum.PurchaseCount, sum.PurchaseTotal.String())

	if low, err := s.inventory.LowStock(ctx, DefaultLowStockThreshold); err == nil && len(low) > 0 {
		names := make([]string, 0, len(low))
		for _, item := range low {
			names = append(names, fmt.Sprintf("%s (%s)", item.Product, item.Quantity.String()))
		}
		fmt.Fprintf(&b, "Low stock: %s\n", strings.Join(names, ", "))
	}
	if pending, err := s.tasks.PendingCount(ctx); err == nil && pending > 0 {
		fmt.Fprintf(&b, "Pending tasks: %d\n", pending)
	}
	text := strings.TrimRight(b.String(), "\n")

	row := []string{s.now().UTC().Format(time.RFC3339), text}
	if err := s.store.AppendRow(ctx, store.Report, row); err != nil {
		// The report is still useful even when persisting it fails.
		s.logger.Warn("persist weekly report failed", zap.Error(err))
	}
	return text, nil
}

func (s *reportingService) Suggestions(ctx context.Context) ([]string, error) {
	var out []string

	low, err := s.inventory.LowStock(ctx, DefaultLowStockThreshold)
	if err != nil {
		return nil, err
	}
	for _, item := range low {
		out = append(out, fmt.Sprintf("Restock %s, only %s left.", item.Product, item.Quantity.String()))
	}

	top, err := s.TopSelling(ctx)
	if err != nil {
		return nil, err
	}
	if len(top) > 0 {
		names := make([]string, 0, len(top))
		for _, pv := range top {
			names = append(names, pv.Product)
		}
		out = append(out, fmt.Sprintf("Best sellers lately: %s. Keep them stocked.", strings.Join(names, ", ")))
	}

	profit, err := s.TotalProfit(ctx)
	if err != nil {
		return nil, err
	}
	if profit.IsNegative() {
		out = append(out, "Overall profit is negative. Review selling prices.")
	}

	if len(out) == 0 {
		out = append(out, "Everything looks healthy. Nothing to flag right now.")
	}
	return out, nil
}
