package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"shop-agent/internal/store"
)

// FinanceService records manual income and expense entries outside the
// purchase and sales ledgers.
type FinanceService interface {
	// Add appends one entry. Type is folded to "income" or "expense";
	// anything unrecognized counts as expense.
	Add(ctx context.Context, customer string, amount decimal.Decimal, entryType, notes string) (*FinanceEntry, error)
	// List returns every entry in insertion order.
	List(ctx context.Context) ([]FinanceEntry, error)
}

type financeService struct {
	store store.Store
	now   func() time.Time
}

// NewFinanceService constructs a FinanceService over the tabular store.
func NewFinanceService(st store.Store) FinanceService {
	return &financeService{store: st, now: time.Now}
}

func normalizeEntryType(t string) string {
	switch strings.ToLower(strings.TrimSpace(t)) {
	case "income", "credit", "in", "received":
		return "income"
	default:
		return "expense"
	}
}

func (s *financeService) Add(ctx context.Context, customer string, amount decimal.Decimal, entryType, notes string) (*FinanceEntry, error) {
	entry := &FinanceEntry{
		Customer: customer,
		Amount:   amount,
		Type:     normalizeEntryType(entryType),
		Date:     s.now().UTC().Format(time.RFC3339),
		Notes:    notes,
	}
	row := []string{entry.Customer, entry.Amount.String(), entry.Type, entry.Date, entry.Notes}
	if err := s.store.AppendRow(ctx, store.Finance, row); err != nil {
		return nil, fmt.Errorf("append finance entry: %w", err)
	}
	return entry, nil
}

func (s *financeService) List(ctx context.Context) ([]FinanceEntry, error) {
	records, err := s.store.ReadAll(ctx, store.Finance)
	if err != nil {
		return nil, fmt.Errorf("read finance: %w", err)
	}
	entries := make([]FinanceEntry, 0, len(records))
	for _, rec := range records {
		amount, _ := decimal.NewFromString(rec.Get("Amount"))
		entries = append(entries, FinanceEntry{
			Customer: rec.Get(store.ColCustomer),
			Amount:   amount,
			Type:     rec.Get("Type"),
			Date:     rec.Get(store.ColDate),
			Notes:    rec.Get(store.ColNotes),
		})
	}
	return entries, nil
}
