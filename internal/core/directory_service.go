package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"shop-agent/internal/store"
)

// ProfileUpdate carries the optional fields of an upsert. Empty fields
// never clobber existing values; notes and tags are merged, not
// replaced.
type ProfileUpdate struct {
	Phone string
	Email string
	Notes string
	Tags  string
}

// DirectoryService is the customer/supplier CRM directory. Names are
// case-insensitive keys; lifetime counters only ever increase.
type DirectoryService interface {
	// Upsert creates or updates the profile for name. New profiles
	// start with zeroed counters. LastVisit is stamped on every call.
	Upsert(ctx context.Context, name string, update ProfileUpdate) error

	// RecordTransaction adds one purchase, amount to TotalSpent and
	// profit to TotalProfit. Returns false when no profile matches;
	// the caller decides whether to create one first.
	RecordTransaction(ctx context.Context, name string, amount, profit decimal.Decimal) (bool, error)

	// Get returns the profile for name, or ErrNotFound.
	Get(ctx context.Context, name string) (*Profile, error)

	// List returns every profile.
	List(ctx context.Context) ([]Profile, error)
}

type directoryService struct {
	store  store.Store
	locks  *keyedLocks
	logger *zap.Logger
	now    func() time.Time
}

// NewDirectoryService constructs a DirectoryService over the tabular
// store. Writes per name are serialized through a key lock, same as
// the inventory ledger.
func NewDirectoryService(st store.Store, logger *zap.Logger) DirectoryService {
	return &directoryService{store: st, locks: newKeyedLocks(), logger: logger, now: time.Now}
}

func (s *directoryService) Upsert(ctx context.Context, name string, update ProfileUpdate) error {
	release := s.locks.acquire(name)
	defer release()

	records, err := s.store.ReadAll(ctx, store.CRM)
	if err != nil {
		return fmt.Errorf("read crm: %w", err)
	}

	today := s.now().UTC().Format("2006-01-02")
	rec, found := store.FindByKey(records, store.ColCustomer, name)
	if !found {
		row := []string{
			name,
			update.Phone,
			update.Email,
			today,
			"0", "0", "0",
			update.Notes,
			update.Tags,
		}
		if err := s.store.AppendRow(ctx, store.CRM, row); err != nil {
			return fmt.Errorf("create profile %q: %w", name, err)
		}
		return nil
	}

	set := func(column, value string) error {
		return s.store.UpdateCell(ctx, store.CRM, rec.Row, column, value)
	}
	// Provided-only updates: a blank phone must not erase a known one.
	if update.Phone != "" {
		if err := set("Phone", update.Phone); err != nil {
			return fmt.Errorf("update phone of %q: %w", name, err)
		}
	}
	if update.Email != "" {
		if err := set("Email", update.Email); err != nil {
			return fmt.Errorf("update email of %q: %w", name, err)
		}
	}
	if update.Notes != "" {
		merged := strings.TrimSpace(rec.Get(store.ColNotes) + " " + update.Notes)
		if err := set(store.ColNotes, merged); err != nil {
			return fmt.Errorf("update notes of %q: %w", name, err)
		}
	}
	if update.Tags != "" {
		merged := mergeTags(rec.Get("Tags"), update.Tags)
		if err := set("Tags", merged); err != nil {
			return fmt.Errorf("update tags of %q: %w", name, err)
		}
	}
	if err := set("LastVisit", today); err != nil {
		return fmt.Errorf("stamp last visit of %q: %w", name, err)
	}
	return nil
}

func (s *directoryService) RecordTransaction(ctx context.Context, name string, amount, profit decimal.Decimal) (bool, error) {
	release := s.locks.acquire(name)
	defer release()

	records, err := s.store.ReadAll(ctx, store.CRM)
	if err != nil {
		return false, fmt.Errorf("read crm: %w", err)
	}

	rec, found := store.FindByKey(records, store.ColCustomer, name)
	if !found {
		return false, nil
	}

	purchases, _ := CoerceDecimal(rec.Get("TotalPurchases"))
	spent, _ := CoerceDecimal(rec.Get("TotalSpent"))
	total, _ := CoerceDecimal(rec.Get("TotalProfit"))

	updates := map[string]string{
		"TotalPurchases": purchases.Add(decimal.NewFromInt(1)).String(),
		"TotalSpent":     spent.Add(amount).String(),
		"TotalProfit":    total.Add(profit).String(),
	}
	for column, value := range updates {
		if err := s.store.UpdateCell(ctx, store.CRM, rec.Row, column, value); err != nil {
			return false, fmt.Errorf("update %s of %q: %w", column, name, err)
		}
	}
	return true, nil
}

func (s *directoryService) Get(ctx context.Context, name string) (*Profile, error) {
	records, err := s.store.ReadAll(ctx, store.CRM)
	if err != nil {
		return nil, fmt.Errorf("read crm: %w", err)
	}
	rec, found := store.FindByKey(records, store.ColCustomer, name)
	if !found {
		return nil, fmt.Errorf("profile %q: %w", name, ErrNotFound)
	}
	p := profileFromRecord(rec)
	return &p, nil
}

func (s *directoryService) List(ctx context.Context) ([]Profile, error) {
	records, err := s.store.ReadAll(ctx, store.CRM)
	if err != nil {
		return nil, fmt.Errorf("read crm: %w", err)
	}
	profiles := make([]Profile, 0, len(records))
	for _, rec := range records {
		profiles = append(profiles, profileFromRecord(rec))
	}
	return profiles, nil
}

func profileFromRecord(rec store.Record) Profile {
	purchases, _ := CoerceDecimal(rec.Get("TotalPurchases"))
	spent, _ := CoerceDecimal(rec.Get("TotalSpent"))
	profit, _ := CoerceDecimal(rec.Get("TotalProfit"))
	return Profile{
		Name:           rec.Get(store.ColCustomer),
		Phone:          rec.Get("Phone"),
		Email:          rec.Get("Email"),
		LastVisit:      rec.Get("LastVisit"),
		TotalPurchases: purchases,
		TotalSpent:     spent,
		TotalProfit:    profit,
		Notes:          rec.Get(store.ColNotes),
		Tags:           rec.Get("Tags"),
	}
}

// mergeTags appends new comma-separated tags, skipping duplicates.
func mergeTags(existing, added string) string {
	seen := make(map[string]bool)
	var out []string
	for _, t := range strings.Split(existing+","+added, ",") {
		t = strings.TrimSpace(t)
		if t == "" || seen[strings.ToLower(t)] {
			continue
		}
		seen[strings.ToLower(t)] = true
		out = append(out, t)
	}
	return strings.Join(out, ",")
}
