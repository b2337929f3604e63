package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"shop-agent/internal/store"
)

// DefaultMemoryTurns is how many recent turns the assistant carries
// into the next classification.
const DefaultMemoryTurns = 6

// MemoryService is the append-only per-user conversation log.
type MemoryService interface {
	// Append records one turn. Role is "user" or "assistant".
	Append(ctx context.Context, userID, role, text string) error
	// Recent returns up to limit most recent turns for the user, oldest
	// first. A limit <= 0 falls back to DefaultMemoryTurns.
	Recent(ctx context.Context, userID string, limit int) ([]MemoryEntry, error)
}

type memoryService struct {
	store store.Store
	now   func() time.Time
}

// NewMemoryService constructs a MemoryService over the tabular store.
func NewMemoryService(st store.Store) MemoryService {
	return &memoryService{store: st, now: time.Now}
}

func (s *memoryService) Append(ctx context.Context, userID, role, text string) error {
	row := []string{userID, s.now().UTC().Format(time.RFC3339), role, text}
	if err := s.store.AppendRow(ctx, store.Memory, row); err != nil {
		return fmt.Errorf("append memory turn: %w", err)
	}
	return nil
}

func (s *memoryService) Recent(ctx context.Context, userID string, limit int) ([]MemoryEntry, error) {
	if limit <= 0 {
		limit = DefaultMemoryTurns
	}
	records, err := s.store.ReadAll(ctx, store.Memory)
	if err != nil {
		return nil, fmt.Errorf("read memory: %w", err)
	}
	var all []MemoryEntry
	for _, rec := range records {
		if !strings.EqualFold(strings.TrimSpace(rec.Get("UserID")), strings.TrimSpace(userID)) {
			continue
		}
		all = append(all, MemoryEntry{
			UserID:    rec.Get("UserID"),
			Timestamp: rec.Get("Timestamp"),
			Role:      rec.Get("Role"),
			Text:      rec.Get("Text"),
		})
	}
	if len(all) > limit {
		all = all[len(all)-limit:]
	}
	return all, nil
}
