package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"shop-agent/internal/core"
	"shop-agent/internal/render"
	"shop-agent/internal/store"
	"shop-agent/internal/store/memstore"
)

// scriptedClassifier returns canned classifications and records the
// history it was given.
type scriptedClassifier struct {
	cls     *core.Classification
	err     error
	history []core.MemoryEntry
}

func (s *scriptedClassifier) Classify(_ context.Context, _ string, history []core.MemoryEntry) (*core.Classification, error) {
	s.history = history
	if s.err != nil {
		return nil, s.err
	}
	return s.cls, nil
}

func newServiceFixture(t *testing.T, cls *scriptedClassifier) (store.Store, ApplicationService) {
	t.Helper()
	st := memstore.New()
	require.NoError(t, store.EnsureAll(context.Background(), st))

	logger := zap.NewNop()
	ids := core.NewIDGenerator()
	inv := core.NewInventoryService(st, logger)
	rec := core.NewRecorderService(st, ids, logger)
	dir := core.NewDirectoryService(st, logger)
	invoices := core.NewInvoiceService(st, ids)
	jobs := core.NewServiceJobService(st, ids, logger)
	fin := core.NewFinanceService(st)
	tasks := core.NewTaskService(st)
	rep := core.NewReportingService(st, inv, rec, fin, tasks, logger)
	memory := core.NewMemoryService(st)
	orch := core.NewOrchestrator(inv, rec, dir, invoices, jobs, fin, tasks, rep,
		render.NewPDFRenderer(), logger)

	return st, New(cls, orch, memory, nil, 0, logger)
}

func TestHandleMessageStoresBothTurns(t *testing.T) {
	ctx := context.Background()
	cls := &scriptedClassifier{cls: &core.Classification{
		Intent: core.IntentPurchaseEntry,
		Data:   map[string]any{"product": "Pen", "quantity": "10", "price_each": "5"},
	}}
	st, svc := newServiceFixture(t, cls)

	res, err := svc.HandleMessage(ctx, "u1", "bought 10 pens at 5")
	require.NoError(t, err)
	assert.Equal(t, core.StateSuccess, res.State)
	assert.Contains(t, res.Reply, "Purchased 10 x Pen")

	records, err := st.ReadAll(ctx, store.Memory)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "user", records[0].Get("Role"))
	assert.Equal(t, "bought 10 pens at 5", records[0].Get("Text"))
	assert.Equal(t, "assistant", records[1].Get("Role"))
}

func TestHandleMessagePassesRecentHistory(t *testing.T) {
	ctx := context.Background()
	cls := &scriptedClassifier{cls: &core.Classification{
		Intent: core.IntentGeneralChat, Reply: "hi",
	}}
	_, svc := newServiceFixture(t, cls)

	for i := 0; i < 5; i++ {
		_, err := svc.HandleMessage(ctx, "u1", "hello again")
		require.NoError(t, err)
	}

	// 4 turns * 2 sides = 8 stored, capped to the last 6 for context.
	assert.Len(t, cls.history, core.DefaultMemoryTurns)
}

func TestHandleMessageClassifierFailureDegrades(t *testing.T) {
	ctx := context.Background()
	cls := &scriptedClassifier{err: errors.New("api down")}
	st, svc := newServiceFixture(t, cls)

	res, err := svc.HandleMessage(ctx, "u1", "bought 10 pens")
	require.NoError(t, err, "classifier failure must not surface as an error")
	assert.Equal(t, core.IntentGeneralChat, res.Intent)
	assert.Equal(t, classifyApology, res.Reply)

	// No ledger writes happened.
	sales, err := st.ReadAll(ctx, store.Sales)
	require.NoError(t, err)
	assert.Empty(t, sales)
	purchases, err := st.ReadAll(ctx, store.Purchase)
	require.NoError(t, err)
	assert.Empty(t, purchases)
}

func TestHandleVoiceWithoutSpeechService(t *testing.T) {
	ctx := context.Background()
	cls := &scriptedClassifier{cls: &core.Classification{Intent: core.IntentGeneralChat, Reply: "hi"}}
	_, svc := newServiceFixture(t, cls)

	res, err := svc.HandleVoice(ctx, "u1", nil, "voice.ogg")
	require.NoError(t, err)
	assert.Equal(t, core.StateFailed, res.State)
	assert.Contains(t, res.Reply, "not enabled")
}
