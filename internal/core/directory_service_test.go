package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectoryUpsertCreatesWithZeroCounters(t *testing.T) {
	ctx := context.Background()
	dir := NewDirectoryService(newTestStore(t), testLogger)

	require.NoError(t, dir.Upsert(ctx, "Acme", ProfileUpdate{Phone: "9876543210"}))

	p, err := dir.Get(ctx, "Acme")
	require.NoError(t, err)
	assert.Equal(t, "Acme", p.Name)
	assert.Equal(t, "9876543210", p.Phone)
	assert.True(t, p.TotalPurchases.IsZero())
	assert.True(t, p.TotalSpent.IsZero())
	assert.True(t, p.TotalProfit.IsZero())
	assert.NotEmpty(t, p.LastVisit)
}

func TestDirectoryUpsertMergesCaseInsensitively(t *testing.T) {
	ctx := context.Background()
	dir := NewDirectoryService(newTestStore(t), testLogger)

	require.NoError(t, dir.Upsert(ctx, "Acme", ProfileUpdate{Phone: "111"}))
	require.NoError(t, dir.Upsert(ctx, "acme", ProfileUpdate{Email: "hi@acme.example"}))

	profiles, err := dir.List(ctx)
	require.NoError(t, err)
	require.Len(t, profiles, 1, "same name in different case must not duplicate")
	assert.Equal(t, "111", profiles[0].Phone, "blank phone must not clobber")
	assert.Equal(t, "hi@acme.example", profiles[0].Email)
}

func TestDirectoryUpsertMergesNotesAndTags(t *testing.T) {
	ctx := context.Background()
	dir := NewDirectoryService(newTestStore(t), testLogger)

	require.NoError(t, dir.Upsert(ctx, "Acme", ProfileUpdate{Notes: "prefers UPI", Tags: "wholesale"}))
	require.NoError(t, dir.Upsert(ctx, "Acme", ProfileUpdate{Notes: "pays late", Tags: "wholesale,priority"}))

	p, err := dir.Get(ctx, "Acme")
	require.NoError(t, err)
	assert.Equal(t, "prefers UPI pays late", p.Notes)
	assert.Equal(t, "wholesale,priority", p.Tags)
}

func TestDirectoryRecordTransaction(t *testing.T) {
	ctx := context.Background()
	dir := NewDirectoryService(newTestStore(t), testLogger)

	found, err := dir.RecordTransaction(ctx, "Ghost", dec("10"), dec("2"))
	require.NoError(t, err)
	assert.False(t, found, "missing profile reports false, not an error")

	require.NoError(t, dir.Upsert(ctx, "Acme", ProfileUpdate{}))
	found, err = dir.RecordTransaction(ctx, "Acme", dec("24"), dec("9"))
	require.NoError(t, err)
	require.True(t, found)
	found, err = dir.RecordTransaction(ctx, "acme", dec("10"), dec("1"))
	require.NoError(t, err)
	require.True(t, found)

	p, err := dir.Get(ctx, "Acme")
	require.NoError(t, err)
	assert.True(t, p.TotalPurchases.Equal(dec("2")))
	assert.True(t, p.TotalSpent.Equal(dec("34")))
	assert.True(t, p.TotalProfit.Equal(dec("10")))
}

func TestDirectoryGetUnknown(t *testing.T) {
	ctx := context.Background()
	dir := NewDirectoryService(newTestStore(t), testLogger)

	_, err := dir.Get(ctx, "Nobody")
	require.ErrorIs(t, err, ErrNotFound)
}
