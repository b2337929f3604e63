package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFinanceEntryTypeFolding(t *testing.T) {
	ctx := context.Background()
	fin := NewFinanceService(newTestStore(t))

	for _, in := range []string{"income", "Credit", "received"} {
		entry, err := fin.Add(ctx, "Acme", dec("100"), in, "")
		require.NoError(t, err)
		assert.Equal(t, "income", entry.Type, "input %q", in)
	}
	entry, err := fin.Add(ctx, "Acme", dec("40"), "rent", "")
	require.NoError(t, err)
	assert.Equal(t, "expense", entry.Type)

	entries, err := fin.List(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 4)
}

func TestTaskPendingCount(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	tasks := NewTaskService(st)

	_, err := tasks.Add(ctx, "call supplier", "Amit")
	require.NoError(t, err)
	_, err = tasks.Add(ctx, "clean shelf", "")
	require.NoError(t, err)

	n, err := tasks.PendingCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	list, err := tasks.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "pending", list[0].Status)
	assert.Equal(t, "call supplier", list[0].Name)
}
