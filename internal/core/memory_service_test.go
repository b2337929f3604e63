package core

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRecentFiltersAndLimits(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryService(newTestStore(t))

	for i := 0; i < 10; i++ {
		require.NoError(t, mem.Append(ctx, "u1", "user", fmt.Sprintf("message %d", i)))
	}
	require.NoError(t, mem.Append(ctx, "u2", "user", "other user"))

	turns, err := mem.Recent(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, turns, DefaultMemoryTurns)
	// Oldest first, ending with the latest turn.
	assert.Equal(t, "message 4", turns[0].Text)
	assert.Equal(t, "message 9", turns[len(turns)-1].Text)
	for _, turn := range turns {
		assert.Equal(t, "u1", turn.UserID)
	}
}

func TestMemoryRecentEmpty(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryService(newTestStore(t))

	turns, err := mem.Recent(ctx, "nobody", 6)
	require.NoError(t, err)
	assert.Empty(t, turns)
}
