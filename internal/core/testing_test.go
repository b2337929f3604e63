package core

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"shop-agent/internal/store"
	"shop-agent/internal/store/memstore"
)

// newTestStore returns an empty in-memory store with all collections
// created.
func newTestStore(t *testing.T) store.Store {
	t.Helper()
	st := memstore.New()
	require.NoError(t, store.EnsureAll(context.Background(), st))
	return st
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

var testLogger = zap.NewNop()
