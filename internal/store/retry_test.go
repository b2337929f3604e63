package store

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// flakyStore fails a fixed number of times before succeeding.
type flakyStore struct {
	failures int
	calls    int
	err      error
}

func (f *flakyStore) attempt() error {
	f.calls++
	if f.calls <= f.failures {
		return f.err
	}
	return nil
}

func (f *flakyStore) EnsureCollection(context.Context, string, []string) error { return f.attempt() }
func (f *flakyStore) AppendRow(context.Context, string, []string) error        { return f.attempt() }
func (f *flakyStore) ReadAll(context.Context, string) ([]Record, error) {
	return nil, f.attempt()
}
func (f *flakyStore) UpdateCell(context.Context, string, int, string, string) error {
	return f.attempt()
}

func TestRetryEventuallySucceeds(t *testing.T) {
	inner := &flakyStore{failures: 2, err: errors.New("rate limited")}
	st := WithRetry(inner, 3, 0, zap.NewNop())

	require.NoError(t, st.AppendRow(context.Background(), "T", []string{"x"}))
	assert.Equal(t, 3, inner.calls)
}

func TestRetryGivesUpAfterAttempts(t *testing.T) {
	boom := errors.New("down")
	inner := &flakyStore{failures: 10, err: boom}
	st := WithRetry(inner, 3, 0, zap.NewNop())

	err := st.AppendRow(context.Background(), "T", []string{"x"})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 3, inner.calls)
}

func TestRetrySkipsDomainMisses(t *testing.T) {
	inner := &flakyStore{failures: 10, err: fmt.Errorf("read T: %w", ErrCollectionNotFound)}
	st := WithRetry(inner, 3, 0, zap.NewNop())

	_, err := st.ReadAll(context.Background(), "T")
	require.ErrorIs(t, err, ErrCollectionNotFound)
	assert.Equal(t, 1, inner.calls, "a missing collection is not transient")
}

func TestRetryHonorsCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	inner := &flakyStore{failures: 10, err: errors.New("down")}
	st := WithRetry(inner, 3, 0, zap.NewNop())

	err := st.AppendRow(ctx, "T", []string{"x"})
	require.Error(t, err)
	assert.Equal(t, 1, inner.calls)
}

func TestFindByKey(t *testing.T) {
	records := []Record{
		{Row: 1, Fields: map[string]string{"Product": "Pen"}},
		{Row: 2, Fields: map[string]string{"Product": "  Notebook "}},
	}

	rec, found := FindByKey(records, "Product", "pen")
	require.True(t, found)
	assert.Equal(t, 1, rec.Row)

	rec, found = FindByKey(records, "Product", "notebook")
	require.True(t, found)
	assert.Equal(t, 2, rec.Row)

	_, found = FindByKey(records, "Product", "Ghost")
	assert.False(t, found)
}
