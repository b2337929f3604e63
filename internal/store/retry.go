package store

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// retryStore decorates a Store with bounded retry and backoff. The
// remote store is occasionally unreachable or rate-limited; a failed
// call is retried a fixed number of times and then surfaced to the
// caller. It is never retried indefinitely.
type retryStore struct {
	inner    Store
	attempts int
	backoff  time.Duration
	logger   *zap.Logger
}

// WithRetry wraps st so every operation is attempted up to attempts
// times with linear backoff between tries.
func WithRetry(st Store, attempts int, backoff time.Duration, logger *zap.Logger) Store {
	if attempts < 1 {
		attempts = 1
	}
	return &retryStore{inner: st, attempts: attempts, backoff: backoff, logger: logger}
}

func (r *retryStore) do(ctx context.Context, op string, fn func() error) error {
	var err error
	for attempt := 1; attempt <= r.attempts; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		// Domain-level misses are not transient; retrying cannot help.
		if errors.Is(err, ErrCollectionNotFound) || errors.Is(err, ErrRowNotFound) || ctx.Err() != nil {
			return err
		}
		if attempt < r.attempts {
			r.logger.Warn("store call failed, retrying",
				zap.String("op", op),
				zap.Int("attempt", attempt),
				zap.Error(err))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * r.backoff):
			}
		}
	}
	return err
}

func (r *retryStore) EnsureCollection(ctx context.Context, name string, header []string) error {
	return r.do(ctx, "ensure "+name, func() error {
		return r.inner.EnsureCollection(ctx, name, header)
	})
}

func (r *retryStore) AppendRow(ctx context.Context, collection string, row []string) error {
	return r.do(ctx, "append "+collection, func() error {
		return r.inner.AppendRow(ctx, collection, row)
	})
}

func (r *retryStore) ReadAll(ctx context.Context, collection string) ([]Record, error) {
	var records []Record
	err := r.do(ctx, "read "+collection, func() error {
		var err error
		records, err = r.inner.ReadAll(ctx, collection)
		return err
	})
	return records, err
}

func (r *retryStore) UpdateCell(ctx context.Context, collection string, row int, column string, value string) error {
	return r.do(ctx, "update "+collection, func() error {
		return r.inner.UpdateCell(ctx, collection, row, column, value)
	})
}
