package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/iho/bankledger/internal/domain"
)

// Option configures a use case.
type Option func(*options)

type options struct {
	metrics MetricsRecorder
	now     func() time.Time
}

// WithMetrics reports every engine operation to m.
func WithMetrics(m MetricsRecorder) Option {
	return func(o *options) {
		if m != nil {
			o.metrics = m
		}
	}
}

// WithClock overrides the time source used for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{
		metrics: noopMetrics{},
		// Postgres keeps microseconds; truncating keeps returned records equal to stored ones.
		now: func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// runInTransaction executes fn inside one database transaction bounded by
// DefaultTransactionTimeout. Any error from fn rolls the whole transaction back.
func runInTransaction(ctx context.Context, txManager TransactionManager, fn func(ctx context.Context, tx DBTransaction) error) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := txManager.Begin(ctx)
	if err != nil {
		return storeError("begin transaction", err)
	}
	// Rollback after a successful commit is a no-op. It must run even when ctx is done.
	defer tx.Rollback(context.WithoutCancel(ctx))

	if err := fn(ctx, tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return storeError("commit transaction", err)
	}

	return nil
}

// storeError passes ledger outcomes through and wraps everything else as ErrOperationFailed.
func storeError(op string, err error) error {
	if err == nil || domain.IsBusinessError(err) {
		return err
	}

	return fmt.Errorf("%s: %w: %w", op, domain.ErrOperationFailed, err)
}
