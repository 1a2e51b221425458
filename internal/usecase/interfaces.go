package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bankledger/internal/domain"
)

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	Create(ctx context.Context, tx DBTransaction, account *domain.Account) error
	GetByNumber(ctx context.Context, accountNumber string) (*domain.Account, error)
	GetByNumberForUpdate(ctx context.Context, tx DBTransaction, accountNumber string) (*domain.Account, error)
	// GetByNumbersForUpdate locks every existing row among accountNumbers in ascending
	// account_number order and returns them in that order. Missing accounts are omitted.
	GetByNumbersForUpdate(ctx context.Context, tx DBTransaction, accountNumbers []string) ([]*domain.Account, error)
	UpdateBalance(ctx context.Context, tx DBTransaction, accountNumber string, balance decimal.Decimal, updatedAt time.Time) error
	List(ctx context.Context) ([]*domain.Account, error)
}

// TransactionRepository defines data access for the append-only transaction log.
type TransactionRepository interface {
	Create(ctx context.Context, tx DBTransaction, txn *domain.Transaction) error
	// ListByAccount returns the newest transactions touching accountNumber, newest first.
	ListByAccount(ctx context.Context, accountNumber string, limit int) ([]*domain.Transaction, error)
}

// LedgerRepository defines data access for ledger-wide checks.
type LedgerRepository interface {
	Totals(ctx context.Context) (*domain.LedgerTotals, error)
	AccountFlows(ctx context.Context) ([]*domain.AccountFlows, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx DBTransaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// DBTransaction represents a database transaction.
type DBTransaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (DBTransaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// IdempotencyProcessingMarker is the value CheckAndSet stores under a key while
// the request that claimed it is still in flight.
const IdempotencyProcessingMarker = "processing"

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Delete drops a key so a failed request can be retried with it.
	Delete(ctx context.Context, key string) error
}

// MetricsRecorder observes completed engine operations.
type MetricsRecorder interface {
	RecordOperation(operation string, amount decimal.Decimal, duration time.Duration, err error)
}

type noopMetrics struct{}

func (noopMetrics) RecordOperation(string, decimal.Decimal, time.Duration, error) {}
