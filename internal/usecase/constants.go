package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking rows
	DefaultTransactionTimeout = 10 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour
)

// Operation names reported to MetricsRecorder.
const (
	OperationCreateAccount = "create_account"
	OperationDeposit       = "deposit"
	OperationWithdraw      = "withdraw"
	OperationTransfer      = "transfer"
)
