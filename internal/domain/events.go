package domain

import "time"

// Event types
const (
	EventTypeAccountCreated      = "account.created"
	EventTypeDepositCompleted    = "deposit.completed"
	EventTypeWithdrawalCompleted = "withdrawal.completed"
	EventTypeTransferCompleted   = "transfer.completed"
)

// Aggregate types
const (
	AggregateTypeAccount = "account"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// NewAccountCreatedEvent builds the outbox event for a newly opened account.
func NewAccountCreatedEvent(id string, account *Account) *OutboxEvent {
	return &OutboxEvent{
		ID:            id,
		AggregateID:   account.AccountNumber,
		AggregateType: AggregateTypeAccount,
		EventType:     EventTypeAccountCreated,
		Payload: map[string]any{
			"account_number":  account.AccountNumber,
			"account_holder":  account.AccountHolder,
			"opening_balance": account.OpeningBalance.StringFixed(2),
		},
		CreatedAt: account.CreatedAt,
	}
}

// NewTransactionEvent builds the outbox event for a committed ledger record.
// The aggregate is the account whose balance was debited, or credited for deposits.
func NewTransactionEvent(id string, txn *Transaction, balances map[string]string) *OutboxEvent {
	payload := map[string]any{
		"transaction_id":   txn.ID,
		"transaction_type": string(txn.Type),
		"amount":           txn.Amount.StringFixed(2),
		"description":      txn.Description,
		"timestamp":        txn.Timestamp.Format(time.RFC3339Nano),
		"balances":         balances,
	}

	var aggregateID, eventType string
	switch txn.Type {
	case TransactionTypeDeposit:
		aggregateID = *txn.ToAccount
		eventType = EventTypeDepositCompleted
		payload["to_account"] = *txn.ToAccount
	case TransactionTypeWithdrawal:
		aggregateID = *txn.FromAccount
		eventType = EventTypeWithdrawalCompleted
		payload["from_account"] = *txn.FromAccount
	default:
		aggregateID = *txn.FromAccount
		eventType = EventTypeTransferCompleted
		payload["from_account"] = *txn.FromAccount
		payload["to_account"] = *txn.ToAccount
	}

	return &OutboxEvent{
		ID:            id,
		AggregateID:   aggregateID,
		AggregateType: AggregateTypeAccount,
		EventType:     eventType,
		Payload:       payload,
		CreatedAt:     txn.Timestamp,
	}
}
