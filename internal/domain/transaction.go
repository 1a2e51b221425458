package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a ledger record.
type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "DEPOSIT"
	TransactionTypeWithdrawal TransactionType = "WITHDRAWAL"
	TransactionTypeTransfer   TransactionType = "TRANSFER"
)

// Default descriptions used when the caller does not supply one.
const (
	DefaultDepositDescription    = "Deposit"
	DefaultWithdrawalDescription = "Withdrawal"
	DefaultTransferDescription   = "Transfer"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionTypeDeposit, TransactionTypeWithdrawal, TransactionTypeTransfer:
		return true
	}
	return false
}

// DefaultDescription returns the description recorded when none is given.
func (t TransactionType) DefaultDescription() string {
	switch t {
	case TransactionTypeDeposit:
		return DefaultDepositDescription
	case TransactionTypeWithdrawal:
		return DefaultWithdrawalDescription
	case TransactionTypeTransfer:
		return DefaultTransferDescription
	}
	return ""
}

// Transaction is an immutable, append-only ledger record.
// FromAccount is nil for deposits, ToAccount is nil for withdrawals.
type Transaction struct {
	Timestamp   time.Time
	ID          string
	Type        TransactionType
	Description string
	FromAccount *string
	ToAccount   *string
	Amount      decimal.Decimal
}

// NewDeposit builds a DEPOSIT record crediting accountNumber.
func NewDeposit(id, accountNumber string, amount decimal.Decimal, description string, at time.Time) *Transaction {
	return newTransaction(id, TransactionTypeDeposit, nil, &accountNumber, amount, description, at)
}

// NewWithdrawal builds a WITHDRAWAL record debiting accountNumber.
func NewWithdrawal(id, accountNumber string, amount decimal.Decimal, description string, at time.Time) *Transaction {
	return newTransaction(id, TransactionTypeWithdrawal, &accountNumber, nil, amount, description, at)
}

// NewTransfer builds a TRANSFER record moving amount from one account to another.
func NewTransfer(id, fromAccount, toAccount string, amount decimal.Decimal, description string, at time.Time) *Transaction {
	return newTransaction(id, TransactionTypeTransfer, &fromAccount, &toAccount, amount, description, at)
}

func newTransaction(id string, typ TransactionType, from, to *string, amount decimal.Decimal, description string, at time.Time) *Transaction {
	if description == "" {
		description = typ.DefaultDescription()
	}

	return &Transaction{
		ID:          id,
		Type:        typ,
		FromAccount: from,
		ToAccount:   to,
		Amount:      amount,
		Description: description,
		Timestamp:   at,
	}
}

// Validate checks that the record is well formed for its type.
func (t *Transaction) Validate() error {
	if !t.Type.Valid() {
		return ErrInvalidTransactionType
	}

	if t.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	switch t.Type {
	case TransactionTypeDeposit:
		if t.FromAccount != nil || t.ToAccount == nil {
			return ErrInvalidTransactionShape
		}
	case TransactionTypeWithdrawal:
		if t.FromAccount == nil || t.ToAccount != nil {
			return ErrInvalidTransactionShape
		}
	case TransactionTypeTransfer:
		if t.FromAccount == nil || t.ToAccount == nil {
			return ErrInvalidTransactionShape
		}
		if *t.FromAccount == *t.ToAccount {
			return ErrSameAccount
		}
	}

	return nil
}

// Involves reports whether accountNumber is the source or destination of t.
func (t *Transaction) Involves(accountNumber string) bool {
	return (t.FromAccount != nil && *t.FromAccount == accountNumber) ||
		(t.ToAccount != nil && *t.ToAccount == accountNumber)
}
