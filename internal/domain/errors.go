package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// Account errors
	ErrAccountNotFound            = errors.New("account not found")
	ErrSourceAccountNotFound      = fmt.Errorf("source %w", ErrAccountNotFound)
	ErrDestinationAccountNotFound = fmt.Errorf("destination %w", ErrAccountNotFound)
	ErrDuplicateAccount           = errors.New("account number already exists")
	ErrInsufficientFunds          = errors.New("insufficient funds")

	// Transaction errors
	ErrSameAccount             = errors.New("cannot transfer to same account")
	ErrInvalidAmount           = errors.New("amount must be positive")
	ErrInvalidTransactionType  = errors.New("invalid transaction type")
	ErrInvalidTransactionShape = errors.New("transaction accounts do not match its type")

	// ErrOperationFailed wraps unexpected store failures.
	ErrOperationFailed = errors.New("ledger operation failed")
)

// InsufficientFundsError is returned when a debit would take an account below zero.
// It carries the balance observed under lock so callers can report it.
type InsufficientFundsError struct {
	AccountNumber string
	Balance       decimal.Decimal
	Requested     decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds in account %s: balance %s, requested %s",
		e.AccountNumber, e.Balance.StringFixed(2), e.Requested.StringFixed(2))
}

// Is makes errors.Is(err, ErrInsufficientFunds) hold.
func (e *InsufficientFundsError) Is(target error) bool {
	return target == ErrInsufficientFunds
}

// IsBusinessError reports whether err is an expected ledger outcome rather than a store failure.
func IsBusinessError(err error) bool {
	for _, target := range []error{
		ErrAccountNotFound,
		ErrDuplicateAccount,
		ErrInsufficientFunds,
		ErrSameAccount,
		ErrInvalidAmount,
		ErrInvalidTransactionType,
		ErrInvalidTransactionShape,
		ErrInvalidAccountNumber,
		ErrInvalidAccountHolder,
		ErrInvalidDescription,
		ErrAmountTooLarge,
		ErrAmountPrecision,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
