package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account represents a customer account that holds a non-negative balance.
type Account struct {
	AccountNumber  string
	AccountHolder  string
	Balance        decimal.Decimal
	OpeningBalance decimal.Decimal
	Version        int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ValidateDebit checks if account can be debited by amount.
func (a *Account) ValidateDebit(amount decimal.Decimal) error {
	if a.Balance.LessThan(amount) {
		return &InsufficientFundsError{
			AccountNumber: a.AccountNumber,
			Balance:       a.Balance,
			Requested:     amount,
		}
	}
	return nil
}

// ApplyDebit returns new balance after debit.
func (a *Account) ApplyDebit(amount decimal.Decimal) decimal.Decimal {
	return a.Balance.Sub(amount)
}

// ApplyCredit returns new balance after credit.
func (a *Account) ApplyCredit(amount decimal.Decimal) decimal.Decimal {
	return a.Balance.Add(amount)
}
