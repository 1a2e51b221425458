package domain

import "github.com/shopspring/decimal"

// LedgerTotals is a single-snapshot aggregate of the whole ledger.
type LedgerTotals struct {
	TotalBalance     decimal.Decimal
	TotalOpening     decimal.Decimal
	TotalDeposits    decimal.Decimal
	TotalWithdrawals decimal.Decimal
	NegativeAccounts int64
}

// ExpectedBalance is what the sum of balances must equal if money was conserved.
func (t *LedgerTotals) ExpectedBalance() decimal.Decimal {
	return t.TotalOpening.Add(t.TotalDeposits).Sub(t.TotalWithdrawals)
}

// Consistent reports whether balances match recorded flows and none is negative.
func (t *LedgerTotals) Consistent() bool {
	return t.NegativeAccounts == 0 && t.TotalBalance.Equal(t.ExpectedBalance())
}

// AccountFlows holds the recorded money flows of one account.
type AccountFlows struct {
	AccountNumber  string
	Balance        decimal.Decimal
	OpeningBalance decimal.Decimal
	TotalIn        decimal.Decimal
	TotalOut       decimal.Decimal
}

// CalculatedBalance derives the balance from the opening balance and the transaction log.
func (f *AccountFlows) CalculatedBalance() decimal.Decimal {
	return f.OpeningBalance.Add(f.TotalIn).Sub(f.TotalOut)
}
