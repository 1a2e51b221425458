package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrInconsistentLedger is returned when balances do not match the transaction log.
	ErrInconsistentLedger = errors.New("ledger is inconsistent: balances do not match recorded transactions")
)

// LedgerUseCase handles ledger-wide operations.
type LedgerUseCase struct {
	ledgerRepo LedgerRepository
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(ledgerRepo LedgerRepository) *LedgerUseCase {
	return &LedgerUseCase{
		ledgerRepo: ledgerRepo,
	}
}

// ConsistencyReport is the outcome of a conservation check.
type ConsistencyReport struct {
	TotalBalance     decimal.Decimal
	ExpectedBalance  decimal.Decimal
	TotalOpening     decimal.Decimal
	TotalDeposits    decimal.Decimal
	TotalWithdrawals decimal.Decimal
	NegativeAccounts int64
	Consistent       bool
	CheckedAt        time.Time
}

// CheckConsistency verifies that the sum of balances equals opening balances plus
// deposits minus withdrawals, and that no balance is negative. The report is returned
// together with ErrInconsistentLedger when the check fails.
func (uc *LedgerUseCase) CheckConsistency(ctx context.Context) (*ConsistencyReport, error) {
	totals, err := uc.ledgerRepo.Totals(ctx)
	if err != nil {
		return nil, storeError("ledger totals", err)
	}

	report := &ConsistencyReport{
		TotalBalance:     totals.TotalBalance,
		ExpectedBalance:  totals.ExpectedBalance(),
		TotalOpening:     totals.TotalOpening,
		TotalDeposits:    totals.TotalDeposits,
		TotalWithdrawals: totals.TotalWithdrawals,
		NegativeAccounts: totals.NegativeAccounts,
		Consistent:       totals.Consistent(),
		CheckedAt:        time.Now().UTC(),
	}

	if !report.Consistent {
		return report, ErrInconsistentLedger
	}

	return report, nil
}
