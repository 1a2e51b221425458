package memory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/iho/bankledger/internal/domain"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	store *Store
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(store *Store) *LedgerRepository {
	return &LedgerRepository{store: store}
}

// Totals aggregates the committed ledger under one read lock.
func (r *LedgerRepository) Totals(context.Context) (*domain.LedgerTotals, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	totals := &domain.LedgerTotals{
		TotalBalance:     decimal.Zero,
		TotalOpening:     decimal.Zero,
		TotalDeposits:    decimal.Zero,
		TotalWithdrawals: decimal.Zero,
	}

	for _, acc := range s.accounts {
		totals.TotalBalance = totals.TotalBalance.Add(acc.Balance)
		totals.TotalOpening = totals.TotalOpening.Add(acc.OpeningBalance)
		if acc.Balance.IsNegative() {
			totals.NegativeAccounts++
		}
	}

	for _, txn := range s.transactions {
		switch txn.Type {
		case domain.TransactionTypeDeposit:
			totals.TotalDeposits = totals.TotalDeposits.Add(txn.Amount)
		case domain.TransactionTypeWithdrawal:
			totals.TotalWithdrawals = totals.TotalWithdrawals.Add(txn.Amount)
		}
	}

	return totals, nil
}

// AccountFlows sums incoming and outgoing amounts per account under one read lock.
func (r *LedgerRepository) AccountFlows(context.Context) ([]*domain.AccountFlows, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	byNumber := make(map[string]*domain.AccountFlows, len(s.accounts))
	flows := make([]*domain.AccountFlows, 0, len(s.accounts))

	for _, acc := range s.accounts {
		f := &domain.AccountFlows{
			AccountNumber:  acc.AccountNumber,
			Balance:        acc.Balance,
			OpeningBalance: acc.OpeningBalance,
			TotalIn:        decimal.Zero,
			TotalOut:       decimal.Zero,
		}
		byNumber[acc.AccountNumber] = f
		flows = append(flows, f)
	}

	for _, txn := range s.transactions {
		if txn.ToAccount != nil {
			if f, ok := byNumber[*txn.ToAccount]; ok {
				f.TotalIn = f.TotalIn.Add(txn.Amount)
			}
		}
		if txn.FromAccount != nil {
			if f, ok := byNumber[*txn.FromAccount]; ok {
				f.TotalOut = f.TotalOut.Add(txn.Amount)
			}
		}
	}

	sort.Slice(flows, func(i, j int) bool {
		return flows[i].AccountNumber < flows[j].AccountNumber
	})

	return flows, nil
}
