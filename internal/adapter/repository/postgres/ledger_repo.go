package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/infrastructure/postgres/generated"
)

// LedgerRepository implements usecase.LedgerRepository.
type LedgerRepository struct {
	queries *generated.Queries
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return newLedgerRepositoryWithDB(pool)
}

func newLedgerRepositoryWithDB(db generated.DBTX) *LedgerRepository {
	return &LedgerRepository{queries: generated.New(db)}
}

// Totals aggregates balances and flows in a single statement, so every figure
// comes from the same snapshot.
func (r *LedgerRepository) Totals(ctx context.Context) (*domain.LedgerTotals, error) {
	row, err := r.queries.GetLedgerTotals(ctx)
	if err != nil {
		return nil, err
	}

	return &domain.LedgerTotals{
		TotalBalance:     numericToDecimal(row.TotalBalance),
		TotalOpening:     numericToDecimal(row.TotalOpening),
		TotalDeposits:    numericToDecimal(row.TotalDeposits),
		TotalWithdrawals: numericToDecimal(row.TotalWithdrawals),
		NegativeAccounts: row.NegativeAccounts,
	}, nil
}

// AccountFlows returns recorded inflows and outflows per account.
func (r *LedgerRepository) AccountFlows(ctx context.Context) ([]*domain.AccountFlows, error) {
	rows, err := r.queries.GetAccountFlows(ctx)
	if err != nil {
		return nil, err
	}

	flows := make([]*domain.AccountFlows, 0, len(rows))
	for _, row := range rows {
		flows = append(flows, &domain.AccountFlows{
			AccountNumber:  row.AccountNumber,
			Balance:        numericToDecimal(row.Balance),
			OpeningBalance: numericToDecimal(row.OpeningBalance),
			TotalIn:        numericToDecimal(row.TotalIn),
			TotalOut:       numericToDecimal(row.TotalOut),
		})
	}

	return flows, nil
}
