package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/infrastructure/postgres/generated"
	"github.com/iho/bankledger/internal/usecase"
)

// TransactionRepository implements usecase.TransactionRepository.
type TransactionRepository struct {
	queries *generated.Queries
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return newTransactionRepositoryWithDB(pool)
}

func newTransactionRepositoryWithDB(db generated.DBTX) *TransactionRepository {
	return &TransactionRepository{queries: generated.New(db)}
}

// Create appends a transaction record.
func (r *TransactionRepository) Create(ctx context.Context, tx usecase.DBTransaction, txn *domain.Transaction) error {
	queries, err := queriesFor(tx)
	if err != nil {
		return err
	}

	return queries.CreateTransaction(ctx, generated.CreateTransactionParams{
		TransactionID:   txn.ID,
		FromAccount:     txn.FromAccount,
		ToAccount:       txn.ToAccount,
		TransactionType: string(txn.Type),
		Amount:          decimalToNumeric(txn.Amount),
		Description:     txn.Description,
		Timestamp:       timeToPgTimestamptz(txn.Timestamp),
	})
}

// ListByAccount returns the newest transactions touching accountNumber.
func (r *TransactionRepository) ListByAccount(ctx context.Context, accountNumber string, limit int) ([]*domain.Transaction, error) {
	rows, err := r.queries.ListTransactionsByAccount(ctx, generated.ListTransactionsByAccountParams{
		AccountNumber: accountNumber,
		RowLimit:      int32(limit),
	})
	if err != nil {
		return nil, err
	}

	txns := make([]*domain.Transaction, 0, len(rows))
	for _, row := range rows {
		txns = append(txns, rowToTransaction(row))
	}

	return txns, nil
}

func rowToTransaction(row generated.Transaction) *domain.Transaction {
	return &domain.Transaction{
		ID:          row.TransactionID,
		Type:        domain.TransactionType(row.TransactionType),
		Description: row.Description,
		FromAccount: row.FromAccount,
		ToAccount:   row.ToAccount,
		Amount:      numericToDecimal(row.Amount),
		Timestamp:   row.Timestamp.Time,
	}
}
