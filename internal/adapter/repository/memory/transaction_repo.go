package memory

import (
	"context"
	"sort"

	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/usecase"
)

// TransactionRepository implements usecase.TransactionRepository.
type TransactionRepository struct {
	store *Store
}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(store *Store) *TransactionRepository {
	return &TransactionRepository{store: store}
}

// Create buffers a transaction record until commit.
func (r *TransactionRepository) Create(_ context.Context, tx usecase.DBTransaction, txn *domain.Transaction) error {
	t, err := asTx(tx, r.store)
	if err != nil {
		return err
	}

	if err := txn.Validate(); err != nil {
		return err
	}

	for _, accountNumber := range []*string{txn.FromAccount, txn.ToAccount} {
		if accountNumber == nil {
			continue
		}
		if _, ok := t.view(*accountNumber); !ok {
			return domain.ErrAccountNotFound
		}
	}

	copyTxn := *txn
	t.transactions = append(t.transactions, &copyTxn)

	return nil
}

// ListByAccount returns committed transactions touching accountNumber, newest first.
func (r *TransactionRepository) ListByAccount(_ context.Context, accountNumber string, limit int) ([]*domain.Transaction, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	var list []*domain.Transaction
	for _, txn := range s.transactions {
		if txn.Involves(accountNumber) {
			copyTxn := *txn
			list = append(list, &copyTxn)
		}
	}

	sort.Slice(list, func(i, j int) bool {
		if !list[i].Timestamp.Equal(list[j].Timestamp) {
			return list[i].Timestamp.After(list[j].Timestamp)
		}
		return list[i].ID > list[j].ID
	})

	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}

	return list, nil
}
