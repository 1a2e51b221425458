package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/usecase"
)

// AccountRepository implements usecase.AccountRepository.
type AccountRepository struct {
	store *Store
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(store *Store) *AccountRepository {
	return &AccountRepository{store: store}
}

// Create buffers a new account. The account number lock is taken so concurrent
// creates of the same number serialize and the loser sees ErrDuplicateAccount.
func (r *AccountRepository) Create(ctx context.Context, tx usecase.DBTransaction, account *domain.Account) error {
	t, err := asTx(tx, r.store)
	if err != nil {
		return err
	}

	if err := t.lock(ctx, account.AccountNumber); err != nil {
		return err
	}

	if _, exists := t.view(account.AccountNumber); exists {
		return domain.ErrDuplicateAccount
	}

	copyAcc := *account
	t.created[account.AccountNumber] = &copyAcc
	t.createdOrder = append(t.createdOrder, account.AccountNumber)

	return nil
}

// GetByNumber retrieves a committed account.
func (r *AccountRepository) GetByNumber(_ context.Context, accountNumber string) (*domain.Account, error) {
	acc, ok := r.store.committedAccount(accountNumber)
	if !ok {
		return nil, domain.ErrAccountNotFound
	}

	return acc, nil
}

// GetByNumberForUpdate locks and retrieves an account.
func (r *AccountRepository) GetByNumberForUpdate(ctx context.Context, tx usecase.DBTransaction, accountNumber string) (*domain.Account, error) {
	t, err := asTx(tx, r.store)
	if err != nil {
		return nil, err
	}

	if err := t.lock(ctx, accountNumber); err != nil {
		return nil, err
	}

	acc, ok := t.view(accountNumber)
	if !ok {
		return nil, domain.ErrAccountNotFound
	}

	return acc, nil
}

// GetByNumbersForUpdate locks accounts in ascending order and returns the ones that exist.
func (r *AccountRepository) GetByNumbersForUpdate(ctx context.Context, tx usecase.DBTransaction, accountNumbers []string) ([]*domain.Account, error) {
	t, err := asTx(tx, r.store)
	if err != nil {
		return nil, err
	}

	sorted := append([]string(nil), accountNumbers...)
	sort.Strings(sorted)

	accounts := make([]*domain.Account, 0, len(sorted))
	for i, accountNumber := range sorted {
		if i > 0 && sorted[i-1] == accountNumber {
			continue
		}

		if err := t.lock(ctx, accountNumber); err != nil {
			return nil, err
		}

		if acc, ok := t.view(accountNumber); ok {
			accounts = append(accounts, acc)
		}
	}

	return accounts, nil
}

// UpdateBalance buffers a balance write. The account must be locked by tx.
func (r *AccountRepository) UpdateBalance(_ context.Context, tx usecase.DBTransaction, accountNumber string, balance decimal.Decimal, updatedAt time.Time) error {
	t, err := asTx(tx, r.store)
	if err != nil {
		return err
	}

	if t.held[accountNumber] == nil {
		return domain.ErrAccountNotFound
	}

	if _, ok := t.view(accountNumber); !ok {
		return domain.ErrAccountNotFound
	}

	if balance.IsNegative() {
		return domain.ErrInsufficientFunds
	}

	t.balances[accountNumber] = balanceWrite{balance: balance, updatedAt: updatedAt}

	return nil
}

// List returns every committed account ordered by creation time.
func (r *AccountRepository) List(context.Context) ([]*domain.Account, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]*domain.Account, 0, len(s.accounts))
	for _, acc := range s.accounts {
		copyAcc := *acc
		list = append(list, &copyAcc)
	}

	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		}
		return list[i].AccountNumber < list[j].AccountNumber
	})

	return list, nil
}
