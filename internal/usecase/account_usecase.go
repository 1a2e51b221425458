package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bankledger/internal/domain"
)

// AccountUseCase handles account creation and account queries.
type AccountUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	outboxRepo  OutboxRepository
	idGen       IDGenerator
	opts        options
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	opts ...Option,
) *AccountUseCase {
	return &AccountUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		outboxRepo:  outboxRepo,
		idGen:       idGen,
		opts:        buildOptions(opts),
	}
}

// CreateAccountInput represents input for creating an account.
type CreateAccountInput struct {
	AccountNumber  string
	AccountHolder  string
	InitialBalance decimal.Decimal
}

// CreateAccount opens a new account with a non-negative opening balance.
// No transaction record is written; the opening balance is kept on the account.
func (uc *AccountUseCase) CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	start := time.Now()
	account, err := uc.createAccount(ctx, input)
	uc.opts.metrics.RecordOperation(OperationCreateAccount, input.InitialBalance, time.Since(start), err)

	return account, err
}

func (uc *AccountUseCase) createAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	if err := domain.ValidateAccountNumber(input.AccountNumber); err != nil {
		return nil, err
	}

	if err := domain.ValidateAccountHolder(input.AccountHolder); err != nil {
		return nil, err
	}

	if err := domain.ValidateInitialBalance(input.InitialBalance); err != nil {
		return nil, err
	}

	now := uc.opts.now()
	account := &domain.Account{
		AccountNumber:  input.AccountNumber,
		AccountHolder:  strings.TrimSpace(input.AccountHolder),
		Balance:        input.InitialBalance,
		OpeningBalance: input.InitialBalance,
		Version:        0,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err := runInTransaction(ctx, uc.txManager, func(ctx context.Context, tx DBTransaction) error {
		if err := uc.accountRepo.Create(ctx, tx, account); err != nil {
			return storeError("create account", err)
		}

		event := domain.NewAccountCreatedEvent(uc.idGen.Generate(), account)
		if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
			return storeError("record account event", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return account, nil
}

// GetAccount retrieves an account by its number.
func (uc *AccountUseCase) GetAccount(ctx context.Context, accountNumber string) (*domain.Account, error) {
	account, err := uc.accountRepo.GetByNumber(ctx, accountNumber)
	if err != nil {
		return nil, storeError("get account", err)
	}

	return account, nil
}

// ListAccounts returns every account.
func (uc *AccountUseCase) ListAccounts(ctx context.Context) ([]*domain.Account, error) {
	accounts, err := uc.accountRepo.List(ctx)
	if err != nil {
		return nil, storeError("list accounts", err)
	}

	if accounts == nil {
		accounts = []*domain.Account{}
	}

	return accounts, nil
}

// GetBalance returns the committed balance of an account.
func (uc *AccountUseCase) GetBalance(ctx context.Context, accountNumber string) (decimal.Decimal, error) {
	account, err := uc.GetAccount(ctx, accountNumber)
	if err != nil {
		return decimal.Zero, err
	}

	return account.Balance, nil
}
