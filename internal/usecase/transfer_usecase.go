package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bankledger/internal/domain"
)

// TransferUseCase handles transfer business logic.
type TransferUseCase struct {
	txManager       TransactionManager
	accountRepo     AccountRepository
	transactionRepo TransactionRepository
	outboxRepo      OutboxRepository
	idGen           IDGenerator
	opts            options
}

// NewTransferUseCase creates a new TransferUseCase.
func NewTransferUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	transactionRepo TransactionRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	opts ...Option,
) *TransferUseCase {
	return &TransferUseCase{
		txManager:       txManager,
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		outboxRepo:      outboxRepo,
		idGen:           idGen,
		opts:            buildOptions(opts),
	}
}

// TransferInput represents input for a transfer.
type TransferInput struct {
	FromAccount string
	ToAccount   string
	Amount      decimal.Decimal
	Description string
}

// TransferResult is the committed outcome of a transfer.
type TransferResult struct {
	Transaction *domain.Transaction
	FromBalance decimal.Decimal
	ToBalance   decimal.Decimal
}

// Transfer moves Amount between two distinct accounts atomically.
func (uc *TransferUseCase) Transfer(ctx context.Context, input TransferInput) (*TransferResult, error) {
	start := time.Now()
	result, err := uc.transfer(ctx, input)
	uc.opts.metrics.RecordOperation(OperationTransfer, input.Amount, time.Since(start), err)

	return result, err
}

func (uc *TransferUseCase) transfer(ctx context.Context, input TransferInput) (*TransferResult, error) {
	// 0. Validate inputs before starting transaction
	if err := domain.ValidateAccountNumber(input.FromAccount); err != nil {
		return nil, err
	}

	if err := domain.ValidateAccountNumber(input.ToAccount); err != nil {
		return nil, err
	}

	if input.FromAccount == input.ToAccount {
		return nil, domain.ErrSameAccount
	}

	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	if err := domain.ValidateDescription(input.Description); err != nil {
		return nil, err
	}

	// 1. Sort account numbers (DEADLOCK PREVENTION)
	accountNumbers := []string{input.FromAccount, input.ToAccount}
	sort.Strings(accountNumbers)

	var result *TransferResult

	err := runInTransaction(ctx, uc.txManager, func(ctx context.Context, tx DBTransaction) error {
		// 2. Lock both accounts in sorted order
		accounts, err := uc.accountRepo.GetByNumbersForUpdate(ctx, tx, accountNumbers)
		if err != nil {
			return storeError("lock accounts", err)
		}

		accountMap := buildAccountMap(accounts)

		fromAccount := accountMap[input.FromAccount]
		if fromAccount == nil {
			return domain.ErrSourceAccountNotFound
		}

		toAccount := accountMap[input.ToAccount]
		if toAccount == nil {
			return domain.ErrDestinationAccountNotFound
		}

		// 3. Validate debit and credit
		if err := fromAccount.ValidateDebit(input.Amount); err != nil {
			return err
		}

		fromNewBalance := fromAccount.ApplyDebit(input.Amount)
		toNewBalance := toAccount.ApplyCredit(input.Amount)

		if err := domain.ValidateBalance(toNewBalance); err != nil {
			return err
		}

		// 4. Write balances and the record
		now := uc.opts.now()

		if err := uc.accountRepo.UpdateBalance(ctx, tx, fromAccount.AccountNumber, fromNewBalance, now); err != nil {
			return storeError("update source balance", err)
		}

		if err := uc.accountRepo.UpdateBalance(ctx, tx, toAccount.AccountNumber, toNewBalance, now); err != nil {
			return storeError("update destination balance", err)
		}

		txn := domain.NewTransfer(uc.idGen.Generate(), fromAccount.AccountNumber, toAccount.AccountNumber, input.Amount, input.Description, now)
		if err := txn.Validate(); err != nil {
			return err
		}

		if err := uc.transactionRepo.Create(ctx, tx, txn); err != nil {
			return storeError("record transfer", err)
		}

		event := domain.NewTransactionEvent(uc.idGen.Generate(), txn, map[string]string{
			fromAccount.AccountNumber: fromNewBalance.StringFixed(domain.AmountScale),
			toAccount.AccountNumber:   toNewBalance.StringFixed(domain.AmountScale),
		})
		if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
			return storeError("record transfer event", err)
		}

		result = &TransferResult{
			Transaction: txn,
			FromBalance: fromNewBalance,
			ToBalance:   toNewBalance,
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func buildAccountMap(accounts []*domain.Account) map[string]*domain.Account {
	m := make(map[string]*domain.Account, len(accounts))
	for _, a := range accounts {
		m[a.AccountNumber] = a
	}

	return m
}
