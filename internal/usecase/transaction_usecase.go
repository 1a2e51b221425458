package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bankledger/internal/domain"
)

// TransactionUseCase handles single-account money movement and history.
type TransactionUseCase struct {
	txManager       TransactionManager
	accountRepo     AccountRepository
	transactionRepo TransactionRepository
	outboxRepo      OutboxRepository
	idGen           IDGenerator
	opts            options
}

// NewTransactionUseCase creates a new TransactionUseCase.
func NewTransactionUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	transactionRepo TransactionRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
	opts ...Option,
) *TransactionUseCase {
	return &TransactionUseCase{
		txManager:       txManager,
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		outboxRepo:      outboxRepo,
		idGen:           idGen,
		opts:            buildOptions(opts),
	}
}

// MovementInput represents input for a deposit or a withdrawal.
type MovementInput struct {
	AccountNumber string
	Amount        decimal.Decimal
	Description   string
}

// OperationResult is the committed outcome of a deposit or a withdrawal.
type OperationResult struct {
	Transaction *domain.Transaction
	Balance     decimal.Decimal
}

// Deposit credits an account and records a DEPOSIT in one database transaction.
func (uc *TransactionUseCase) Deposit(ctx context.Context, input MovementInput) (*OperationResult, error) {
	start := time.Now()
	result, err := uc.apply(ctx, domain.TransactionTypeDeposit, input)
	uc.opts.metrics.RecordOperation(OperationDeposit, input.Amount, time.Since(start), err)

	return result, err
}

// Withdraw debits an account and records a WITHDRAWAL in one database transaction.
// It fails with *domain.InsufficientFundsError when the locked balance is below the amount.
func (uc *TransactionUseCase) Withdraw(ctx context.Context, input MovementInput) (*OperationResult, error) {
	start := time.Now()
	result, err := uc.apply(ctx, domain.TransactionTypeWithdrawal, input)
	uc.opts.metrics.RecordOperation(OperationWithdraw, input.Amount, time.Since(start), err)

	return result, err
}

func (uc *TransactionUseCase) apply(ctx context.Context, typ domain.TransactionType, input MovementInput) (*OperationResult, error) {
	if err := validateMovement(input.AccountNumber, input.Amount, input.Description); err != nil {
		return nil, err
	}

	var result *OperationResult

	err := runInTransaction(ctx, uc.txManager, func(ctx context.Context, tx DBTransaction) error {
		account, err := uc.accountRepo.GetByNumberForUpdate(ctx, tx, input.AccountNumber)
		if err != nil {
			return storeError("lock account", err)
		}

		var newBalance decimal.Decimal
		if typ == domain.TransactionTypeWithdrawal {
			if err := account.ValidateDebit(input.Amount); err != nil {
				return err
			}
			newBalance = account.ApplyDebit(input.Amount)
		} else {
			newBalance = account.ApplyCredit(input.Amount)
			if err := domain.ValidateBalance(newBalance); err != nil {
				return err
			}
		}

		now := uc.opts.now()
		if err := uc.accountRepo.UpdateBalance(ctx, tx, account.AccountNumber, newBalance, now); err != nil {
			return storeError("update balance", err)
		}

		var txn *domain.Transaction
		if typ == domain.TransactionTypeWithdrawal {
			txn = domain.NewWithdrawal(uc.idGen.Generate(), account.AccountNumber, input.Amount, input.Description, now)
		} else {
			txn = domain.NewDeposit(uc.idGen.Generate(), account.AccountNumber, input.Amount, input.Description, now)
		}

		if err := uc.transactionRepo.Create(ctx, tx, txn); err != nil {
			return storeError("record transaction", err)
		}

		event := domain.NewTransactionEvent(uc.idGen.Generate(), txn, map[string]string{
			account.AccountNumber: newBalance.StringFixed(domain.AmountScale),
		})
		if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
			return storeError("record transaction event", err)
		}

		result = &OperationResult{Transaction: txn, Balance: newBalance}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// HistoryInput represents input for listing an account's transactions.
type HistoryInput struct {
	AccountNumber string
	Limit         int
}

// GetTransactionHistory returns up to Limit transactions where the account is the
// source or the destination, newest first. An unknown account yields an empty slice.
func (uc *TransactionUseCase) GetTransactionHistory(ctx context.Context, input HistoryInput) ([]*domain.Transaction, error) {
	limit := domain.NormalizeHistoryLimit(input.Limit)

	txns, err := uc.transactionRepo.ListByAccount(ctx, input.AccountNumber, limit)
	if err != nil {
		return nil, storeError("list transactions", err)
	}

	if txns == nil {
		txns = []*domain.Transaction{}
	}

	return txns, nil
}

func validateMovement(accountNumber string, amount decimal.Decimal, description string) error {
	if err := domain.ValidateAccountNumber(accountNumber); err != nil {
		return err
	}

	if err := domain.ValidateAmount(amount); err != nil {
		return err
	}

	return domain.ValidateDescription(description)
}
