package usecase_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/bankledger/internal/adapter/repository/memory"
	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/usecase"
)

// sequenceIDs yields lexically increasing IDs, like monotonic ULIDs.
type sequenceIDs struct {
	mu sync.Mutex
	n  int
}

func (g *sequenceIDs) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.n++

	return fmt.Sprintf("%026d", g.n)
}

type ledgerEngine struct {
	store          *memory.Store
	outbox         *memory.OutboxRepository
	accounts       *usecase.AccountUseCase
	transactions   *usecase.TransactionUseCase
	transfers      *usecase.TransferUseCase
	ledger         *usecase.LedgerUseCase
	reconciliation *usecase.ReconciliationUseCase
}

func newLedgerEngine(opts ...usecase.Option) *ledgerEngine {
	store := memory.NewStore()
	accountRepo := memory.NewAccountRepository(store)
	transactionRepo := memory.NewTransactionRepository(store)
	ledgerRepo := memory.NewLedgerRepository(store)
	outboxRepo := memory.NewOutboxRepository(store)
	idGen := &sequenceIDs{}

	return &ledgerEngine{
		store:          store,
		outbox:         outboxRepo,
		accounts:       usecase.NewAccountUseCase(store, accountRepo, outboxRepo, idGen, opts...),
		transactions:   usecase.NewTransactionUseCase(store, accountRepo, transactionRepo, outboxRepo, idGen, opts...),
		transfers:      usecase.NewTransferUseCase(store, accountRepo, transactionRepo, outboxRepo, idGen, opts...),
		ledger:         usecase.NewLedgerUseCase(ledgerRepo),
		reconciliation: usecase.NewReconciliationUseCase(ledgerRepo),
	}
}

func (e *ledgerEngine) mustCreate(t *testing.T, number, balance string) *domain.Account {
	t.Helper()

	account, err := e.accounts.CreateAccount(context.Background(), usecase.CreateAccountInput{
		AccountNumber:  number,
		AccountHolder:  "Holder " + number,
		InitialBalance: dec(balance),
	})
	if err != nil {
		t.Fatalf("create account %s: %v", number, err)
	}

	return account
}

func (e *ledgerEngine) balance(t *testing.T, number string) decimal.Decimal {
	t.Helper()

	balance, err := e.accounts.GetBalance(context.Background(), number)
	if err != nil {
		t.Fatalf("get balance %s: %v", number, err)
	}

	return balance
}

func (e *ledgerEngine) assertConsistent(t *testing.T) {
	t.Helper()

	report, err := e.ledger.CheckConsistency(context.Background())
	if err != nil {
		t.Fatalf("ledger inconsistent: %v (balance %s, expected %s)", err, report.TotalBalance, report.ExpectedBalance)
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// decimalEq matches a decimal.Decimal by value regardless of its exponent.
type decimalEq decimal.Decimal

func (m decimalEq) Matches(x any) bool {
	d, ok := x.(decimal.Decimal)
	return ok && d.Equal(decimal.Decimal(m))
}

func (m decimalEq) String() string {
	return "is equal to " + decimal.Decimal(m).String()
}
