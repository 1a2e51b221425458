package testutil

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/bankledger/internal/adapter/repository/postgres"
	"github.com/iho/bankledger/internal/domain"
	infrapg "github.com/iho/bankledger/internal/infrastructure/postgres"
	"github.com/iho/bankledger/internal/usecase"
)

// TestDB is a migrated database plus the use cases wired over it.
type TestDB struct {
	Pool *pgxpool.Pool

	Accounts       *usecase.AccountUseCase
	Transactions   *usecase.TransactionUseCase
	Transfers      *usecase.TransferUseCase
	Ledger         *usecase.LedgerUseCase
	Reconciliation *usecase.ReconciliationUseCase
	Outbox         *postgres.OutboxRepository

	t *testing.T
}

// NewTestDB resets the schema of the database at DATABASE_URL and wires the
// ledger over it. The test is skipped when DATABASE_URL is unset.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set")
	}

	migrator := infrapg.NewMigrator(dbURL, migrationsPath(t), zerolog.Nop())
	if err := migrator.Reset(); err != nil {
		t.Fatalf("failed to reset migrations: %v", err)
	}
	if err := migrator.Up(); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := infrapg.NewPoolWithConfig(ctx, infrapg.PoolConfig{
		DatabaseURL: dbURL,
		MaxConns:    20,
		Logger:      zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}
	t.Cleanup(pool.Close)

	txManager := postgres.NewTxManager(pool)
	accountRepo := postgres.NewAccountRepository(pool)
	transactionRepo := postgres.NewTransactionRepository(pool)
	ledgerRepo := postgres.NewLedgerRepository(pool)
	outboxRepo := postgres.NewOutboxRepository(pool, zerolog.Nop())
	idGen := postgres.NewULIDGenerator()

	return &TestDB{
		Pool:           pool,
		Accounts:       usecase.NewAccountUseCase(txManager, accountRepo, outboxRepo, idGen),
		Transactions:   usecase.NewTransactionUseCase(txManager, accountRepo, transactionRepo, outboxRepo, idGen),
		Transfers:      usecase.NewTransferUseCase(txManager, accountRepo, transactionRepo, outboxRepo, idGen),
		Ledger:         usecase.NewLedgerUseCase(ledgerRepo),
		Reconciliation: usecase.NewReconciliationUseCase(ledgerRepo),
		Outbox:         outboxRepo,
		t:              t,
	}
}

// TruncateAll removes all rows.
func (db *TestDB) TruncateAll(ctx context.Context) {
	db.t.Helper()

	_, err := db.Pool.Exec(ctx, `TRUNCATE TABLE outbox_events, transactions, accounts CASCADE`)
	if err != nil {
		db.t.Fatalf("failed to truncate tables: %v", err)
	}
}

// CreateAccount opens an account through the use case.
func (db *TestDB) CreateAccount(ctx context.Context, number, balance string) *domain.Account {
	db.t.Helper()

	account, err := db.Accounts.CreateAccount(ctx, usecase.CreateAccountInput{
		AccountNumber:  number,
		AccountHolder:  "Holder " + number,
		InitialBalance: decimal.RequireFromString(balance),
	})
	if err != nil {
		db.t.Fatalf("failed to create account %s: %v", number, err)
	}

	return account
}

// Balance reads the committed balance of an account.
func (db *TestDB) Balance(ctx context.Context, number string) decimal.Decimal {
	db.t.Helper()

	balance, err := db.Accounts.GetBalance(ctx, number)
	if err != nil {
		db.t.Fatalf("failed to read balance of %s: %v", number, err)
	}

	return balance
}

func migrationsPath(t *testing.T) string {
	t.Helper()

	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot locate migrations")
	}

	return filepath.Join(filepath.Dir(file), "..", "..", "internal", "infrastructure", "postgres", "migrations")
}
