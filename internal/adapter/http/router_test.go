package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/bankledger/internal/adapter/http/dto"
	"github.com/iho/bankledger/internal/adapter/http/handler"
	apimiddleware "github.com/iho/bankledger/internal/adapter/http/middleware"
	"github.com/iho/bankledger/internal/adapter/repository/memory"
	redisrepo "github.com/iho/bankledger/internal/adapter/repository/redis"
	"github.com/iho/bankledger/internal/usecase"
)

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

// newRouterConfig wires the real engine over the in-memory store.
func newRouterConfig(opts ...func(*RouterConfig)) RouterConfig {
	store := memory.NewStore()
	accountRepo := memory.NewAccountRepository(store)
	transactionRepo := memory.NewTransactionRepository(store)
	ledgerRepo := memory.NewLedgerRepository(store)
	outboxRepo := memory.NewOutboxRepository(store)
	idGen := &sequenceIDs{}

	accountUC := usecase.NewAccountUseCase(store, accountRepo, outboxRepo, idGen)
	transactionUC := usecase.NewTransactionUseCase(store, accountRepo, transactionRepo, outboxRepo, idGen)
	transferUC := usecase.NewTransferUseCase(store, accountRepo, transactionRepo, outboxRepo, idGen)

	cfg := RouterConfig{
		AccountHandler:     handler.NewAccountHandler(accountUC),
		TransactionHandler: handler.NewTransactionHandler(transactionUC, accountUC),
		TransferHandler:    handler.NewTransferHandler(transferUC),
		LedgerHandler:      handler.NewLedgerHandler(usecase.NewLedgerUseCase(ledgerRepo), usecase.NewReconciliationUseCase(ledgerRepo)),
		HealthHandler:      handler.NewHealthHandler(nil, nil),
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

func do(t *testing.T, router http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestNewRouter_HealthEndpointAvailable(t *testing.T) {
	router := NewRouter(newRouterConfig())

	rec := do(t, router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNewRouter_RateLimiterBlocksExcessRequests(t *testing.T) {
	rl := apimiddleware.NewRateLimiter(1, 1, nil)
	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.RateLimiter = rl
	}))

	req1 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req1.RemoteAddr = "1.2.3.4:1234"
	rec1 := httptest.NewRecorder()
	router.ServeHTTP(rec1, req1)
	if rec1.Code != http.StatusOK {
		t.Fatalf("expected first request to succeed, got %d", rec1.Code)
	}

	req2 := httptest.NewRequest(http.MethodGet, "/health", nil)
	req2.RemoteAddr = "1.2.3.4:1234"
	rec2 := httptest.NewRecorder()
	router.ServeHTTP(rec2, req2)
	if rec2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to be throttled, got %d", rec2.Code)
	}
}

func TestNewRouter_RegistersKeyRoutes(t *testing.T) {
	router := NewRouter(newRouterConfig())

	chiRoutes, ok := router.(chi.Router)
	if !ok {
		t.Fatal("router does not implement chi.Routes")
	}

	seen := map[string]bool{}
	if err := chi.Walk(chiRoutes, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		seen[method+" "+route] = true
		return nil
	}); err != nil {
		t.Fatalf("walk failed: %v", err)
	}

	expected := []string{
		"GET /health",
		"GET /ready",
		"POST /api/v1/accounts/",
		"GET /api/v1/accounts/",
		"GET /api/v1/accounts/{account_number}",
		"GET /api/v1/accounts/{account_number}/balance",
		"POST /api/v1/accounts/{account_number}/deposit",
		"POST /api/v1/accounts/{account_number}/withdraw",
		"GET /api/v1/accounts/{account_number}/transactions",
		"POST /api/v1/transfer",
		"GET /api/v1/ledger/consistency",
		"GET /api/v1/ledger/reconciliation",
	}

	for _, route := range expected {
		if !seen[route] {
			t.Fatalf("expected route %s to be registered", route)
		}
	}
}

// TestNewRouter_BankingScenario walks the basic flow end to end over the memory store.
func TestNewRouter_BankingScenario(t *testing.T) {
	router := NewRouter(newRouterConfig())

	rec := do(t, router, http.MethodPost, "/api/v1/accounts", `{"account_number":"ACC001","account_holder":"John Doe","initial_balance":1000.00}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, router, http.MethodPost, "/api/v1/accounts", `{"account_number":"ACC002","account_holder":"Jane Smith","initial_balance":500.00}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, router, http.MethodPost, "/api/v1/accounts", `{"account_number":"ACC001","account_holder":"Dup","initial_balance":1}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodPost, "/api/v1/accounts/ACC001/deposit", `{"amount":500.00}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var movement dto.MovementResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &movement))
	assert.Equal(t, "1500.00", movement.NewBalance)
	assert.Equal(t, "Successfully deposited $500.00", movement.Message)

	rec = do(t, router, http.MethodPost, "/api/v1/accounts/ACC001/withdraw", `{"amount":200.00}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, router, http.MethodPost, "/api/v1/accounts/ACC001/withdraw", `{"amount":1500.00}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Current balance: $1300.00")

	rec = do(t, router, http.MethodPost, "/api/v1/transfer", `{"from_account":"ACC001","to_account":"ACC002","amount":300.00}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var transfer dto.TransferResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &transfer))
	assert.Equal(t, "1000.00", transfer.FromAccountBalance)
	assert.Equal(t, "800.00", transfer.ToAccountBalance)

	rec = do(t, router, http.MethodPost, "/api/v1/transfer", `{"from_account":"ACC001","to_account":"ACC999","amount":1}`)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Destination account ACC999 not found")

	rec = do(t, router, http.MethodGet, "/api/v1/accounts/ACC001/balance", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"balance":"1000.00"`)

	rec = do(t, router, http.MethodGet, "/api/v1/accounts/ACC001/transactions?limit=2", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var history []dto.TransactionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	require.Len(t, history, 2)
	assert.Equal(t, "TRANSFER", history[0].TransactionType)
	assert.Equal(t, "WITHDRAWAL", history[1].TransactionType)

	rec = do(t, router, http.MethodGet, "/api/v1/accounts/NOPE/transactions", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/v1/ledger/consistency", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"total_balance":"1800.00"`)

	rec = do(t, router, http.MethodGet, "/api/v1/ledger/reconciliation", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"reconciled_accounts":2`)
}

func TestNewRouter_IdempotentDepositAppliesOnce(t *testing.T) {
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { client.Close() })

	router := NewRouter(newRouterConfig(func(cfg *RouterConfig) {
		cfg.IdempotencyStore = redisrepo.NewIdempotencyStore(client)
		cfg.IdempotencyTTL = time.Hour
	}))

	rec := do(t, router, http.MethodPost, "/api/v1/accounts", `{"account_number":"ACC001","account_holder":"John Doe","initial_balance":0}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	for i := 0; i < 3; i++ {
		rec = do(t, router, http.MethodPost, "/api/v1/accounts/ACC001/deposit", `{"amount":"10.00"}`,
			apimiddleware.IdempotencyKeyHeader, "deposit-1")
		require.Equal(t, http.StatusOK, rec.Code)
	}
	assert.Equal(t, "true", rec.Header().Get(apimiddleware.IdempotencyReplayHeader))

	rec = do(t, router, http.MethodGet, "/api/v1/accounts/ACC001/balance", "")
	assert.Contains(t, rec.Body.String(), `"balance":"10.00"`)

	exists, _, err := redisrepo.NewIdempotencyStore(client).CheckAndSet(context.Background(), "POST /api/v1/accounts/ACC001/deposit deposit-1", nil, time.Hour)
	require.NoError(t, err)
	assert.True(t, exists)
}
