// Package memory is an in-process store for development and tests. It offers
// the same per-account locking and all-or-nothing commits as the Postgres store,
// but nothing survives a restart.
package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/usecase"
)

// ErrTxClosed is returned when a finished transaction is used again.
var ErrTxClosed = errors.New("memory: transaction already closed")

// ErrForeignTx is returned when a transaction from another store is passed in.
var ErrForeignTx = errors.New("memory: transaction does not belong to this store")

// Store holds committed state and the per-account locks.
type Store struct {
	mu           sync.RWMutex
	accounts     map[string]*domain.Account
	transactions []*domain.Transaction
	outbox       []*domain.OutboxEvent

	locksMu   sync.Mutex
	acctLocks map[string]*accountLock
}

// accountLock is a one-slot semaphore. refs counts holders and waiters; the
// entry is dropped from the table when it reaches zero.
type accountLock struct {
	ch   chan struct{}
	refs int
}

// NewStore creates a new in-memory data store.
func NewStore() *Store {
	return &Store{
		accounts:  make(map[string]*domain.Account),
		acctLocks: make(map[string]*accountLock),
	}
}

func (s *Store) refAccountLock(accountNumber string) *accountLock {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	l, ok := s.acctLocks[accountNumber]
	if !ok {
		l = &accountLock{ch: make(chan struct{}, 1)}
		s.acctLocks[accountNumber] = l
	}
	l.refs++

	return l
}

func (s *Store) unrefAccountLock(accountNumber string, l *accountLock) {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	l.refs--
	if l.refs == 0 {
		delete(s.acctLocks, accountNumber)
	}
}

func (s *Store) lockTableSize() int {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	return len(s.acctLocks)
}

// Begin starts a new transaction. It implements usecase.TransactionManager.
func (s *Store) Begin(ctx context.Context) (usecase.DBTransaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return &Tx{
		store:    s,
		held:     make(map[string]*accountLock),
		created:  make(map[string]*domain.Account),
		balances: make(map[string]balanceWrite),
	}, nil
}

func (s *Store) committedAccount(accountNumber string) (*domain.Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acc, ok := s.accounts[accountNumber]
	if !ok {
		return nil, false
	}

	copyAcc := *acc

	return &copyAcc, true
}

type balanceWrite struct {
	balance   decimal.Decimal
	updatedAt time.Time
}

// Tx buffers writes and holds account locks until Commit or Rollback.
// A Tx must not be shared between goroutines.
type Tx struct {
	store *Store
	held  map[string]*accountLock
	done  bool

	created      map[string]*domain.Account
	createdOrder []string
	balances     map[string]balanceWrite
	transactions []*domain.Transaction
	events       []*domain.OutboxEvent
}

func asTx(tx usecase.DBTransaction, s *Store) (*Tx, error) {
	t, ok := tx.(*Tx)
	if !ok || t.store != s {
		return nil, ErrForeignTx
	}

	if t.done {
		return nil, ErrTxClosed
	}

	return t, nil
}

// lock acquires the account lock, waiting until it is free or ctx is done.
func (t *Tx) lock(ctx context.Context, accountNumber string) error {
	if t.held[accountNumber] != nil {
		return nil
	}

	l := t.store.refAccountLock(accountNumber)
	select {
	case l.ch <- struct{}{}:
		t.held[accountNumber] = l
		return nil
	case <-ctx.Done():
		t.store.unrefAccountLock(accountNumber, l)
		return ctx.Err()
	}
}

func (t *Tx) release() {
	for accountNumber, l := range t.held {
		<-l.ch
		t.store.unrefAccountLock(accountNumber, l)
	}
	t.held = nil
}

// view returns the account as this transaction sees it, pending writes included.
func (t *Tx) view(accountNumber string) (*domain.Account, bool) {
	acc, ok := t.created[accountNumber]
	if ok {
		copyAcc := *acc
		acc = &copyAcc
	} else {
		acc, ok = t.store.committedAccount(accountNumber)
		if !ok {
			return nil, false
		}
	}

	if w, ok := t.balances[accountNumber]; ok {
		acc.Balance = w.balance
		acc.UpdatedAt = w.updatedAt
	}

	return acc, true
}

// Commit applies every buffered write at once and releases the locks.
func (t *Tx) Commit(ctx context.Context) error {
	if t.done {
		return ErrTxClosed
	}
	t.done = true
	defer t.release()

	if err := ctx.Err(); err != nil {
		return err
	}

	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, accountNumber := range t.createdOrder {
		copyAcc := *t.created[accountNumber]
		s.accounts[accountNumber] = &copyAcc
	}

	for accountNumber, w := range t.balances {
		acc := s.accounts[accountNumber]
		acc.Balance = w.balance
		acc.UpdatedAt = w.updatedAt
		acc.Version++
	}

	s.transactions = append(s.transactions, t.transactions...)
	s.outbox = append(s.outbox, t.events...)

	return nil
}

// Rollback discards buffered writes and releases the locks. It is a no-op after Commit.
func (t *Tx) Rollback(context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	t.release()

	return nil
}
