package integration

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/infrastructure/eventpublisher"
	"github.com/iho/bankledger/internal/usecase"
	"github.com/iho/bankledger/tests/testutil"
)

func TestOutboxEventsCommitWithOperations(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewTestDB(t)
	db.TruncateAll(ctx)

	db.CreateAccount(ctx, "ACC001", "100.00")
	db.CreateAccount(ctx, "ACC002", "0")

	_, err := db.Transfers.Transfer(ctx, usecase.TransferInput{FromAccount: "ACC001", ToAccount: "ACC002", Amount: dec("10")})
	require.NoError(t, err)

	// A rejected withdrawal must not leave an event behind.
	_, err = db.Transactions.Withdraw(ctx, usecase.MovementInput{AccountNumber: "ACC002", Amount: dec("11")})
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)

	events, err := db.Outbox.GetUnpublished(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 3)

	types := make([]string, 0, len(events))
	for _, e := range events {
		types = append(types, e.EventType)
	}
	assert.ElementsMatch(t, []string{
		domain.EventTypeAccountCreated,
		domain.EventTypeAccountCreated,
		domain.EventTypeTransferCompleted,
	}, types)
}

func TestOutboxPublishesToRedisStream(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db := testutil.NewTestDB(t)
	db.TruncateAll(ctx)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	db.CreateAccount(ctx, "ACC001", "100.00")
	_, err := db.Transactions.Deposit(ctx, usecase.MovementInput{AccountNumber: "ACC001", Amount: dec("5")})
	require.NoError(t, err)

	published := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_outbox_published_total"})
	publisher := eventpublisher.NewEventPublisher(eventpublisher.Config{
		OutboxRepo: db.Outbox,
		Publisher:  eventpublisher.NewRedisStreamPublisher(client, "ledger-events", 1000),
		Logger:     zerolog.Nop(),
		Interval:   20 * time.Millisecond,
		Published:  published,
	})

	go func() { _ = publisher.Start(ctx) }()

	require.Eventually(t, func() bool {
		events, err := db.Outbox.GetUnpublished(ctx, 10)
		return err == nil && len(events) == 0
	}, 5*time.Second, 20*time.Millisecond)

	entries, err := client.XRange(ctx, "ledger-events", "-", "+").Result()
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
