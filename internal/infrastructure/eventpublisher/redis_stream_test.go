package eventpublisher

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/iho/bankledger/internal/domain"
)

func TestRedisStreamPublisherAppendsEntry(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	pub := NewRedisStreamPublisher(client, "bankledger:events", 0)

	event := &domain.OutboxEvent{
		ID:            "01HZX",
		AggregateID:   "ACC001",
		AggregateType: domain.AggregateTypeAccount,
		EventType:     domain.EventTypeDepositCompleted,
		Payload:       map[string]any{"amount": "500.00"},
		CreatedAt:     time.Now(),
	}

	ctx := context.Background()
	if err := pub.Publish(ctx, event); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	entries, err := client.XRange(ctx, "bankledger:events", "-", "+").Result()
	if err != nil {
		t.Fatalf("xrange failed: %v", err)
	}

	if len(entries) != 1 {
		t.Fatalf("expected one stream entry, got %d", len(entries))
	}

	values := entries[0].Values
	if values["event_id"] != "01HZX" || values["event_type"] != domain.EventTypeDepositCompleted {
		t.Fatalf("unexpected entry %v", values)
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(values["payload"].(string)), &payload); err != nil {
		t.Fatalf("payload is not json: %v", err)
	}
	if payload["amount"] != "500.00" {
		t.Fatalf("unexpected payload %v", payload)
	}
}

func TestEventPublisherWithRedisStream(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	repo := &stubOutboxRepo{events: []*domain.OutboxEvent{
		{ID: "e1", EventType: domain.EventTypeAccountCreated, Payload: map[string]any{}},
		{ID: "e2", EventType: domain.EventTypeTransferCompleted, Payload: map[string]any{}},
	}}

	ep := NewEventPublisher(Config{
		OutboxRepo: repo,
		Publisher:  NewRedisStreamPublisher(client, "events", 1000),
	})

	if err := ep.processEvents(context.Background()); err != nil {
		t.Fatalf("processEvents failed: %v", err)
	}

	n, err := client.XLen(context.Background(), "events").Result()
	if err != nil || n != 2 {
		t.Fatalf("expected 2 stream entries, got %d (%v)", n, err)
	}

	if len(repo.marked) != 2 {
		t.Fatalf("expected both events marked, got %v", repo.marked)
	}
}
