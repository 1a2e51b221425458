package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestNewPoolWithConfigDefaults(t *testing.T) {
	ctx := context.Background()

	// using invalid URL should return error
	if _, err := NewPoolWithConfig(ctx, PoolConfig{DatabaseURL: "not-a-url"}); err == nil {
		t.Fatalf("expected error when parsing invalid URL")
	}
}

func TestNewPoolWithConfigPingFailure(t *testing.T) {
	ctx := context.Background()
	cfg := PoolConfig{
		DatabaseURL: "postgres://invalid:5432/db",
		MaxConns:    1,
		MinConns:    0,
		Logger:      zerolog.Nop(),
	}

	_, err := NewPoolWithConfig(ctx, cfg)
	if err == nil {
		t.Fatalf("expected error when pool cannot connect")
	}
}

func TestWithConnectRetry(t *testing.T) {
	t.Run("single attempt without retry budget", func(t *testing.T) {
		calls := 0
		err := withConnectRetry(context.Background(), 0, zerolog.Nop(), "test", func() error {
			calls++
			return errors.New("down")
		})
		if err == nil || calls != 1 {
			t.Fatalf("expected one failed attempt, got %d calls, err %v", calls, err)
		}
	})

	t.Run("retries until success", func(t *testing.T) {
		calls := 0
		err := withConnectRetry(context.Background(), 5*time.Second, zerolog.Nop(), "test", func() error {
			calls++
			if calls < 3 {
				return errors.New("down")
			}
			return nil
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if calls != 3 {
			t.Fatalf("expected 3 attempts, got %d", calls)
		}
	})

	t.Run("stops when context is cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := withConnectRetry(ctx, time.Minute, zerolog.Nop(), "test", func() error {
			return errors.New("down")
		})
		if err == nil {
			t.Fatalf("expected error after cancellation")
		}
	})
}
