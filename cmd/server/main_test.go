package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/bankledger/internal/infrastructure/config"
	"github.com/iho/bankledger/internal/infrastructure/eventpublisher"
)

func memoryConfig() *config.Config {
	return &config.Config{
		StorageDriver:      config.StorageMemory,
		DatabaseMaxConns:   1,
		IdempotencyTTL:     time.Hour,
		RateLimitBurst:     10,
		OutboxEnabled:      true,
		OutboxPublisher:    config.PublisherLog,
		OutboxBatchSize:    10,
		OutboxPollInterval: time.Second,
	}
}

func TestNewApplication_MemoryStorage(t *testing.T) {
	app, err := newApplication(context.Background(), memoryConfig(), zerolog.Nop(), prometheus.NewRegistry())
	require.NoError(t, err)
	defer app.close()

	require.NotNil(t, app.publisher)
	assert.Nil(t, app.pool)
	assert.Nil(t, app.rateLimiter)

	srv := httptest.NewServer(app.handler)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/v1/accounts", "application/json",
		strings.NewReader(`{"account_number":"ACC001","account_holder":"John Doe","initial_balance":"1000.00"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/ready")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"postgres":"disabled"`)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(body), "bankledger_accounts_created_total 1")
	assert.Contains(t, string(body), "bankledger_http_requests_total")
}

func TestNewApplication_WithRedisAndAuth(t *testing.T) {
	s := miniredis.RunT(t)

	cfg := memoryConfig()
	cfg.RedisURL = "redis://" + s.Addr()
	cfg.OutboxPublisher = config.PublisherRedis
	cfg.AuthEnabled = true
	cfg.JWTSecret = "secret"
	cfg.JWTExpiration = time.Hour
	cfg.RateLimitRPS = 100

	app, err := newApplication(context.Background(), cfg, zerolog.Nop(), prometheus.NewRegistry())
	require.NoError(t, err)
	defer app.close()

	require.NotNil(t, app.redisClient)
	require.NotNil(t, app.rateLimiter)

	rec := httptest.NewRecorder()
	app.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/accounts", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	app.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"redis":"ok"`)
}

func TestNewOutboxPublisher(t *testing.T) {
	cfg := memoryConfig()

	publisher, err := newOutboxPublisher(cfg, nil, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &eventpublisher.LogPublisher{}, publisher)

	cfg.OutboxPublisher = config.PublisherRedis
	_, err = newOutboxPublisher(cfg, nil, zerolog.Nop())
	assert.Error(t, err)

	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	defer client.Close()

	publisher, err = newOutboxPublisher(cfg, client, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &eventpublisher.RedisStreamPublisher{}, publisher)
}

func TestEveryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var calls atomic.Int32
	done := make(chan struct{})
	go func() {
		every(ctx, time.Millisecond, func() { calls.Add(1) })
		close(done)
	}()

	require.Eventually(t, func() bool { return calls.Load() > 0 }, time.Second, time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("every did not return after cancel")
	}
}
