package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/oklog/ulid/v2"
)

// apiError is a non-2xx answer from the API.
type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
}

// apiClient talks to the ledger HTTP API.
type apiClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
	maxRetry   time.Duration
}

func newAPIClient(baseURL, token string, timeout, maxRetry time.Duration) *apiClient {
	return &apiClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		maxRetry:   maxRetry,
	}
}

// do sends a request and decodes a 2xx JSON body into out. Mutations carry an
// Idempotency-Key that stays the same across retries, so a retried request is
// applied at most once.
func (c *apiClient) do(ctx context.Context, method, path string, in, out any) error {
	var payload []byte
	if in != nil {
		var err error
		if payload, err = json.Marshal(in); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	idempotencyKey := ""
	if method == http.MethodPost {
		idempotencyKey = ulid.Make().String()
	}

	var body []byte
	var status int

	attempt := func() error {
		status = 0

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if idempotencyKey != "" {
			req.Header.Set("Idempotency-Key", idempotencyKey)
		}
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		status = resp.StatusCode

		// 409 means the same key is still in flight on the server.
		if status >= http.StatusInternalServerError || status == http.StatusConflict && idempotencyKey != "" {
			return fmt.Errorf("server answered %d", status)
		}
		return nil
	}

	var err error
	if c.maxRetry > 0 {
		policy := backoff.NewExponentialBackOff()
		policy.InitialInterval = 100 * time.Millisecond
		policy.MaxElapsedTime = c.maxRetry
		err = backoff.Retry(attempt, backoff.WithContext(policy, ctx))
	} else {
		err = attempt()
	}

	if status == 0 {
		return err
	}

	if status < 200 || status >= 300 {
		return decodeAPIError(status, body)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeAPIError(status int, body []byte) error {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.Error == "" {
		return &apiError{Status: status, Message: strings.TrimSpace(string(body))}
	}

	msg := payload.Error
	if payload.Message != "" {
		msg += ": " + payload.Message
	}
	return &apiError{Status: status, Message: msg}
}

// isStatus reports whether err is an apiError with the given status.
func isStatus(err error, status int) bool {
	var apiErr *apiError
	return errors.As(err, &apiErr) && apiErr.Status == status
}
