package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/bankledger/internal/adapter/http/dto"
	"github.com/iho/bankledger/internal/domain"
)

func TestParseIntQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/accounts/ACC001/transactions?limit=50", nil)
	if got := parseIntQuery(req, "limit", 10); got != 50 {
		t.Fatalf("expected limit=50, got %d", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/accounts/ACC001/transactions?limit=invalid", nil)
	if got := parseIntQuery(req, "limit", 10); got != 10 {
		t.Fatalf("expected fallback to default, got %d", got)
	}

	req.URL = &url.URL{RawQuery: ""}
	if got := parseIntQuery(req, "limit", 25); got != 25 {
		t.Fatalf("expected default when missing, got %d", got)
	}
}

func TestMapDomainError(t *testing.T) {
	insufficient := &domain.InsufficientFundsError{
		AccountNumber: "ACC001",
		Balance:       decimal.NewFromInt(1000),
		Requested:     decimal.NewFromInt(1500),
	}

	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
	}{
		{"account not found", domain.ErrAccountNotFound, http.StatusNotFound, "Account not found"},
		{"wrapped not found", fmt.Errorf("lookup: %w", domain.ErrAccountNotFound), http.StatusNotFound, "Account not found"},
		{"duplicate", domain.ErrDuplicateAccount, http.StatusBadRequest, "Account number already exists"},
		{"insufficient", insufficient, http.StatusBadRequest, "Insufficient funds. Current balance: $1000.00"},
		{"same account", domain.ErrSameAccount, http.StatusBadRequest, "Cannot transfer to the same account"},
		{"invalid amount", domain.ErrInvalidAmount, http.StatusUnprocessableEntity, "Validation failed"},
		{"precision", domain.ErrAmountPrecision, http.StatusUnprocessableEntity, "Validation failed"},
		{"store failure", fmt.Errorf("%w: %w", domain.ErrOperationFailed, errors.New("conn reset")), http.StatusInternalServerError, "Internal server error"},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError, "Internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, message := mapDomainError(tt.err)
			if status != tt.wantStatus || message != tt.wantMessage {
				t.Fatalf("expected (%d, %q), got (%d, %q)", tt.wantStatus, tt.wantMessage, status, message)
			}
		})
	}
}

func TestTransferErrorMessage(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
		wantOK      bool
	}{
		{"source missing", domain.ErrSourceAccountNotFound, http.StatusNotFound, "Source account A not found", true},
		{"destination missing", domain.ErrDestinationAccountNotFound, http.StatusNotFound, "Destination account B not found", true},
		{
			"insufficient",
			&domain.InsufficientFundsError{AccountNumber: "A", Balance: decimal.RequireFromString("12.5")},
			http.StatusBadRequest,
			"Insufficient funds in source account. Current balance: $12.50",
			true,
		},
		{"other", domain.ErrSameAccount, 0, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, message, ok := transferErrorMessage(tt.err, "A", "B")
			if status != tt.wantStatus || message != tt.wantMessage || ok != tt.wantOK {
				t.Fatalf("got (%d, %q, %v)", status, message, ok)
			}
		})
	}
}

func TestWriteJSON(t *testing.T) {
	rr := httptest.NewRecorder()
	payload := map[string]string{"status": "ok"}

	writeJSON(rr, http.StatusCreated, payload)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rr.Code)
	}

	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected content-type application/json, got %s", ct)
	}

	var decoded map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if decoded["status"] != "ok" {
		t.Fatalf("expected payload to round-trip, got %+v", decoded)
	}
}

func TestWriteDomainErrorHidesInternalDetails(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	writeDomainError(rr, req, errors.New("password=secret"))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}

	var resp dto.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}

	if resp.Error != "Internal server error" || resp.Message != "" {
		t.Fatalf("expected generic error, got %+v", resp)
	}
}
