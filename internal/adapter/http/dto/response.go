package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/usecase"
)

// StatusSuccess is the status field of successful mutations.
const StatusSuccess = "success"

// Money renders an amount with exactly two decimals.
func Money(d decimal.Decimal) string {
	return d.StringFixed(domain.AmountScale)
}

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	AccountNumber string    `json:"account_number"`
	AccountHolder string    `json:"account_holder"`
	Balance       string    `json:"balance"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// AccountFromDomain converts domain account to response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		AccountNumber: a.AccountNumber,
		AccountHolder: a.AccountHolder,
		Balance:       Money(a.Balance),
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// CreateAccountResponse is returned by POST /accounts.
type CreateAccountResponse struct {
	Message string           `json:"message"`
	Status  string           `json:"status"`
	Account *AccountResponse `json:"account"`
}

// BalanceResponse is returned by GET /accounts/{account_number}/balance.
type BalanceResponse struct {
	AccountNumber string `json:"account_number"`
	Balance       string `json:"balance"`
	Status        string `json:"status"`
}

// TransactionResponse represents a ledger record in API responses.
type TransactionResponse struct {
	TransactionID   string    `json:"transaction_id"`
	TransactionType string    `json:"transaction_type"`
	Amount          string    `json:"amount"`
	FromAccount     *string   `json:"from_account"`
	ToAccount       *string   `json:"to_account"`
	Description     string    `json:"description"`
	Timestamp       time.Time `json:"timestamp"`
}

// TransactionFromDomain converts a domain transaction to response.
func TransactionFromDomain(t *domain.Transaction) *TransactionResponse {
	return &TransactionResponse{
		TransactionID:   t.ID,
		TransactionType: string(t.Type),
		Amount:          Money(t.Amount),
		FromAccount:     t.FromAccount,
		ToAccount:       t.ToAccount,
		Description:     t.Description,
		Timestamp:       t.Timestamp,
	}
}

// TransactionsFromDomain converts domain transactions to responses.
func TransactionsFromDomain(txns []*domain.Transaction) []*TransactionResponse {
	result := make([]*TransactionResponse, len(txns))
	for i, t := range txns {
		result[i] = TransactionFromDomain(t)
	}
	return result
}

// MovementResponse is returned by deposit and withdraw.
type MovementResponse struct {
	Message     string               `json:"message"`
	NewBalance  string               `json:"new_balance"`
	Transaction *TransactionResponse `json:"transaction"`
	Status      string               `json:"status"`
}

// TransferResponse is returned by POST /transfer.
type TransferResponse struct {
	Message            string               `json:"message"`
	FromAccountBalance string               `json:"from_account_balance"`
	ToAccountBalance   string               `json:"to_account_balance"`
	Transaction        *TransactionResponse `json:"transaction"`
	Status             string               `json:"status"`
}

// ConsistencyResponse reports the global conservation check.
type ConsistencyResponse struct {
	Status           string    `json:"status"`
	Consistent       bool      `json:"consistent"`
	TotalBalance     string    `json:"total_balance"`
	ExpectedBalance  string    `json:"expected_balance"`
	TotalOpening     string    `json:"total_opening"`
	TotalDeposits    string    `json:"total_deposits"`
	TotalWithdrawals string    `json:"total_withdrawals"`
	NegativeAccounts int64     `json:"negative_accounts"`
	CheckedAt        time.Time `json:"checked_at"`
}

// ConsistencyFromReport converts a consistency report to response.
func ConsistencyFromReport(r *usecase.ConsistencyReport) *ConsistencyResponse {
	status := "consistent"
	if !r.Consistent {
		status = "inconsistent"
	}

	return &ConsistencyResponse{
		Status:           status,
		Consistent:       r.Consistent,
		TotalBalance:     Money(r.TotalBalance),
		ExpectedBalance:  Money(r.ExpectedBalance),
		TotalOpening:     Money(r.TotalOpening),
		TotalDeposits:    Money(r.TotalDeposits),
		TotalWithdrawals: Money(r.TotalWithdrawals),
		NegativeAccounts: r.NegativeAccounts,
		CheckedAt:        r.CheckedAt,
	}
}

// DiscrepancyResponse describes one account whose balance does not match its history.
type DiscrepancyResponse struct {
	AccountNumber     string `json:"account_number"`
	RecordedBalance   string `json:"recorded_balance"`
	CalculatedBalance string `json:"calculated_balance"`
	Difference        string `json:"difference"`
}

// ReconciliationResponse is returned by GET /ledger/reconciliation.
type ReconciliationResponse struct {
	TotalAccounts      int                    `json:"total_accounts"`
	ReconciledAccounts int                    `json:"reconciled_accounts"`
	Discrepancies      []*DiscrepancyResponse `json:"discrepancies"`
	LedgerConsistent   bool                   `json:"ledger_consistent"`
	Ledger             *ConsistencyResponse   `json:"ledger,omitempty"`
	CheckedAt          time.Time              `json:"checked_at"`
}

// ReconciliationFromReport converts a reconciliation report to response.
func ReconciliationFromReport(r *usecase.ReconciliationReport) *ReconciliationResponse {
	resp := &ReconciliationResponse{
		TotalAccounts:      r.TotalAccounts,
		ReconciledAccounts: r.ReconciledAccounts,
		Discrepancies:      make([]*DiscrepancyResponse, 0, len(r.Discrepancies)),
		LedgerConsistent:   r.LedgerConsistent,
		CheckedAt:          r.CheckedAt,
	}

	for _, d := range r.Discrepancies {
		resp.Discrepancies = append(resp.Discrepancies, &DiscrepancyResponse{
			AccountNumber:     d.AccountNumber,
			RecordedBalance:   Money(d.RecordedBalance),
			CalculatedBalance: Money(d.CalculatedBalance),
			Difference:        Money(d.Difference),
		})
	}

	if r.Ledger != nil {
		resp.Ledger = ConsistencyFromReport(r.Ledger)
	}

	return resp
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
