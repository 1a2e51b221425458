package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/bankledger/internal/adapter/http/dto"
	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/usecase"
)

// TransactionService defines the behavior needed by TransactionHandler.
type TransactionService interface {
	Deposit(ctx context.Context, input usecase.MovementInput) (*usecase.OperationResult, error)
	Withdraw(ctx context.Context, input usecase.MovementInput) (*usecase.OperationResult, error)
	GetTransactionHistory(ctx context.Context, input usecase.HistoryInput) ([]*domain.Transaction, error)
}

// AccountLookup resolves an account by number.
type AccountLookup interface {
	GetAccount(ctx context.Context, accountNumber string) (*domain.Account, error)
}

// TransactionHandler handles deposits, withdrawals and history.
type TransactionHandler struct {
	transactionUC TransactionService
	accounts      AccountLookup
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(transactionUC TransactionService, accounts AccountLookup) *TransactionHandler {
	return &TransactionHandler{
		transactionUC: transactionUC,
		accounts:      accounts,
	}
}

// Deposit credits an account.
func (h *TransactionHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, h.transactionUC.Deposit, "Successfully deposited $")
}

// Withdraw debits an account.
func (h *TransactionHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.move(w, r, h.transactionUC.Withdraw, "Successfully withdrew $")
}

func (h *TransactionHandler) move(
	w http.ResponseWriter,
	r *http.Request,
	op func(context.Context, usecase.MovementInput) (*usecase.OperationResult, error),
	messagePrefix string,
) {
	var req dto.MovementRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	if err := req.Validate(); err != nil {
		writeDomainError(w, r, err)
		return
	}

	result, err := op(r.Context(), req.ToUseCaseInput(chi.URLParam(r, "account_number")))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.MovementResponse{
		Message:     messagePrefix + dto.Money(req.Amount),
		NewBalance:  dto.Money(result.Balance),
		Transaction: dto.TransactionFromDomain(result.Transaction),
		Status:      dto.StatusSuccess,
	})
}

// History lists the most recent transactions of an account, newest first.
func (h *TransactionHandler) History(w http.ResponseWriter, r *http.Request) {
	accountNumber := chi.URLParam(r, "account_number")

	// The engine returns an empty history for unknown accounts; the API reports 404.
	if _, err := h.accounts.GetAccount(r.Context(), accountNumber); err != nil {
		writeDomainError(w, r, err)
		return
	}

	txns, err := h.transactionUC.GetTransactionHistory(r.Context(), usecase.HistoryInput{
		AccountNumber: accountNumber,
		Limit:         parseIntQuery(r, "limit", domain.DefaultHistoryLimit),
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionsFromDomain(txns))
}
