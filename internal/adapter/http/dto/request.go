package dto

import (
	"github.com/shopspring/decimal"

	"github.com/iho/bankledger/internal/domain"
	"github.com/iho/bankledger/internal/usecase"
)

// CreateAccountRequest represents a request to create an account.
type CreateAccountRequest struct {
	AccountNumber  string          `json:"account_number"`
	AccountHolder  string          `json:"account_holder"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
}

// Validate checks the request fields.
func (r *CreateAccountRequest) Validate() error {
	if err := domain.ValidateAccountNumber(r.AccountNumber); err != nil {
		return err
	}
	if err := domain.ValidateAccountHolder(r.AccountHolder); err != nil {
		return err
	}
	return domain.ValidateInitialBalance(r.InitialBalance)
}

// ToUseCaseInput converts to use case input.
func (r *CreateAccountRequest) ToUseCaseInput() usecase.CreateAccountInput {
	return usecase.CreateAccountInput{
		AccountNumber:  r.AccountNumber,
		AccountHolder:  r.AccountHolder,
		InitialBalance: r.InitialBalance,
	}
}

// MovementRequest is the body of a deposit or withdrawal.
type MovementRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description *string         `json:"description,omitempty"`
}

// Validate checks the request fields.
func (r *MovementRequest) Validate() error {
	if err := domain.ValidateAmount(r.Amount); err != nil {
		return err
	}
	return domain.ValidateDescription(deref(r.Description))
}

// ToUseCaseInput converts to use case input for accountNumber.
func (r *MovementRequest) ToUseCaseInput(accountNumber string) usecase.MovementInput {
	return usecase.MovementInput{
		AccountNumber: accountNumber,
		Amount:        r.Amount,
		Description:   deref(r.Description),
	}
}

// TransferRequest represents a request to move money between accounts.
type TransferRequest struct {
	FromAccount string          `json:"from_account"`
	ToAccount   string          `json:"to_account"`
	Amount      decimal.Decimal `json:"amount"`
	Description *string         `json:"description,omitempty"`
}

// Validate checks the request fields. Same-account transfers are left to the engine.
func (r *TransferRequest) Validate() error {
	if err := domain.ValidateAccountNumber(r.FromAccount); err != nil {
		return err
	}
	if err := domain.ValidateAccountNumber(r.ToAccount); err != nil {
		return err
	}
	if err := domain.ValidateAmount(r.Amount); err != nil {
		return err
	}
	return domain.ValidateDescription(deref(r.Description))
}

// ToUseCaseInput converts to use case input.
func (r *TransferRequest) ToUseCaseInput() usecase.TransferInput {
	return usecase.TransferInput{
		FromAccount: r.FromAccount,
		ToAccount:   r.ToAccount,
		Amount:      r.Amount,
		Description: deref(r.Description),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
