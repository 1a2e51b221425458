package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation errors
var (
	ErrInvalidAccountNumber = errors.New("invalid account number")
	ErrInvalidAccountHolder = errors.New("invalid account holder")
	ErrInvalidDescription   = errors.New("invalid description")
	ErrAmountTooLarge       = errors.New("amount exceeds maximum allowed")
	ErrAmountPrecision      = errors.New("amount has more than two decimal places")
)

// Validation constants
const (
	MaxAccountNumberLength = 64
	MaxAccountHolderLength = 255
	MaxDescriptionLength   = 500
	MaxAmount              = "9999999999999.99" // NUMERIC(15,2)
	AmountScale            = 2

	DefaultHistoryLimit = 10
	MaxHistoryLimit     = 1000
)

var (
	accountNumberRegex = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	maxAmount          = decimal.RequireFromString(MaxAmount)
)

// ValidateAccountNumber validates an account identity.
func ValidateAccountNumber(number string) error {
	if number == "" {
		return fmt.Errorf("%w: account number is required", ErrInvalidAccountNumber)
	}

	if len(number) > MaxAccountNumberLength {
		return fmt.Errorf("%w: exceeds %d characters", ErrInvalidAccountNumber, MaxAccountNumberLength)
	}

	if !accountNumberRegex.MatchString(number) {
		return fmt.Errorf("%w: only letters, digits, '-' and '_' are allowed", ErrInvalidAccountNumber)
	}

	return nil
}

// ValidateAccountHolder validates the display name of an account holder.
func ValidateAccountHolder(holder string) error {
	holder = strings.TrimSpace(holder)

	if holder == "" {
		return fmt.Errorf("%w: account holder is required", ErrInvalidAccountHolder)
	}

	if len(holder) > MaxAccountHolderLength {
		return fmt.Errorf("%w: exceeds %d characters", ErrInvalidAccountHolder, MaxAccountHolderLength)
	}

	return nil
}

// ValidateAmount validates a deposit, withdrawal or transfer amount.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	return validateMoney(amount)
}

// ValidateInitialBalance validates the opening balance of a new account.
func ValidateInitialBalance(balance decimal.Decimal) error {
	if balance.IsNegative() {
		return fmt.Errorf("%w: initial balance must not be negative", ErrInvalidAmount)
	}

	return validateMoney(balance)
}

// ValidateDescription validates an optional free-text description.
func ValidateDescription(description string) error {
	if len(description) > MaxDescriptionLength {
		return fmt.Errorf("%w: exceeds %d characters", ErrInvalidDescription, MaxDescriptionLength)
	}

	return nil
}

func validateMoney(amount decimal.Decimal) error {
	if !amount.Equal(amount.Truncate(AmountScale)) {
		return ErrAmountPrecision
	}

	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrAmountTooLarge, MaxAmount)
	}

	return nil
}

// NormalizeHistoryLimit applies the default and upper bound to a history limit.
func NormalizeHistoryLimit(limit int) int {
	if limit <= 0 {
		return DefaultHistoryLimit
	}

	if limit > MaxHistoryLimit {
		return MaxHistoryLimit
	}

	return limit
}

// ValidateBalance checks that a resulting balance still fits the stored precision.
func ValidateBalance(balance decimal.Decimal) error {
	if balance.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: resulting balance would exceed %s", ErrAmountTooLarge, MaxAmount)
	}

	return nil
}
