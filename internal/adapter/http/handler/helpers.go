package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/iho/bankledger/internal/adapter/http/dto"
	"github.com/iho/bankledger/internal/domain"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// decodeJSON reads a bounded JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(dst)
}

// writeDomainError maps err to a status and message and writes it.
// Unexpected failures are logged and reported without details.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := mapDomainError(err)
	if status == http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("request failed")
		writeError(w, status, message, "")
		return
	}

	details := ""
	if status == http.StatusUnprocessableEntity {
		details = err.Error()
	}

	writeError(w, status, message, details)
}

// mapDomainError maps domain errors to HTTP status codes and client messages.
func mapDomainError(err error) (int, string) {
	var insufficient *domain.InsufficientFundsError

	switch {
	case errors.As(err, &insufficient):
		return http.StatusBadRequest, "Insufficient funds. Current balance: $" + dto.Money(insufficient.Balance)
	case errors.Is(err, domain.ErrInsufficientFunds):
		return http.StatusBadRequest, "Insufficient funds"
	case errors.Is(err, domain.ErrAccountNotFound):
		return http.StatusNotFound, "Account not found"
	case errors.Is(err, domain.ErrDuplicateAccount):
		return http.StatusBadRequest, "Account number already exists"
	case errors.Is(err, domain.ErrSameAccount):
		return http.StatusBadRequest, "Cannot transfer to the same account"
	case isValidationError(err):
		return http.StatusUnprocessableEntity, "Validation failed"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// transferErrorMessage refines not-found and insufficient-funds messages with the
// side of the transfer they refer to.
func transferErrorMessage(err error, from, to string) (int, string, bool) {
	var insufficient *domain.InsufficientFundsError

	switch {
	case errors.Is(err, domain.ErrSourceAccountNotFound):
		return http.StatusNotFound, fmt.Sprintf("Source account %s not found", from), true
	case errors.Is(err, domain.ErrDestinationAccountNotFound):
		return http.StatusNotFound, fmt.Sprintf("Destination account %s not found", to), true
	case errors.As(err, &insufficient):
		return http.StatusBadRequest, "Insufficient funds in source account. Current balance: $" + dto.Money(insufficient.Balance), true
	default:
		return 0, "", false
	}
}

func isValidationError(err error) bool {
	for _, target := range []error{
		domain.ErrInvalidAmount,
		domain.ErrInvalidAccountNumber,
		domain.ErrInvalidAccountHolder,
		domain.ErrInvalidDescription,
		domain.ErrAmountTooLarge,
		domain.ErrAmountPrecision,
		domain.ErrInvalidTransactionType,
		domain.ErrInvalidTransactionShape,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}
