package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/iho/bankledger/internal/adapter/http/dto"
	"github.com/iho/bankledger/internal/usecase"
)

// TransferService defines the behavior needed by TransferHandler.
type TransferService interface {
	Transfer(ctx context.Context, input usecase.TransferInput) (*usecase.TransferResult, error)
}

// TransferHandler handles transfer-related HTTP requests.
type TransferHandler struct {
	transferUC TransferService
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(transferUC TransferService) *TransferHandler {
	return &TransferHandler{transferUC: transferUC}
}

// Create moves money between two accounts.
func (h *TransferHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.TransferRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	if err := req.Validate(); err != nil {
		writeDomainError(w, r, err)
		return
	}

	result, err := h.transferUC.Transfer(r.Context(), req.ToUseCaseInput())
	if err != nil {
		if status, message, ok := transferErrorMessage(err, req.FromAccount, req.ToAccount); ok {
			writeError(w, status, message, "")
			return
		}
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransferResponse{
		Message: fmt.Sprintf("Successfully transferred $%s from %s to %s",
			dto.Money(req.Amount), req.FromAccount, req.ToAccount),
		FromAccountBalance: dto.Money(result.FromBalance),
		ToAccountBalance:   dto.Money(result.ToBalance),
		Transaction:        dto.TransactionFromDomain(result.Transaction),
		Status:             dto.StatusSuccess,
	})
}
