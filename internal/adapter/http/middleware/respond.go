package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/iho/bankledger/internal/adapter/http/dto"
)

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{Error: message})
}
