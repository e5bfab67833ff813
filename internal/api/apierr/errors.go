package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/wam-arcade/games-service/internal/model"
)

// APIError is the JSON body for an error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Codes not covered by the domain taxonomy
const (
	CodeInvalidRequest = "InvalidRequest"
	CodeInternalError  = "InternalError"
)

// statusByCode maps domain error codes to HTTP statuses
var statusByCode = map[string]int{
	model.ErrGameNotFound.Code:            http.StatusNotFound,
	model.ErrPlayerNotFound.Code:          http.StatusNotFound,
	model.ErrInvalidGameCode.Code:         http.StatusBadRequest,
	model.ErrInvalidPlayer.Code:           http.StatusBadRequest,
	model.ErrInvalidGameVoucher.Code:      http.StatusBadRequest,
	model.ErrInvalidState.Code:            http.StatusConflict,
	model.ErrGameIsFull.Code:              http.StatusConflict,
	model.ErrNewGameAlreadyExists.Code:    http.StatusConflict,
	model.ErrActiveGameAlreadyExists.Code: http.StatusConflict,
}

// WriteError writes an error response. Domain errors keep their
// stable code and message; everything else is an opaque internal
// error.
func WriteError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	body := APIError{Code: CodeInternalError, Message: "internal server error"}

	var domainErr *model.DomainError
	if errors.As(err, &domainErr) {
		body = APIError{Code: domainErr.Code, Message: domainErr.Message}
		if s, ok := statusByCode[domainErr.Code]; ok {
			status = s
		} else {
			status = http.StatusBadRequest
		}
	}

	writeJSONError(w, status, body)
}

// WriteInvalidRequest writes a 400 for malformed input that never
// reached the domain layer
func WriteInvalidRequest(w http.ResponseWriter, message string) {
	writeJSONError(w, http.StatusBadRequest, APIError{
		Code:    CodeInvalidRequest,
		Message: message,
	})
}

// WriteInternalError writes an opaque 500 response
func WriteInternalError(w http.ResponseWriter) {
	writeJSONError(w, http.StatusInternalServerError, APIError{
		Code:    CodeInternalError,
		Message: "internal server error",
	})
}

func writeJSONError(w http.ResponseWriter, status int, apiError APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: apiError})
}
