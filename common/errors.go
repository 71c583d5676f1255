package common

import (
	"client-records-api/logger"
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"
)

// Stable error codes surfaced in the JSON error body. Clients branch on these,
// so they must never change.
const (
	CodeValidationError     = "ValidationError"
	CodeAuthenticationError = "AuthenticationError"
	CodeAuthorizationError  = "AuthorizationError"
	CodeNotFound            = "NotFound"
	CodeDuplicateField      = "DuplicateField"
	CodeServerError         = "ServerError"
)

// AppError is the single error shape that crosses the HTTP boundary:
// {"code": "...", "message": "..."}. Detail is only populated in development.
type AppError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"error,omitempty"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	return e.Message
}

func NewAppError(status int, code, message string, err error) *AppError {
	return &AppError{
		Status:  status,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func (e *AppError) Send(w http.ResponseWriter) {
	if e.Err != nil {
		logger.Log.WithFields(logrus.Fields{
			"status_code":    e.Status,
			"error_code":     e.Code,
			"internal_error": e.Err.Error(),
		}).Error(e.Message)
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(e.Status)
	json.NewEncoder(w).Encode(e)
}
