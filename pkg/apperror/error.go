package apperror

import (
	"errors"
	"net/http"
)

// ErrSpamDetected marks a honeypot hit. It is never shown to the requester.
var ErrSpamDetected = errors.New("spam detected")

type AppError struct {
	Code    int      `json:"code"`
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
	Err     error    `json:"-"`
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func BadRequest(message string) *AppError {
	return New(http.StatusBadRequest, message, nil)
}

// Validation carries one message per failing field.
func Validation(messages []string) *AppError {
	e := New(http.StatusBadRequest, "Validation failed", nil)
	e.Errors = messages
	return e
}

func MethodNotAllowed() *AppError {
	return New(http.StatusMethodNotAllowed, "Method not allowed.", nil)
}

// DeliveryFailure keeps the transport diagnostic in Err for logging only.
func DeliveryFailure(diagnostic string) *AppError {
	return New(http.StatusBadGateway, "Could not send email at this time.", errors.New(diagnostic))
}

func Internal(err error) *AppError {
	return New(http.StatusInternalServerError, "Internal Server Error", err)
}

func NotFound(message string) *AppError {
	return New(http.StatusNotFound, message, nil)
}
