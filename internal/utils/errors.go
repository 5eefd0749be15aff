package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// CustomError is an error carrying the HTTP status the API should answer with.
type CustomError struct {
	Code    int
	Message string
}

func (e *CustomError) Error() string {
	return e.Message
}

func New(code int, message string) error {
	return &CustomError{
		Code:    code,
		Message: message,
	}
}

// Invalid returns a 400 error with a formatted message.
func Invalid(format string, args ...any) error {
	return New(http.StatusBadRequest, fmt.Sprintf(format, args...))
}

var (
	ErrNotFound           = New(http.StatusNotFound, "not found")
	ErrForbidden          = New(http.StatusForbidden, "forbidden")
	ErrConflict           = New(http.StatusConflict, "conflict")
	ErrUnauthorized       = New(http.StatusUnauthorized, "unauthorized")
	ErrInvalidCredentials = New(http.StatusUnauthorized, "invalid credentials")
	ErrTooLarge           = New(http.StatusRequestEntityTooLarge, "payload too large")
)

// StatusOf returns the status carried by the first CustomError in err's
// chain, or 500 when there is none.
func StatusOf(err error) int {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return http.StatusInternalServerError
}
