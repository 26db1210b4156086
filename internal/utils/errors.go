package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// CustomError carries an HTTP status code with a user-facing message.
type CustomError struct {
	Code    int
	Message string
}

func (e *CustomError) Error() string {
	return fmt.Sprintf("Code: %d, Message: %s", e.Code, e.Message)
}

func New(code int, message string) error {
	return &CustomError{
		Code:    code,
		Message: message,
	}
}

// StatusCode returns the code carried by err, or 500 for any other error.
func StatusCode(err error) int {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return http.StatusInternalServerError
}

func Message(err error) string {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce.Message
	}
	return http.StatusText(http.StatusInternalServerError)
}
