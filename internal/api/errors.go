package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// GenericErrorMessage is shown when a failed response carries nothing usable.
const GenericErrorMessage = "Something went wrong. Please try again."

// FetchErrorKind classifies read failures.
type FetchErrorKind int

const (
	FetchHTTPStatus FetchErrorKind = iota
	FetchParseFailure
	FetchNetwork
)

func (k FetchErrorKind) String() string {
	switch k {
	case FetchHTTPStatus:
		return "http status"
	case FetchParseFailure:
		return "parse failure"
	case FetchNetwork:
		return "network"
	}
	return "unknown"
}

// FetchError is returned by FetchList and LoadDetail.
type FetchError struct {
	Kind       FetchErrorKind
	StatusCode int
	Message    string
	Err        error
}

func (e *FetchError) Error() string {
	switch e.Kind {
	case FetchHTTPStatus:
		return fmt.Sprintf("fetch failed with status %d: %s", e.StatusCode, e.Message)
	case FetchParseFailure:
		return fmt.Sprintf("fetch returned an unreadable body: %v", e.Err)
	default:
		return fmt.Sprintf("fetch failed: %v", e.Err)
	}
}

func (e *FetchError) Unwrap() error { return e.Err }

// MutationErrorKind classifies write failures.
type MutationErrorKind int

const (
	MutationValidation MutationErrorKind = iota
	MutationRemote
	MutationNetwork
)

func (k MutationErrorKind) String() string {
	switch k {
	case MutationValidation:
		return "validation"
	case MutationRemote:
		return "remote"
	case MutationNetwork:
		return "network"
	}
	return "unknown"
}

// MutationError is returned by Create, Update, UpdateStatus and Delete, and by
// local validation before any of them is attempted.
type MutationError struct {
	Kind       MutationErrorKind
	Field      string
	StatusCode int
	Message    string
	Err        error
}

func (e *MutationError) Error() string {
	switch e.Kind {
	case MutationValidation:
		if e.Message != "" {
			return e.Message
		}
		return fmt.Sprintf("%s is required", e.Field)
	case MutationRemote:
		return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, e.Message)
	default:
		return fmt.Sprintf("request failed: %v", e.Err)
	}
}

func (e *MutationError) Unwrap() error { return e.Err }

// ValidationError builds a MutationValidation error for field.
func ValidationError(field, message string) *MutationError {
	return &MutationError{Kind: MutationValidation, Field: field, Message: message}
}

// serverMessage extracts a user-facing message from an error response body.
// JSON bodies may carry message, Message or error; plain text is used as is;
// otherwise the HTTP status text, and finally a generic message.
func serverMessage(status int, body []byte) string {
	text := strings.TrimSpace(string(body))
	if text != "" {
		var obj map[string]any
		if err := json.Unmarshal([]byte(text), &obj); err == nil {
			for _, key := range []string{"message", "Message", "error", "Error"} {
				if s, ok := obj[key].(string); ok && strings.TrimSpace(s) != "" {
					return s
				}
			}
		} else if !json.Valid([]byte(text)) {
			return text
		}
	}
	if st := http.StatusText(status); st != "" {
		return st
	}
	return GenericErrorMessage
}
