package utils

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestCustomErrorUnwrapping(t *testing.T) {
	err := fmt.Errorf("loading booking: %w", New(http.StatusNotFound, "Booking not found"))
	if StatusCode(err) != http.StatusNotFound || Message(err) != "Booking not found" {
		t.Errorf("unexpected code/message %d %q", StatusCode(err), Message(err))
	}
	plain := errors.New("disk full")
	if StatusCode(plain) != http.StatusInternalServerError || Message(plain) != "Internal Server Error" {
		t.Errorf("unexpected fallback %d %q", StatusCode(plain), Message(plain))
	}
}
