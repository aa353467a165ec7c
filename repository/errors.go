package repository

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrRecordNotFound = errors.New("record not found")
)

// StatusError is returned when the book API answers with a non-2xx status.
// A 404 also matches ErrRecordNotFound.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d %s", e.Method, e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

func (e *StatusError) Is(target error) bool {
	return target == ErrRecordNotFound && e.StatusCode == http.StatusNotFound
}
