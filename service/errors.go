package service

import (
	"errors"
	"fmt"

	"github.com/emzola/bookform/data"
	"github.com/emzola/bookform/repository"
)

var (
	ErrFailedValidation = errors.New("failed validation")
	ErrRecordNotFound   = errors.New("record not found")
	ErrNotEditing       = errors.New("no record is being edited")
	ErrUnknownAction    = errors.New("unknown action")
)

// Operation names used in request failure messages.
const (
	OpFetch  = "fetch"
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
	OpLoad   = "load"
)

// RequestError is a failed call to the book API: a transport failure or a
// non-2xx status. Message is what the user sees.
type RequestError struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *RequestError) Error() string {
	return e.Message
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// Is makes a 404 from the book API match ErrRecordNotFound.
func (e *RequestError) Is(target error) bool {
	return target == ErrRecordNotFound && errors.Is(e.Err, repository.ErrRecordNotFound)
}

// newRequestError describes err for operation op. notFound, when set,
// replaces the generic message for a missing record.
func newRequestError(op string, err error, notFound string) *RequestError {
	re := &RequestError{Op: op, Err: err}
	var serr *repository.StatusError
	if errors.As(err, &serr) {
		re.Status = serr.StatusCode
	}
	switch {
	case notFound != "" && errors.Is(err, repository.ErrRecordNotFound):
		re.Message = notFound
	case re.Status != 0:
		re.Message = fmt.Sprintf("%s failed: %d", op, re.Status)
	default:
		re.Message = fmt.Sprintf("%s failed: %v", op, err)
	}
	return re
}

// failedValidation wraps a validation rejection so that it matches
// ErrFailedValidation and still exposes the *data.ValidationError.
func failedValidation(err error) error {
	return fmt.Errorf("%w: %w", ErrFailedValidation, err)
}

// feedbackMessage returns the text shown to the user for err.
func feedbackMessage(err error) string {
	var verr *data.ValidationError
	if errors.As(err, &verr) {
		return verr.Reason
	}
	var rerr *RequestError
	if errors.As(err, &rerr) {
		return rerr.Message
	}
	return err.Error()
}
