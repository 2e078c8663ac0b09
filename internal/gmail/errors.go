package gmail

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"
)

// ErrorKind classifies failures returned by the Gmail API boundary so callers
// can distinguish not-found from bad input from everything else without
// string-matching error text.
type ErrorKind int

const (
	// ErrorOther covers transport and API failures that carry no more
	// specific meaning for callers.
	ErrorOther ErrorKind = iota
	// ErrorNotFound means the referenced message, draft, label or
	// attachment does not exist.
	ErrorNotFound
	// ErrorInvalidArgument means the API rejected the request contents,
	// typically an invalid label ID.
	ErrorInvalidArgument
	// ErrorConflict means the resource already exists, e.g. a duplicate
	// label name.
	ErrorConflict
)

// APIError wraps a Gmail API failure with its classified kind, the operation
// that failed and the resource ID involved.
type APIError struct {
	Kind ErrorKind
	Op   string
	ID   string
	Err  error
}

func (e *APIError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.ID, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// classifyError converts an error from the Gmail API into an APIError,
// mapping HTTP status codes onto error kinds.
func classifyError(op, id string, err error) error {
	if err == nil {
		return nil
	}
	kind := ErrorOther
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusNotFound:
			kind = ErrorNotFound
		case http.StatusBadRequest:
			kind = ErrorInvalidArgument
		case http.StatusConflict:
			kind = ErrorConflict
		}
	}
	return &APIError{Kind: kind, Op: op, ID: id, Err: err}
}

// IsNotFound reports whether err represents a not-found API failure.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == ErrorNotFound
}

// IsInvalidArgument reports whether err represents a rejected request.
func IsInvalidArgument(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == ErrorInvalidArgument
}

// IsConflict reports whether err represents a resource conflict.
func IsConflict(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == ErrorConflict
}
