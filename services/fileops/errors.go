package fileops

import (
	"errors"
	"fmt"
)

// ErrorCategory classifies why a download request failed.
type ErrorCategory string

// Error categories, in the order a request can hit them.
const (
	CategoryClient     ErrorCategory = "client"
	CategoryConnection ErrorCategory = "connection"
	CategoryListing    ErrorCategory = "listing"
	CategoryFetch      ErrorCategory = "fetch"
	CategoryCleanup    ErrorCategory = "cleanup"
	CategoryInternal   ErrorCategory = "internal"
)

// FetchError is returned by FetchFiles for every failed request.
// RequestID and Logs let callers report the partial step log of an aborted request.
type FetchError struct {
	Category  ErrorCategory
	Op        string
	Fields    []string // client errors only: the offending request fields
	Err       error
	RequestID string
	Logs      []string
}

func (e *FetchError) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// CategoryOf returns the category of err, or CategoryInternal for foreign errors.
func CategoryOf(err error) ErrorCategory {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Category
	}
	return CategoryInternal
}

// IsCategory reports whether err is a FetchError of category c.
func IsCategory(err error, c ErrorCategory) bool {
	return err != nil && CategoryOf(err) == c
}
