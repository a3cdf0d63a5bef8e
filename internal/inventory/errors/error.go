// Package errors provides the error taxonomy for inventory operations.
package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrDuplicateKey = errors.New("product already exists")
	ErrNotFound     = errors.New("product not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrCorruptState = errors.New("corrupt inventory state")
	ErrIOFailure    = errors.New("inventory i/o failure")
)

// ValidationError reports the fields that failed validation, keyed by field name.
// It matches ErrInvalidInput with errors.Is.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s failed on rule: %s", k, e.Fields[k]))
	}
	return fmt.Sprintf("%s: %s", ErrInvalidInput, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}
