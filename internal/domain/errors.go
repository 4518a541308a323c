// Package domain defines core types, interfaces, and errors for sensitive column discovery.
package domain

import (
	"fmt"
	"strings"
)

// ValidationError indicates invalid configuration or a malformed policy document.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ConnectivityError indicates a failure to open, acquire from, or execute
// against a database connection pool.
type ConnectivityError struct {
	Op  string
	Err error
}

func (e *ConnectivityError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *ConnectivityError) Unwrap() error { return e.Err }

// DiscoveryError indicates that no eligible columns were found.
type DiscoveryError struct {
	Message string
}

func (e *DiscoveryError) Error() string { return e.Message }

// ColumnFailure records one column whose classification failed.
type ColumnFailure struct {
	Column string
	Err    error
}

// ClassificationError aggregates per-column classification failures.
type ClassificationError struct {
	Failures []ColumnFailure
}

func (e *ClassificationError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, f.Column+": "+f.Err.Error())
	}
	return fmt.Sprintf("classification failed for %d column(s): %s", len(e.Failures), strings.Join(parts, "; "))
}

// ErrValidation creates a ValidationError with a formatted message.
func ErrValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ErrConnectivity wraps err as a ConnectivityError for the named operation.
func ErrConnectivity(op string, err error) *ConnectivityError {
	return &ConnectivityError{Op: op, Err: err}
}

// ErrDiscovery creates a DiscoveryError with a formatted message.
func ErrDiscovery(format string, args ...interface{}) *DiscoveryError {
	return &DiscoveryError{Message: fmt.Sprintf(format, args...)}
}
