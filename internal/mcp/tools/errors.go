package tools

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/usestring/logviewer-mcp/pkg/types"
)

// Error codes for MCP tool responses.
const (
	ErrCodeInvalidInput      = "INVALID_INPUT"
	ErrCodeInvalidPattern    = "INVALID_PATTERN"
	ErrCodeEmptyText         = "EMPTY_TEXT"
	ErrCodeNotLogViewer      = "NOT_LOG_VIEWER"
	ErrCodeConflictingApp    = "CONFLICTING_APP"
	ErrCodeSessionClosed     = "SESSION_CLOSED"
	ErrCodeSourceUnavailable = "SOURCE_UNAVAILABLE"
	ErrCodeNoPreviousSearch  = "NO_PREVIOUS_SEARCH"
	ErrCodeTimeout           = "TIMEOUT"
	ErrCodeInternal          = "INTERNAL"
)

// CodedError is an error with an associated error code.
type CodedError struct {
	Code    string
	Message string
	Cause   error
}

func (e *CodedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *CodedError) Unwrap() error {
	return e.Cause
}

var codes = []struct {
	target error
	code   string
}{
	{types.ErrInvalidPattern, ErrCodeInvalidPattern},
	{types.ErrEmptyText, ErrCodeEmptyText},
	{types.ErrEmptyTerm, ErrCodeInvalidInput},
	{types.ErrNotLogViewer, ErrCodeNotLogViewer},
	{types.ErrConflictingApp, ErrCodeConflictingApp},
	{types.ErrSessionClosed, ErrCodeSessionClosed},
	{types.ErrSourceUnavailable, ErrCodeSourceUnavailable},
	{types.ErrNoPreviousSearch, ErrCodeNoPreviousSearch},
	{context.DeadlineExceeded, ErrCodeTimeout},
}

// codeOf maps a viewer error onto its tool error code.
func codeOf(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.target) {
			return c.code
		}
	}
	return ErrCodeInternal
}

// WrapViewerError converts a viewer error to a coded error. message is what
// the user heard; the error text is used when nothing was announced.
func WrapViewerError(err error, message string) error {
	if err == nil {
		return nil
	}
	var coded *CodedError
	if errors.As(err, &coded) {
		return coded
	}
	if message == "" {
		message = err.Error()
	}
	coded = &CodedError{Code: codeOf(err), Message: message, Cause: err}

	slog.Warn("log viewer command failed",
		slog.String("code", coded.Code),
		slog.String("message", coded.Message),
	)
	return coded
}

// ErrInvalidInput creates an invalid input error.
func ErrInvalidInput(message string) error {
	return &CodedError{
		Code:    ErrCodeInvalidInput,
		Message: message,
	}
}
