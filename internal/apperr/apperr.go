// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package apperr defines the structured error values surfaced by the
// catalog API. Each error carries a stable classification code so the
// admin UI can render a distinct prompt for each failure mode (for
// example, offering a force-delete confirmation on HAS_CHILDREN).
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies an API error. Codes are part of the wire contract and
// must not change once clients depend on them.
type Code string

const (
	CodeValidation   Code = "VALIDATION_ERROR"
	CodeNotFound     Code = "NOT_FOUND"
	CodeCycle        Code = "CYCLE_DETECTED"
	CodeHasChildren  Code = "HAS_CHILDREN"
	CodeHasLeafRefs  Code = "HAS_LEAF_REFERENCES"
	CodeConflict     Code = "CONFLICT"
	CodeTransaction  Code = "TRANSACTION_ERROR"
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeForbidden    Code = "FORBIDDEN"

	// CodeRateLimited is emitted by the login rate limiter middleware.
	CodeRateLimited Code = "RATE_LIMITED"
)

// Error is a classified API error with optional structured details
// (counts, names, offending ids) the caller can act on.
type Error struct {
	Code    Code           `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`

	// wrapped holds the underlying cause for TRANSACTION_ERROR values.
	wrapped error
}

func (e *Error) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.wrapped)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e *Error) Unwrap() error { return e.wrapped }

// HTTPStatus maps the classification to an HTTP response status.
func (e *Error) HTTPStatus() int {
	switch e.Code {
	case CodeValidation:
		return http.StatusUnprocessableEntity
	case CodeNotFound:
		return http.StatusNotFound
	case CodeCycle, CodeHasChildren, CodeHasLeafRefs, CodeConflict:
		return http.StatusConflict
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Validation reports a missing or malformed input field.
func Validation(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFound reports a missing entity or dangling reference.
func NotFound(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// Cycle reports a reparent that would make a node its own ancestor.
// path lists the ancestor chain walked from the proposed parent.
func Cycle(nodeID, parentID int64, path []int64) *Error {
	return &Error{
		Code: CodeCycle,
		Message: fmt.Sprintf(
			"cannot move node %d under node %d: node %d is a descendant of node %d",
			nodeID, parentID, parentID, nodeID),
		Details: map[string]any{
			"node_id":   nodeID,
			"parent_id": parentID,
			"path":      path,
		},
	}
}

// HasChildren blocks a non-forced delete because child nodes exist.
func HasChildren(count int, names []string) *Error {
	return &Error{
		Code:    CodeHasChildren,
		Message: fmt.Sprintf("node has %d child node(s); delete them first or pass force=true", count),
		Details: map[string]any{
			"children_count": count,
			"children_names": names,
		},
	}
}

// HasLeafRefs blocks a non-forced delete because leaf records still
// reference the node. sample carries at most a handful of referencing
// entity names for the confirmation dialog.
func HasLeafRefs(count int, sample []string) *Error {
	return &Error{
		Code:    CodeHasLeafRefs,
		Message: fmt.Sprintf("node is referenced by %d record(s); pass force=true to cascade", count),
		Details: map[string]any{
			"references_count":  count,
			"references_sample": sample,
		},
	}
}

// Conflict reports a uniqueness violation.
func Conflict(format string, args ...any) *Error {
	return &Error{Code: CodeConflict, Message: fmt.Sprintf(format, args...)}
}

// Transaction wraps a store failure that triggered a rollback.
func Transaction(err error) *Error {
	return &Error{Code: CodeTransaction, Message: "operation failed and was rolled back", wrapped: err}
}

// Unauthorized reports a missing or invalid session.
func Unauthorized(msg string) *Error {
	return &Error{Code: CodeUnauthorized, Message: msg}
}

// Forbidden reports an authenticated caller lacking permission.
func Forbidden(msg string) *Error {
	return &Error{Code: CodeForbidden, Message: msg}
}

// From extracts the *Error from an error chain, or wraps an arbitrary
// error as TRANSACTION_ERROR so handlers always have a classification.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Transaction(err)
}
