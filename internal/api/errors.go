// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"errors"
	"fmt"
)

// Error variables for common backend errors.
var (
	// ErrUnauthorized indicates the credential was rejected (HTTP 401).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotConfigured indicates the client has no base URL configured.
	ErrNotConfigured = errors.New("backend URL not configured")
)

// ValidationError is an HTTP 400 from the run endpoint. It is a
// user-facing input problem, not a conversation-level failure: the
// caller surfaces Detail out of band and leaves the chat untouched.
type ValidationError struct {
	Detail string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Detail == "" {
		return "validation error"
	}
	return e.Detail
}

// APIError is a non-OK, non-400 response from the backend. Trace and
// Payload are forwarded into the conversation's error bubble.
type APIError struct {
	Status  int
	Detail  string
	Trace   any
	Payload any
}

// Error implements the error interface.
func (e *APIError) Error() string {
	detail := e.Detail
	if detail == "" {
		detail = "An error occurred"
	}
	return fmt.Sprintf("backend error (HTTP %d): %s", e.Status, detail)
}

// UserMessage returns the text for the in-conversation error bubble.
func (e *APIError) UserMessage() string {
	if e.Detail == "" {
		return "An error occurred"
	}
	return e.Detail
}
