// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the shraga backend.
//
// The backend is treated as an opaque JSON-over-HTTP service: flows,
// chat history, the run endpoint and feedback submission, plus the
// authentication endpoints (whoami, oauth token exchange, login
// methods). All authenticated requests carry the credential from the
// auth store in the Authorization header.
//
// # Error taxonomy
//
//   - ErrUnauthorized: HTTP 401 on any authenticated call; triggers the
//     client's OnUnauthorized hook (global logout) before returning.
//   - *ValidationError: HTTP 400 from the run endpoint; carries the
//     server's detail for out-of-band display, never mutates chat state.
//   - *APIError: any other non-OK status; carries status, detail and
//     the trace/payload the server attached.
//   - Transport and parse failures are returned wrapped; callers decide
//     whether to roll back optimistic state.
package api
