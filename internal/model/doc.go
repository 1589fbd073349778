// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chats, messages and flows.
//
// # Key Types
//
//   - Flow: a backend-defined conversation pipeline with preferences
//   - Chat: one conversation instance bound to a Flow
//   - Message: a single user/system/feedback message
//   - RetrievalResult: a citation attached to a system response
//
// # Invariants
//
// Chat ids are unique across the chat list. Message positions are
// monotonically increasing per chat, assigned as prevMax+1 starting at 0
// when a user message is sent, and never reassigned retroactively.
// Chats are mutated only through the session manager.
package model
