// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session implements the chat session state machine.
//
// The Manager owns the in-memory chat list, the selected chat, message
// appending, the outbound send lifecycle (send, abort-on-switch,
// timeout) and feedback submission. All mutation goes through the
// Manager under one lock; the presentation layer only ever sees clones.
//
// # Send lifecycle
//
// Exactly one in-flight send is tracked at a time through a single
// cancellation handle plus an epoch counter. Starting a new send
// supersedes the previous handle without cancelling it; switching the
// active chat or calling AbortMessage cancels it. Every send captures
// its chat id and epoch at start and re-checks the active-chat token
// before applying its result, so a stale response that lands after the
// user moved on is discarded rather than appended to the wrong chat.
//
// # Key Types
//
//   - Manager: the state machine.
//   - SendOptions: per-send callbacks and flags.
//
// # Usage
//
//	mgr := session.NewManager(client, cat)
//	mgr.CreateChat(flow)
//	go mgr.SendMessage(ctx, "hello", mgr.SelectedChatID(), session.SendOptions{
//	    OnSuccess: notifyUI,
//	    OnError:   showToast,
//	})
package session
