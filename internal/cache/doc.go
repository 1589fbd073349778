// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cache provides a request-deduplicating, key-addressed cache
// over asynchronous backend fetches.
//
// Each logical query (chat history, per-chat messages, flow catalog) is
// identified by a structured key: the query name plus its relevant
// parameters. Concurrent requests for an identical key share one
// in-flight call, and results stay cached until the key is invalidated.
//
// By policy there is no time-based revalidation: a cached result is
// considered valid until the key changes or Invalidate is called, so a
// background refresh never disrupts an active conversation.
package cache
