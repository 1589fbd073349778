// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package catalog maintains the client-side view of the backend's flow
// catalog.
//
// Flows are fetched once through the deduplicating cache and served from
// memory until Refresh invalidates them. Preference resolution is
// always computed from the latest cached catalog, so a chat created
// before a flow definition changed still picks up the new defaults the
// next time its preferences are resolved.
//
// # Key Types
//
//   - Catalog: cached flow lookup and preference resolution.
//
// # Usage
//
//	cat := catalog.New(client, store)
//	flows, err := cat.Flows(ctx)
//	prefs := cat.ResolvePreferences(ctx, "faq")
package catalog
