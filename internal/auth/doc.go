// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth provides the credential store for the shraga client.
//
// The store persists a single bearer credential plus a separate expiry
// marker on disk. The expiry marker is independent of the credential
// file so an expired credential can be detected without parsing it.
//
// # Usage
//
//	store, _ := auth.NewStore()
//	store.Set(auth.BearerCredential(jwt), 24)
//	cred, ok := store.Get()
//
// The store makes no network calls; validating a credential against the
// backend is the API client's concern.
package auth
