// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cache

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

// =============================================================================
// CACHE KEYS
// =============================================================================

// Key identifies a logical query: a query name plus the parameters that
// scope it (credential fingerprint, chat id, ...). The zero Key
// suppresses the request entirely, which callers use to gate fetches on
// preconditions such as "history enabled" or "a chat is selected".
type Key struct {
	Query  string
	Params []string
}

// NewKey builds a cache key from a query name and its parameters.
func NewKey(query string, params ...string) Key {
	return Key{Query: query, Params: params}
}

// IsZero reports whether the key suppresses its request.
func (k Key) IsZero() bool {
	return k.Query == ""
}

// id renders the key as a single string for map addressing. The unit
// separator keeps "a","bc" distinct from "ab","c".
func (k Key) id() string {
	if len(k.Params) == 0 {
		return k.Query
	}
	return k.Query + "\x1f" + strings.Join(k.Params, "\x1f")
}

// =============================================================================
// STORE
// =============================================================================

// Loader fetches the value for a key. It is invoked at most once per key
// while a result is cached, regardless of how many callers request it.
type Loader func(ctx context.Context) (any, error)

// Result is the outcome of a cache request.
type Result struct {
	// Data is the cached or freshly loaded value. Nil when suppressed
	// or when the loader failed.
	Data any
	// Err is the loader's error, if any. Errors are not cached: the
	// next request for the key retries the loader.
	Err error
	// Suppressed is true when the request was gated off by a zero key.
	Suppressed bool
}

// Store is the deduplicating cache. The zero value is not usable; use
// NewStore.
type Store struct {
	mu      sync.RWMutex
	entries map[string]any

	group singleflight.Group
}

// NewStore creates an empty cache store.
func NewStore() *Store {
	return &Store{entries: make(map[string]any)}
}

// Request returns the cached value for key, or runs loader to populate
// it. Concurrent calls with an identical key share one in-flight loader
// call. A zero key suppresses the request and returns immediately.
func (s *Store) Request(ctx context.Context, key Key, loader Loader) Result {
	if key.IsZero() {
		return Result{Suppressed: true}
	}

	id := key.id()

	s.mu.RLock()
	value, ok := s.entries[id]
	s.mu.RUnlock()
	if ok {
		return Result{Data: value}
	}

	value, err, _ := s.group.Do(id, func() (any, error) {
		// Another caller may have populated the entry between the
		// read above and winning the flight.
		s.mu.RLock()
		cached, ok := s.entries[id]
		s.mu.RUnlock()
		if ok {
			return cached, nil
		}

		data, err := loader(ctx)
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		s.entries[id] = data
		s.mu.Unlock()
		return data, nil
	})
	if err != nil {
		return Result{Err: err}
	}
	return Result{Data: value}
}

// Invalidate drops the cached value for key. The next Request for the
// key re-runs its loader.
func (s *Store) Invalidate(key Key) {
	if key.IsZero() {
		return
	}
	s.mu.Lock()
	delete(s.entries, key.id())
	s.mu.Unlock()
}

// InvalidateQuery drops every cached entry for the given query name,
// regardless of parameters. Used on logout to flush all per-credential
// results at once.
func (s *Store) InvalidateQuery(query string) {
	prefix := query + "\x1f"
	s.mu.Lock()
	for id := range s.entries {
		if id == query || strings.HasPrefix(id, prefix) {
			delete(s.entries, id)
		}
	}
	s.mu.Unlock()
}

// Clear drops every cached entry.
func (s *Store) Clear() {
	s.mu.Lock()
	s.entries = make(map[string]any)
	s.mu.Unlock()
}

// Peek returns the cached value without triggering a load.
func (s *Store) Peek(key Key) (any, bool) {
	if key.IsZero() {
		return nil, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.entries[key.id()]
	return value, ok
}
