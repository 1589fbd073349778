// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey_Id(t *testing.T) {
	tests := []struct {
		name string
		a, b Key
		same bool
	}{
		{"identical keys", NewKey("history", "u1"), NewKey("history", "u1"), true},
		{"different params", NewKey("history", "u1"), NewKey("history", "u2"), false},
		{"different query", NewKey("history", "u1"), NewKey("messages", "u1"), false},
		{"param boundary", NewKey("q", "a", "bc"), NewKey("q", "ab", "c"), false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.id() == tc.b.id(); got != tc.same {
				t.Errorf("id equality = %v, want %v", got, tc.same)
			}
		})
	}
}

func TestStore_CachesUntilInvalidated(t *testing.T) {
	store := NewStore()
	key := NewKey("flows")

	var calls atomic.Int32
	loader := func(ctx context.Context) (any, error) {
		calls.Add(1)
		return "flows-v1", nil
	}

	for i := 0; i < 3; i++ {
		res := store.Request(context.Background(), key, loader)
		require.NoError(t, res.Err)
		assert.Equal(t, "flows-v1", res.Data)
	}
	assert.Equal(t, int32(1), calls.Load(), "cached key should load once")

	store.Invalidate(key)
	res := store.Request(context.Background(), key, loader)
	require.NoError(t, res.Err)
	assert.Equal(t, int32(2), calls.Load(), "invalidated key should reload")
}

func TestStore_ZeroKeySuppresses(t *testing.T) {
	store := NewStore()

	res := store.Request(context.Background(), Key{}, func(ctx context.Context) (any, error) {
		t.Fatal("loader must not run for a zero key")
		return nil, nil
	})

	assert.True(t, res.Suppressed)
	assert.Nil(t, res.Data)
	assert.NoError(t, res.Err)
}

func TestStore_ErrorsNotCached(t *testing.T) {
	store := NewStore()
	key := NewKey("history", "u1")

	var calls atomic.Int32
	fail := errors.New("boom")
	loader := func(ctx context.Context) (any, error) {
		if calls.Add(1) == 1 {
			return nil, fail
		}
		return "ok", nil
	}

	res := store.Request(context.Background(), key, loader)
	assert.ErrorIs(t, res.Err, fail)

	res = store.Request(context.Background(), key, loader)
	require.NoError(t, res.Err)
	assert.Equal(t, "ok", res.Data, "failed load should be retried, not cached")
}

func TestStore_ConcurrentRequestsShareOneFlight(t *testing.T) {
	store := NewStore()
	key := NewKey("messages", "chat-1")

	var calls atomic.Int32
	gate := make(chan struct{})
	loader := func(ctx context.Context) (any, error) {
		calls.Add(1)
		<-gate
		return []string{"m1", "m2"}, nil
	}

	const n = 20
	var wg sync.WaitGroup
	results := make([]Result, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = store.Request(context.Background(), key, loader)
		}(i)
	}

	close(gate)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load(), "concurrent identical keys must share one in-flight load")
	for _, res := range results {
		require.NoError(t, res.Err)
		assert.Equal(t, []string{"m1", "m2"}, res.Data)
	}
}

func TestStore_InvalidateQuery(t *testing.T) {
	store := NewStore()
	load := func(v string) Loader {
		return func(ctx context.Context) (any, error) { return v, nil }
	}

	store.Request(context.Background(), NewKey("messages", "c1"), load("a"))
	store.Request(context.Background(), NewKey("messages", "c2"), load("b"))
	store.Request(context.Background(), NewKey("flows"), load("c"))

	store.InvalidateQuery("messages")

	_, ok := store.Peek(NewKey("messages", "c1"))
	assert.False(t, ok)
	_, ok = store.Peek(NewKey("messages", "c2"))
	assert.False(t, ok)
	_, ok = store.Peek(NewKey("flows"))
	assert.True(t, ok, "other queries must survive InvalidateQuery")
}
