// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStoreWithDir(t.TempDir())
	if err != nil {
		t.Fatalf("NewStoreWithDir() error = %v", err)
	}
	return store
}

func TestStore_SetGet(t *testing.T) {
	store := newTestStore(t)

	if _, ok := store.Get(); ok {
		t.Fatal("empty store should report no credential")
	}

	if err := store.Set("Bearer abc123", 1); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	cred, ok := store.Get()
	if !ok {
		t.Fatal("Get() after Set() should find the credential")
	}
	if cred != "Bearer abc123" {
		t.Errorf("Get() = %q, want %q", cred, "Bearer abc123")
	}
	if store.IsExpired() {
		t.Error("fresh credential should not be expired")
	}
}

func TestStore_Clear(t *testing.T) {
	store := newTestStore(t)

	if err := store.Set("Bearer abc", 1); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := store.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}

	if _, ok := store.Get(); ok {
		t.Error("Get() after Clear() should find nothing")
	}
	if !store.IsExpired() {
		t.Error("cleared store should report expired")
	}

	// Clearing an already-empty store is not an error.
	if err := store.Clear(); err != nil {
		t.Errorf("Clear() on empty store error = %v", err)
	}
}

func TestStore_IsExpired(t *testing.T) {
	store := newTestStore(t)

	if !store.IsExpired() {
		t.Error("store without expiry marker should be expired")
	}

	if err := store.Set("Bearer abc", 1); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	// Rewrite the marker with a timestamp in the past. The credential
	// file stays; expiry is tracked independently of it.
	past := time.Now().Add(-time.Hour).Unix()
	expiryPath := filepath.Join(store.BaseDir, expiryFile)
	if err := os.WriteFile(expiryPath, []byte(strconv.FormatInt(past, 10)), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if !store.IsExpired() {
		t.Error("credential past its expiry marker should be expired")
	}
	if _, ok := store.Get(); !ok {
		t.Error("expired credential should still be readable")
	}
}

func TestStore_CorruptExpiryMarker(t *testing.T) {
	store := newTestStore(t)
	if err := store.Set("Bearer abc", 1); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	expiryPath := filepath.Join(store.BaseDir, expiryFile)
	if err := os.WriteFile(expiryPath, []byte("not-a-number"), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if !store.IsExpired() {
		t.Error("unparseable expiry marker should count as expired")
	}
}

func TestCredentialFormats(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"basic", BasicCredential("user", "pass"), "Basic dXNlcjpwYXNz"},
		{"bearer", BearerCredential("jwt-token"), "Bearer jwt-token"},
		{"provider", ProviderCredential("google", "tok"), "google tok"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.got != tc.want {
				t.Errorf("got %q, want %q", tc.got, tc.want)
			}
		})
	}
}
