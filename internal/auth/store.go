// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ShragaAI/shraga-ui/internal/util"
)

// DefaultTTLHours is how long a stored credential stays valid when the
// caller does not specify a lifetime.
const DefaultTTLHours = 24

const (
	credentialFile = "credential"
	expiryFile     = "credential_expiry"
)

// =============================================================================
// CREDENTIAL STORE
// =============================================================================

// Store persists a bearer credential and its expiry under a base
// directory (default ~/.shraga). Files are written atomically with 0600
// permissions.
type Store struct {
	// BaseDir is the directory holding the credential files.
	BaseDir string
}

// NewStore creates a credential store under ~/.shraga.
func NewStore() (*Store, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return NewStoreWithDir(filepath.Join(homeDir, ".shraga"))
}

// NewStoreWithDir creates a credential store under a custom directory.
func NewStoreWithDir(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, err
	}
	return &Store{BaseDir: baseDir}, nil
}

// Get returns the stored credential. The second return value is false
// when no credential is stored.
func (s *Store) Get() (string, bool) {
	data, err := os.ReadFile(filepath.Join(s.BaseDir, credentialFile))
	if err != nil {
		return "", false
	}
	cred := strings.TrimSpace(string(data))
	if cred == "" {
		return "", false
	}
	return cred, true
}

// Set stores the credential and writes the expiry marker ttlHours from
// now. A ttlHours of zero or less falls back to DefaultTTLHours.
func (s *Store) Set(credential string, ttlHours int) error {
	if ttlHours <= 0 {
		ttlHours = DefaultTTLHours
	}

	credPath := filepath.Join(s.BaseDir, credentialFile)
	if err := util.AtomicWriteFile(credPath, []byte(credential), 0600); err != nil {
		return err
	}

	expiry := time.Now().Add(time.Duration(ttlHours) * time.Hour)
	expiryPath := filepath.Join(s.BaseDir, expiryFile)
	return util.AtomicWriteFile(expiryPath, []byte(strconv.FormatInt(expiry.Unix(), 10)), 0600)
}

// Clear removes both the credential and the expiry marker.
func (s *Store) Clear() error {
	var firstErr error
	for _, name := range []string{credentialFile, expiryFile} {
		if err := os.Remove(filepath.Join(s.BaseDir, name)); err != nil && !os.IsNotExist(err) {
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// IsExpired reports whether the stored credential is past its expiry
// marker. A missing or unreadable marker counts as expired: without it
// there is no way to prove the credential is still fresh.
func (s *Store) IsExpired() bool {
	data, err := os.ReadFile(filepath.Join(s.BaseDir, expiryFile))
	if err != nil {
		return true
	}
	unix, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return true
	}
	return time.Now().After(time.Unix(unix, 0))
}

// =============================================================================
// CREDENTIAL FORMATS
// =============================================================================

// The backend accepts three Authorization header shapes: HTTP basic,
// a JWT bearer, or a provider-prefixed OAuth token ("google <token>").

// BasicCredential builds a Basic authorization value from a username and
// password.
func BasicCredential(username, password string) string {
	encoded := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
	return "Basic " + encoded
}

// BearerCredential builds a Bearer authorization value from a JWT.
func BearerCredential(token string) string {
	return "Bearer " + token
}

// ProviderCredential builds a provider-prefixed authorization value for
// OAuth tokens, e.g. "google <token>".
func ProviderCredential(provider, token string) string {
	return provider + " " + token
}
