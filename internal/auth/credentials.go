// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/moazzam-qureshi/agentic-chat-ui/internal/config"
	"github.com/moazzam-qureshi/agentic-chat-ui/internal/util"
)

// =============================================================================
// CREDENTIALS
// =============================================================================

// ErrNotAuthenticated indicates no stored credentials exist. The caller
// should direct the user to log in.
var ErrNotAuthenticated = errors.New("not authenticated")

// Credentials holds the token pair issued by the server on login or refresh.
// Both tokens are opaque to the client.
type Credentials struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	SavedAt      time.Time `json:"saved_at"`
}

// Valid reports whether the credentials carry both tokens.
func (c Credentials) Valid() bool {
	return c.AccessToken != "" && c.RefreshToken != ""
}

// =============================================================================
// STORE INTERFACE
// =============================================================================

// Store persists session credentials across runs.
type Store interface {
	// Load returns the stored credentials, or ErrNotAuthenticated when
	// none exist.
	Load() (Credentials, error)
	// Save replaces the stored credentials.
	Save(Credentials) error
	// Clear removes the stored credentials. Clearing an empty store is
	// not an error.
	Clear() error
}

// =============================================================================
// FILE STORE
// =============================================================================

// credentialsFile is the filename inside the config directory.
const credentialsFile = "credentials.json"

// FileStore persists credentials as a JSON file with 0600 permissions.
// Writes are atomic so a crash never leaves a torn file.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a store at the default location
// (~/.agentic-chat/credentials.json).
func NewFileStore() (*FileStore, error) {
	dir, err := config.Dir()
	if err != nil {
		return nil, err
	}
	return NewFileStoreAt(filepath.Join(dir, credentialsFile)), nil
}

// NewFileStoreAt creates a store at an explicit path.
func NewFileStoreAt(path string) *FileStore {
	return &FileStore{path: path}
}

// Load implements Store.
func (s *FileStore) Load() (Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Credentials{}, ErrNotAuthenticated
		}
		return Credentials{}, fmt.Errorf("failed to read credentials: %w", err)
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return Credentials{}, fmt.Errorf("failed to parse credentials: %w", err)
	}
	if !creds.Valid() {
		return Credentials{}, ErrNotAuthenticated
	}
	return creds, nil
}

// Save implements Store.
func (s *FileStore) Save(creds Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !creds.Valid() {
		return errors.New("refusing to save incomplete credentials")
	}
	creds.SavedAt = time.Now().UTC()

	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}
	if err := util.AtomicWriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	return nil
}

// Clear implements Store.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove credentials: %w", err)
	}
	return nil
}

// =============================================================================
// MEMORY STORE
// =============================================================================

// MemoryStore keeps credentials in memory only. Used in tests and for
// ephemeral sessions where nothing should touch disk.
type MemoryStore struct {
	mu    sync.Mutex
	creds Credentials
	set   bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load implements Store.
func (s *MemoryStore) Load() (Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.set {
		return Credentials{}, ErrNotAuthenticated
	}
	return s.creds, nil
}

// Save implements Store.
func (s *MemoryStore) Save(creds Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = creds
	s.set = true
	return nil
}

// Clear implements Store.
func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = Credentials{}
	s.set = false
	return nil
}
