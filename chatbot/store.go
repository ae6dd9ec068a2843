package chatbot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// SessionStore remembers the session ID between client runs
type SessionStore interface {
	//Load returns the stored session ID, or an empty string if none is stored
	Load() (string, error)
	//Save replaces the stored session ID
	Save(sessionID string) error
}

// SessionSource creates new sessions
type SessionSource interface {
	NewSession(ctx context.Context) (string, error)
}

// ResolveSession returns the session ID held by store, or asks src for a new
// one and saves it. A store that fails to load is treated as empty.
func ResolveSession(ctx context.Context, store SessionStore, src SessionSource) (string, error) {
	if id, err := store.Load(); err == nil && id != "" {
		return id, nil
	}

	id, err := src.NewSession(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}

	if err = store.Save(id); err != nil {
		return "", fmt.Errorf("failed to save session: %w", err)
	}

	return id, nil
}

// MemorySessionStore keeps the session ID for the life of the process
type MemorySessionStore struct {
	mu sync.Mutex
	id string
}

// Load implements SessionStore
func (s *MemorySessionStore) Load() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id, nil
}

// Save implements SessionStore
func (s *MemorySessionStore) Save(sessionID string) error {
	s.mu.Lock()
	s.id = sessionID
	s.mu.Unlock()
	return nil
}

// FileSessionStore keeps the session ID in a file
type FileSessionStore struct {
	Path string
}

// Load implements SessionStore. A missing file is not an error.
func (s *FileSessionStore) Load() (string, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read session file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Save implements SessionStore
func (s *FileSessionStore) Save(sessionID string) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	if err := os.WriteFile(s.Path, []byte(sessionID+"\n"), 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}
