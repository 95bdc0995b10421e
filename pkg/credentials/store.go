// Package credentials stores Nexus login credentials for the CLI.
//
// Credentials are written as a JSON file under ~/.config/nexport/ with
// 0600 permissions so that "nexport auth login" only has to be run once
// per server. Environment variables and flags always take precedence
// over the stored values.
package credentials

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const credentialsFile = "credentials.json"

// Credentials holds a saved Nexus login.
type Credentials struct {
	Server   string    `json:"server"`
	Username string    `json:"username"`
	Password string    `json:"password"`
	SavedAt  time.Time `json:"saved_at"`
}

// Store reads and writes the credentials file.
type Store struct {
	mu      sync.RWMutex
	baseDir string
}

// NewStore creates a credentials store rooted at baseDir.
// If baseDir is empty, defaults to ~/.config/nexport/
func NewStore(baseDir string) (*Store, error) {
	if baseDir == "" {
		if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
			baseDir = filepath.Join(configHome, "nexport")
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, fmt.Errorf("get home dir: %w", err)
			}
			baseDir = filepath.Join(home, ".config", "nexport")
		}
	}
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}
	return &Store{baseDir: baseDir}, nil
}

// Load returns the saved credentials, or nil when none are stored.
func (s *Store) Load() (*Credentials, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read credentials file: %w", err)
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	return &creds, nil
}

// Save writes the credentials with 0600 permissions.
func (s *Store) Save(creds *Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	creds.SavedAt = time.Now()
	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal credentials: %w", err)
	}
	if err := os.WriteFile(s.path(), data, 0600); err != nil {
		return fmt.Errorf("write credentials file: %w", err)
	}
	return nil
}

// Delete removes the stored credentials. Deleting when nothing is
// stored is not an error.
func (s *Store) Delete() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove credentials file: %w", err)
	}
	return nil
}

// Path returns the location of the credentials file.
func (s *Store) Path() string {
	return s.path()
}

func (s *Store) path() string {
	return filepath.Join(s.baseDir, credentialsFile)
}
