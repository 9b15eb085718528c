package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// User is the identity half of a session.
type User struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

// Session holds the bearer credential and the user it belongs to.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Store persists the session to a JSON file, the terminal equivalent of
// the token/user keys a browser keeps in local storage. All writes are
// synchronous.
type Store struct {
	path string
}

// NewStore creates a store backed by the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// DefaultPath returns the session file location under the user's home.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".railbook", "session.json"), nil
}

// Save writes the session, creating the parent directory if needed.
func (s *Store) Save(sess Session) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("creating session directory: %w", err)
	}
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("writing session file: %w", err)
	}
	return nil
}

// Current returns the stored session, or nil when no one is logged in.
func (s *Store) Current() (*Session, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading session file: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("parsing session file: %w", err)
	}
	if sess.Token == "" {
		return nil, nil
	}
	return &sess, nil
}

// Token returns the stored credential, or "" when absent or unreadable.
func (s *Store) Token() string {
	sess, err := s.Current()
	if err != nil || sess == nil {
		return ""
	}
	return sess.Token
}

// Clear removes the session. Clearing an absent session is not an error.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing session file: %w", err)
	}
	return nil
}
