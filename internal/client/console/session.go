// Package console implements the interactive admin console: session
// persistence, prompts, output and the command shell.
package console

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/atinyakov/PlantCare/internal/client/api"
)

// DefaultSessionFile is where the console keeps its tokens.
const DefaultSessionFile = ".plantcare-session.json"

// SessionStore persists a session token pair in a file readable only by
// its owner.
type SessionStore struct {
	Path string
	mu   sync.Mutex
}

type sessionFile struct {
	Tokens api.Tokens `json:"tokens"`
}

// Load returns the stored tokens. A missing file is an empty session.
func (s *SessionStore) Load() (api.Tokens, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return api.Tokens{}, nil
		}
		return api.Tokens{}, err
	}
	defer f.Close()

	var sf sessionFile
	if err := json.NewDecoder(f).Decode(&sf); err != nil {
		return api.Tokens{}, fmt.Errorf("decode session file: %w", err)
	}
	return sf.Tokens, nil
}

// Save writes t with mode 0600. An empty pair removes the file.
func (s *SessionStore) Save(t api.Tokens) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.Access == "" && t.Refresh == "" {
		if err := os.Remove(s.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		return nil
	}

	b, err := json.Marshal(sessionFile{Tokens: t})
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.Path, b, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	// WriteFile keeps the mode of an existing file.
	return os.Chmod(s.Path, 0o600)
}
