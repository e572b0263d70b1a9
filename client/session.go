package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/studysync/studysync-api/models"
)

// Session caches the bearer token and the signed-in profile between calls.
type Session interface {
	Token() string
	User() *models.User
	Save(token string, user *models.User) error
	Clear() error
}

type sessionState struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// MemorySession keeps the session for the life of the process.
type MemorySession struct {
	mu    sync.RWMutex
	state sessionState
}

func NewMemorySession() *MemorySession {
	return &MemorySession{}
}

func (s *MemorySession) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Token
}

func (s *MemorySession) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.User
}

func (s *MemorySession) Save(token string, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = sessionState{Token: token, User: user}
	return nil
}

func (s *MemorySession) Clear() error {
	return s.Save("", nil)
}

// FileSession persists the session as JSON so a restarted client is still signed in.
type FileSession struct {
	MemorySession
	path string
}

// OpenFileSession loads path if it exists. A missing file is an empty session.
func OpenFileSession(path string) (*FileSession, error) {
	s := &FileSession{path: path}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	if err := json.Unmarshal(data, &s.state); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", path, err)
	}
	return s, nil
}

func (s *FileSession) Save(token string, user *models.User) error {
	if err := s.MemorySession.Save(token, user); err != nil {
		return err
	}
	return s.flush()
}

func (s *FileSession) Clear() error {
	if err := s.MemorySession.Clear(); err != nil {
		return err
	}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

func (s *FileSession) flush() error {
	s.mu.RLock()
	data, err := json.Marshal(s.state)
	s.mu.RUnlock()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	return os.WriteFile(s.path, data, 0o600)
}
