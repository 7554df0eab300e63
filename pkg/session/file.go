package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FileStore keeps one JSON file per OAuth client under a directory. Files
// hold bearer tokens, so they are written with mode 0600 and replaced
// atomically.
type FileStore struct {
	mu  sync.RWMutex
	dir string
}

// DefaultDir returns the session directory, ~/.config/fusiongraph/sessions
// on Linux.
func DefaultDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("get config dir: %w", err)
	}
	return filepath.Join(dir, "fusiongraph", "sessions"), nil
}

// NewFileStore creates the store under dir, or under [DefaultDir] when dir
// is empty.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		var err error
		if dir, err = DefaultDir(); err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) file(id string) string {
	return filepath.Join(s.dir, id+".json")
}

// Get returns the token stored under id. Expired tokens are removed and
// reported as absent.
func (s *FileStore) Get(_ context.Context, id string) (*Session, error) {
	s.mu.RLock()
	sess, err := s.read(s.file(id))
	s.mu.RUnlock()
	if err != nil || sess == nil {
		return nil, err
	}
	if sess.IsExpired() {
		return nil, s.Delete(context.Background(), id)
	}
	return sess, nil
}

func (s *FileStore) read(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("parse session %s: %w", filepath.Base(path), err)
	}
	return &sess, nil
}

// Set writes sess to a temporary file and renames it over the old token.
func (s *FileStore) Set(_ context.Context, sess *Session) error {
	if sess.ID == "" {
		return fmt.Errorf("session without id")
	}
	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, "."+sess.ID+"-*")
	if err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write session: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.file(sess.ID)); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// Delete removes the token stored under id. A missing token is not an error.
func (s *FileStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.file(id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

// Prune removes the expired tokens of every client and returns how many
// were removed. Unreadable files are left alone.
func (s *FileStore) Prune(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("read session dir: %w", err)
	}
	removed := 0
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") || filepath.Ext(name) != ".json" {
			continue
		}
		sess, err := s.read(filepath.Join(s.dir, name))
		if err != nil || sess == nil || !sess.IsExpired() {
			continue
		}
		if os.Remove(filepath.Join(s.dir, name)) == nil {
			removed++
		}
	}
	return removed, nil
}

// Dir returns the session directory.
func (s *FileStore) Dir() string { return s.dir }

var _ Store = (*FileStore)(nil)

// CLIStore is the token of one OAuth client, as used by the CLI.
type CLIStore struct {
	*FileStore
	id string
}

// NewCLIStore opens the token of clientID under dir (the default session
// directory when empty).
func NewCLIStore(dir, clientID string) (*CLIStore, error) {
	fs, err := NewFileStore(dir)
	if err != nil {
		return nil, err
	}
	return &CLIStore{FileStore: fs, id: IDFor(clientID)}, nil
}

// GetSession returns the stored token, or nil when there is no valid one.
func (c *CLIStore) GetSession(ctx context.Context) (*Session, error) {
	return c.Get(ctx, c.id)
}

// SaveSession stores sess as the client's token.
func (c *CLIStore) SaveSession(ctx context.Context, sess *Session) error {
	sess.ID = c.id
	return c.Set(ctx, sess)
}

// DeleteSession removes the client's token.
func (c *CLIStore) DeleteSession(ctx context.Context) error {
	return c.Delete(ctx, c.id)
}

// Path returns the file holding the client's token.
func (c *CLIStore) Path() string { return c.file(c.id) }
