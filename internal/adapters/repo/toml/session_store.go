// Package toml persists the CLI session as a small TOML document.
package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/codex-platform/codex-cli/internal/domain"
	"github.com/codex-platform/codex-cli/internal/ports"
	toml "github.com/pelletier/go-toml/v2"
)

const (
	sessionFileMode = 0o600
	sessionDirMode  = 0o700
	tempFilePattern = ".session-*.toml.tmp"
)

// SessionStore keeps one session per file. Stores opened on the same path
// share a lock.
type SessionStore struct {
	path  string
	mu    *sync.RWMutex
	clock ports.Clock
}

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

var _ ports.SessionStore = (*SessionStore)(nil)

func NewSessionStore(path string, clock ports.Clock) (*SessionStore, error) {
	if path == "" {
		return nil, errors.New("session path is empty")
	}
	if clock == nil {
		clock = ports.SystemClock{}
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve session path: %w", err)
	}
	absPath = filepath.Clean(absPath)

	return &SessionStore{path: absPath, mu: lockForPath(absPath), clock: clock}, nil
}

func (s *SessionStore) Path() string {
	return s.path
}

// Role returns the stored role verbatim, unvalidated, for an authenticated
// session and "" otherwise.
func (s *SessionStore) Role(ctx context.Context) (domain.Role, error) {
	session, err := s.Load(ctx)
	if err != nil {
		return "", err
	}
	if !session.Authenticated {
		return "", nil
	}

	return session.Role, nil
}

func (s *SessionStore) Load(ctx context.Context) (domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return domain.Session{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	file, err := s.readSchema()
	if err != nil {
		return domain.Session{}, err
	}

	return fromSchema(file.Session), nil
}

func (s *SessionStore) Save(ctx context.Context, session domain.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !session.Role.Valid() {
		return fmt.Errorf("save session: %w: %q", domain.ErrUnknownRole, session.Role)
	}

	session.UpdatedAt = s.clock.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	file := sessionFileSchema{Session: toSchema(session)}
	return s.writeSchema(file)
}

// Clear removes the session file. Clearing an absent session is not an error.
func (s *SessionStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}

	return nil
}

func (s *SessionStore) readSchema() (sessionFileSchema, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return sessionFileSchema{}, nil
		}
		return sessionFileSchema{}, fmt.Errorf("read session file: %w", err)
	}

	var file sessionFileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return sessionFileSchema{}, fmt.Errorf("decode session file: %w", err)
	}
	if err := file.validateVersion(); err != nil {
		return sessionFileSchema{}, err
	}
	file.applyDefaults()

	return file, nil
}

func (s *SessionStore) writeSchema(file sessionFileSchema) error {
	file.applyDefaults()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, sessionDirMode); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode session file: %w", err)
	}

	tempFile, err := os.CreateTemp(dir, tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp session file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp session file: %w", err)
	}
	if err := tempFile.Chmod(sessionFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp session file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp session file: %w", err)
	}

	if err := os.Rename(tempName, s.path); err != nil {
		return fmt.Errorf("replace session file: %w", err)
	}
	cleanup = false

	return nil
}

func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}

func toSchema(session domain.Session) sessionSchema {
	return sessionSchema{
		Role:          string(session.Role),
		Authenticated: session.Authenticated,
		UserID:        string(session.UserID),
		Email:         session.Email,
		Name:          session.Name,
		UpdatedAt:     formatTime(session.UpdatedAt),
	}
}

func fromSchema(session sessionSchema) domain.Session {
	return domain.Session{
		Role:          domain.Role(session.Role),
		Authenticated: session.Authenticated,
		UserID:        domain.UserID(session.UserID),
		Email:         session.Email,
		Name:          session.Name,
		UpdatedAt:     parseTime(session.UpdatedAt),
	}
}

func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}

	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}

	return parsed
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}

	return value.Format(time.RFC3339)
}
