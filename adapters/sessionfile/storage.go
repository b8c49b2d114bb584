// Package sessionfile persists the session subset {token, currentUser,
// isLogin} as a JSON file so a login survives process restarts.
package sessionfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"task-tracker-client/core"
)

type Storage struct {
	log  *slog.Logger
	path string
}

func New(path string, log *slog.Logger) *Storage {
	return &Storage{log: log, path: path}
}

var _ core.SessionStorage = (*Storage)(nil)

func (s *Storage) Save(state core.SessionState) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	buf, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	// Write-then-rename so a crash mid-write cannot corrupt the session.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, buf, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace session file: %w", err)
	}
	return nil
}

func (s *Storage) Load() (core.SessionState, bool, error) {
	buf, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return core.SessionState{}, false, nil
	}
	if err != nil {
		return core.SessionState{}, false, fmt.Errorf("read session file: %w", err)
	}

	var state core.SessionState
	if err := json.Unmarshal(buf, &state); err != nil {
		// A corrupt file is treated as logged out rather than fatal.
		s.log.Error("corrupt session file, ignoring", "path", s.path, "error", err)
		return core.SessionState{}, false, nil
	}
	return state, true, nil
}

func (s *Storage) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}
