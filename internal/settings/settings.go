// Package settings persists the viewer's search options, search history,
// bookmark counter and backup offset in a JSON file.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/usestring/logviewer-mcp/internal/session"
	"github.com/usestring/logviewer-mcp/pkg/types"
)

// File is the on-disk settings document.
type File struct {
	SearchHistory         string `json:"searchHistory" jsonschema:"description=JSON-encoded list of recent search terms with the most recent first"`
	SearchCaseSensitivity bool   `json:"searchCaseSensitivity" jsonschema:"default=false"`
	SearchWrap            bool   `json:"searchWrap" jsonschema:"default=true"`
	SearchType            string `json:"searchType" jsonschema:"description=Search type name; unknown names read as NORMAL,default=NORMAL"`
	BookmarkCount         int    `json:"bookmarkCount" jsonschema:"minimum=1,default=1"`
	BackupOffset          int64  `json:"backupOffset" jsonschema:"minimum=0,default=0"`
}

// Defaults returns the settings used when no file exists.
func Defaults() File {
	return File{
		SearchHistory: "[]",
		SearchWrap:    true,
		SearchType:    types.Normal.Name(),
		BookmarkCount: 1,
	}
}

// Store is a settings file kept in memory and written back on every change.
// A Store with an empty path never touches disk.
type Store struct {
	mu     sync.RWMutex
	path   string
	file   File
	logger *slog.Logger
}

// Open loads the settings at path. A missing file yields defaults. Each key
// is validated on its own: an invalid value is logged and replaced by its
// default while the other keys are kept. A file that is not a JSON object
// yields defaults.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{path: path, file: Defaults(), logger: logger}
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading settings %s: %w", path, err)
	}

	file, problems := decode(data)
	if len(problems) > 0 {
		logger.Warn("settings file has invalid values, using defaults for them",
			slog.String("path", path),
			slog.Any("problems", problems),
		)
	}
	s.file = file
	return s, nil
}

// decode overlays every valid key of data on the defaults and returns one
// message per rejected key, sorted.
func decode(data []byte) (File, []string) {
	file := Defaults()

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return file, []string{fmt.Sprintf("invalid JSON: %s", err.Error())}
	}

	var problems []string
	for key, raw := range fields {
		single, err := json.Marshal(map[string]json.RawMessage{key: raw})
		if err != nil {
			problems = append(problems, fmt.Sprintf("/%s: %s", key, err.Error()))
			continue
		}
		if p := Validate(single); len(p) > 0 {
			problems = append(problems, p...)
			continue
		}
		// Decode into a copy so a value rejected here leaves the default intact.
		next := file
		if err := json.Unmarshal(single, &next); err != nil {
			problems = append(problems, fmt.Sprintf("/%s: %s", key, err.Error()))
			continue
		}
		file = next
	}
	sort.Strings(problems)
	return file, problems
}

// Path returns the settings file path.
func (s *Store) Path() string { return s.path }

// Snapshot returns a copy of the current settings.
func (s *Store) Snapshot() File {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.file
}

// JSON returns the current settings as indented JSON.
func (s *Store) JSON() ([]byte, error) {
	return json.MarshalIndent(s.Snapshot(), "", "  ")
}

// SearchHistory implements history.Store.
func (s *Store) SearchHistory() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.file.SearchHistory
}

// SetSearchHistory implements history.Store.
func (s *Store) SetSearchHistory(encoded string) error {
	return s.update(func(f *File) { f.SearchHistory = encoded })
}

// SearchOptions implements session.OptionsStore.
func (s *Store) SearchOptions() session.Options {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return session.Options{
		CaseSensitive: s.file.SearchCaseSensitivity,
		Wrap:          s.file.SearchWrap,
		Type:          types.SearchTypeByName(s.file.SearchType),
	}
}

// SaveSearchOptions implements session.OptionsStore.
func (s *Store) SaveSearchOptions(opts session.Options) error {
	return s.update(func(f *File) {
		f.SearchCaseSensitivity = opts.CaseSensitive
		f.SearchWrap = opts.Wrap
		f.SearchType = opts.Type.Name()
	})
}

// BookmarkCount implements bookmark.CounterStore.
func (s *Store) BookmarkCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.file.BookmarkCount
}

// SetBookmarkCount implements bookmark.CounterStore.
func (s *Store) SetBookmarkCount(n int) error {
	return s.update(func(f *File) { f.BookmarkCount = n })
}

// BackupOffset returns the persisted backup read offset.
func (s *Store) BackupOffset() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.file.BackupOffset
}

// SetBackupOffset persists the backup read offset.
func (s *Store) SetBackupOffset(offset int64) error {
	return s.update(func(f *File) { f.BackupOffset = offset })
}

func (s *Store) update(mutate func(*File)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	mutate(&s.file)
	if s.path == "" {
		return nil
	}
	return writeFile(s.path, s.file)
}

// writeFile replaces path through a temporary file in the same directory.
func writeFile(path string, file File) error {
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating settings dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".settings-*.json")
	if err != nil {
		return fmt.Errorf("creating temp settings file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("writing settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing settings: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing settings: %w", err)
	}
	return nil
}
