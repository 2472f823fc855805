// Package prefs persists client-side display preferences that the backend
// does not know about, as a small key/value file. Keys follow the scheme of
// the web client, e.g. "transcription_font_size_vfo2".
package prefs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"
)

// Store is a file-backed key/value store. A missing or unreadable file is
// treated as empty, writes are flushed to disk immediately.
type Store struct {
	path string

	mutex  sync.Mutex
	values map[string]string
}

// Open loads the store from the given file.
func Open(path string) *Store {
	result := &Store{
		path:   path,
		values: make(map[string]string),
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn("cannot read preferences", "path", path, "error", err)
		}
		return result
	}
	if err := json.Unmarshal(raw, &result.values); err != nil {
		log.Warn("cannot parse preferences, starting empty", "path", path, "error", err)
		result.values = make(map[string]string)
	}
	return result
}

// Get returns the value stored under the given key.
func (s *Store) Get(key string) (string, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	value, ok := s.values[key]
	return value, ok
}

// Set stores the given value and flushes the store to disk.
func (s *Store) Set(key string, value string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.values[key] == value {
		return
	}
	s.values[key] = value
	if err := s.flush(); err != nil {
		log.Warn("cannot write preferences", "path", s.path, "error", err)
	}
}

func (s *Store) flush() error {
	raw, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("cannot create preferences directory: %w", err)
		}
	}
	return os.WriteFile(s.path, raw, 0o644)
}

// FontSizeKey is the preference key for the subtitle font size of the given VFO.
func FontSizeKey(vfo int) string {
	return fmt.Sprintf("transcription_font_size_vfo%d", vfo)
}

// TextAlignmentKey is the preference key for the subtitle text alignment of the given VFO.
func TextAlignmentKey(vfo int) string {
	return fmt.Sprintf("transcription_text_alignment_vfo%d", vfo)
}
