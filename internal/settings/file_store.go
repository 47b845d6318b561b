package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"
)

// FileStore keeps settings in a single JSON file.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a store backed by path. The file is created on first Load.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file.
func (f *FileStore) Path() string { return f.path }

// Load reads the settings, writing an empty document when the file does not exist yet.
func (f *FileStore) Load(_ context.Context) (*Settings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.load()
}

// Save replaces the settings document.
func (f *FileStore) Save(_ context.Context, s *Settings) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.save(s)
}

// Update applies one kind under the store lock.
func (f *FileStore) Update(_ context.Context, kind string, raw json.RawMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, err := f.load()
	if err != nil {
		return err
	}
	if err := s.Apply(kind, raw); err != nil {
		return err
	}
	return f.save(s)
}

func (f *FileStore) load() (*Settings, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		s := &Settings{}
		if err := f.save(s); err != nil {
			return nil, err
		}
		log.Info().Str("path", f.path).Msg("Created default settings file")
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}

	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse settings file %s: %w", f.path, err)
	}
	return &s, nil
}

func (f *FileStore) save(s *Settings) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	tmpPath := f.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write settings: %w", err)
	}

	// Atomic rename
	if err := os.Rename(tmpPath, f.path); err != nil {
		return fmt.Errorf("failed to rename settings file: %w", err)
	}
	return nil
}
