// Package snapshot persists the per-job JSON documents and decides
// whether a run's content actually changed relative to the previous one.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Store owns the single output file of one job. Load never fails the
// run: anything unreadable is reported as "no previous snapshot".
type Store struct {
	path string
}

// NewStore prepares the directory holding path.
func NewStore(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("snapshot store requires a path")
	}
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating snapshot dir: %w", err)
		}
	}
	return &Store{path: path}, nil
}

// Path returns the file the store writes to.
func (s *Store) Path() string { return s.path }

// Load returns the raw bytes of the previous snapshot, or nil when the
// file is missing or unreadable.
func (s *Store) Load() []byte {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil
	}
	return raw
}

// Save marshals payload and replaces the output file atomically, so a
// crash mid-run can never leave a truncated document behind. It is only
// called after the whole pipeline succeeded.
func (s *Store) Save(payload any) error {
	raw, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling snapshot: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp snapshot: %w", err)
	}
	name := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(name)
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return fmt.Errorf("closing snapshot: %w", err)
	}
	if err := os.Rename(name, s.path); err != nil {
		os.Remove(name)
		return fmt.Errorf("replacing snapshot: %w", err)
	}
	return nil
}
