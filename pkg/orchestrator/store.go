// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package orchestrator

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Store persists the project tree as a single JSON record at a fixed
// path. It is the only persisted source of truth; version history is
// deliberately left to the user's own tooling.
type Store struct {
	Path string
}

// NewStore returns a store over the given state file path.
func NewStore(path string) *Store {
	return &Store{Path: path}
}

// Exists reports whether a state file is present.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.Path)
	return err == nil
}

// Load reads the project tree. A missing file yields a fresh empty
// project; a file that exists but cannot be parsed is reported as
// corrupt and never repaired.
func (s *Store) Load() (*Project, error) {
	data, err := os.ReadFile(s.Path)
	if os.IsNotExist(err) {
		logf("store: no state at %s, starting fresh", s.Path)
		return NewProject(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading state file: %w", err)
	}

	p := NewProject()
	if err := json.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("state file %s is corrupt: %w", s.Path, err)
	}
	p.restoreIdentity()
	logf("store: loaded %s (%d milestone(s))", s.Path, p.Milestones.Len())
	return p, nil
}

// Save writes the project tree atomically: serialize to a temp file in
// the same directory, then rename over the target.
func (s *Store) Save(p *Project) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("serializing project: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}
	tmp := s.Path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing state file: %w", err)
	}
	if err := os.Rename(tmp, s.Path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing state file: %w", err)
	}
	logf("store: saved %s (%d bytes)", s.Path, len(data))
	return nil
}
