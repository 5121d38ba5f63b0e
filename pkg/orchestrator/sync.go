// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package orchestrator

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// ScopeAll selects every task's files plus the derived manifest and
// readme; only this scope deletes stale files.
const ScopeAll = "all"

// ManifestFileName is the default name of the generated dependency
// manifest inside the output directory.
const ManifestFileName = "dependencies.txt"

// readmeFileName is where a merged generate_readme artifact lands.
const readmeFileName = "README.md"

// Syncer reconciles the on-disk output directory with the code
// artifacts in a project tree. It is the only component that mutates
// the directory, and only inside an explicit Sync call.
type Syncer struct {
	Root     string // managed output directory
	Manifest string // manifest filename, defaults to ManifestFileName
}

// NewSyncer returns a Syncer for the given output directory.
func NewSyncer(root string) *Syncer {
	return &Syncer{Root: root, Manifest: ManifestFileName}
}

// SyncFailure records one path the engine could not write or delete.
type SyncFailure struct {
	Path string
	Err  error
}

// SyncReport lists what a sync did, path by path. Paths are
// slash-separated and relative to the output directory, sorted.
type SyncReport struct {
	Written []string
	Deleted []string
	Skipped []string
	Failed  []SyncFailure
}

// Changed reports whether the sync touched the directory at all.
func (r SyncReport) Changed() bool {
	return len(r.Written) > 0 || len(r.Deleted) > 0
}

// Sync writes the target file set for scope (a task ID or ScopeAll) to
// the output directory. Files identical on disk are skipped. In full
// scope, on-disk files not in the target set are deleted so the
// directory mirrors state exactly; a single-task sync never deletes.
// One file failing does not abort the batch: the remaining files are
// still attempted and every failure is reported. A task's dirty flag is
// cleared only when none of its files failed.
func (s *Syncer) Sync(p *Project, scope string) (SyncReport, error) {
	var report SyncReport

	manifest := s.Manifest
	if manifest == "" {
		manifest = ManifestFileName
	}

	var tasks []*Task
	target := make(map[string]string) // clean slash path → content
	owners := make(map[string][]*Task)

	if scope == ScopeAll {
		p.EachTask(func(_ *Milestone, t *Task) bool {
			tasks = append(tasks, t)
			return true
		})
	} else {
		t := p.Task(scope)
		if t == nil {
			return report, &UnknownTargetError{Kind: "task", ID: scope}
		}
		tasks = append(tasks, t)
	}

	failedTasks := make(map[*Task]bool)

	// Later tasks win on literal path collisions, in creation order.
	for _, t := range tasks {
		if t.Code == nil {
			continue
		}
		for _, f := range t.Code.Files {
			clean, err := safeRelPath(f.Path)
			if err != nil {
				report.Failed = append(report.Failed, SyncFailure{Path: f.Path, Err: err})
				failedTasks[t] = true
				continue
			}
			target[clean] = f.Content
			owners[clean] = append(owners[clean], t)
		}
	}

	if scope == ScopeAll {
		target[manifest] = ManifestContent(p)
		if p.Readme != "" {
			target[readmeFileName] = p.Readme
		}

		// Stale pass: anything on disk that state no longer declares.
		for _, rel := range s.onDiskFiles() {
			if _, ok := target[rel]; ok {
				continue
			}
			full := filepath.Join(s.Root, filepath.FromSlash(rel))
			if err := os.Remove(full); err != nil {
				report.Failed = append(report.Failed, SyncFailure{Path: rel, Err: err})
				continue
			}
			report.Deleted = append(report.Deleted, rel)
		}
		s.pruneEmptyDirs()
	}

	paths := make([]string, 0, len(target))
	for rel := range target {
		paths = append(paths, rel)
	}
	sort.Strings(paths)

	failedPaths := make(map[string]bool)
	for _, rel := range paths {
		full := filepath.Join(s.Root, filepath.FromSlash(rel))
		content := target[rel]

		if existing, err := os.ReadFile(full); err == nil && string(existing) == content {
			report.Skipped = append(report.Skipped, rel)
			continue
		}
		if err := writeFileAt(full, content); err != nil {
			logf("sync: write %s: %v", rel, err)
			report.Failed = append(report.Failed, SyncFailure{Path: rel, Err: err})
			failedPaths[rel] = true
			continue
		}
		report.Written = append(report.Written, rel)
	}

	for rel := range failedPaths {
		for _, t := range owners[rel] {
			failedTasks[t] = true
		}
	}
	for _, t := range tasks {
		if !failedTasks[t] {
			t.Dirty = false
		}
	}

	sort.Strings(report.Deleted)
	sort.Slice(report.Failed, func(i, j int) bool { return report.Failed[i].Path < report.Failed[j].Path })
	return report, nil
}

// safeRelPath normalizes a declared file path and rejects anything that
// would escape the output directory.
func safeRelPath(p string) (string, error) {
	clean := path.Clean(strings.ReplaceAll(p, "\\", "/"))
	if clean == "." || clean == "" {
		return "", fmt.Errorf("empty file path")
	}
	if !filepath.IsLocal(filepath.FromSlash(clean)) {
		return "", fmt.Errorf("path %q escapes the output directory", p)
	}
	return clean, nil
}

// writeFileAt writes content to full, creating parent directories.
func writeFileAt(full, content string) error {
	if dir := filepath.Dir(full); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(full, []byte(content), 0o644)
}

// onDiskFiles returns every regular file under Root as a clean slash
// path relative to Root. A missing root directory yields nothing.
func (s *Syncer) onDiskFiles() []string {
	var out []string
	root := s.Root
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return nil
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		logf("sync: walking %s: %v", root, err)
	}
	sort.Strings(out)
	return out
}

// pruneEmptyDirs removes directories left empty by stale-file deletion,
// deepest first. Best-effort: a non-empty directory just fails the
// Remove and is kept.
func (s *Syncer) pruneEmptyDirs() {
	var dirs []string
	filepath.WalkDir(s.Root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() && p != s.Root {
			dirs = append(dirs, p)
		}
		return nil
	})
	sort.Sort(sort.Reverse(sort.StringSlice(dirs)))
	for _, d := range dirs {
		os.Remove(d) // fails on non-empty dirs, which is the point
	}
}
