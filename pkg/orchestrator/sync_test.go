// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package orchestrator

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func codedProject(t *testing.T) *Project {
	t.Helper()
	p := NewProject()
	m, _ := p.AddMilestone("M1", "core")
	t1, _ := m.AddTask("M1-T1", "handler")
	t1.Status = StatusCoded
	t1.Dirty = true
	t1.Code = &CodeArtifact{
		Files: []FileEntry{
			{Path: "app/main.py", Content: "print('v1')\n"},
			{Path: "app/util.py", Content: "pass\n"},
		},
		Dependencies: []string{"flask"},
	}
	t2, _ := m.AddTask("M1-T2", "storage")
	t2.Status = StatusCoded
	t2.Dirty = true
	t2.Code = &CodeArtifact{
		Files:        []FileEntry{{Path: "app/store.py", Content: "store\n"}},
		Dependencies: []string{"sqlalchemy"},
	}
	return p
}

func readDisk(t *testing.T, root, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		t.Fatalf("reading %s: %v", rel, err)
	}
	return string(data)
}

func TestSyncAllWritesEverything(t *testing.T) {
	p := codedProject(t)
	p.Readme = "# Shortener\n"
	root := t.TempDir()

	report, err := NewSyncer(root).Sync(p, ScopeAll)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	want := []string{"README.md", "app/main.py", "app/store.py", "app/util.py", "dependencies.txt"}
	if !reflect.DeepEqual(report.Written, want) {
		t.Fatalf("Written = %v, want %v", report.Written, want)
	}
	if len(report.Failed) != 0 || len(report.Deleted) != 0 {
		t.Errorf("Failed = %v Deleted = %v", report.Failed, report.Deleted)
	}
	if got := readDisk(t, root, "dependencies.txt"); got != "flask\nsqlalchemy\n" {
		t.Errorf("manifest = %q", got)
	}
	if got := readDisk(t, root, "app/main.py"); got != "print('v1')\n" {
		t.Errorf("main.py = %q", got)
	}
	if dirty := p.DirtyTasks(); len(dirty) != 0 {
		t.Errorf("dirty after sync = %v", dirty)
	}
}

func TestSyncAllIsIdempotent(t *testing.T) {
	p := codedProject(t)
	root := t.TempDir()
	s := NewSyncer(root)

	if _, err := s.Sync(p, ScopeAll); err != nil {
		t.Fatalf("first sync: %v", err)
	}
	report, err := s.Sync(p, ScopeAll)
	if err != nil {
		t.Fatalf("second sync: %v", err)
	}
	if report.Changed() {
		t.Errorf("second sync changed the directory: written=%v deleted=%v", report.Written, report.Deleted)
	}
	if len(report.Skipped) != 4 {
		t.Errorf("Skipped = %v, want all four files", report.Skipped)
	}
}

func TestSyncSingleTaskScope(t *testing.T) {
	p := codedProject(t)
	root := t.TempDir()
	s := NewSyncer(root)

	// Unrelated file on disk must survive a single-task sync.
	stale := filepath.Join(root, "leftover.txt")
	os.WriteFile(stale, []byte("keep me"), 0o644)

	report, err := s.Sync(p, "M1-T1")
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if !reflect.DeepEqual(report.Written, []string{"app/main.py", "app/util.py"}) {
		t.Fatalf("Written = %v", report.Written)
	}
	if len(report.Deleted) != 0 {
		t.Errorf("single-task sync deleted %v", report.Deleted)
	}
	if _, err := os.Stat(stale); err != nil {
		t.Error("single-task sync removed an unrelated file")
	}
	if _, err := os.Stat(filepath.Join(root, "dependencies.txt")); err == nil {
		t.Error("single-task sync wrote the manifest")
	}
	// Only the synced task's flag clears.
	if got := p.DirtyTasks(); !reflect.DeepEqual(got, []string{"M1-T2"}) {
		t.Errorf("dirty after sync = %v", got)
	}
}

func TestSyncUnknownTask(t *testing.T) {
	p := codedProject(t)
	_, err := NewSyncer(t.TempDir()).Sync(p, "M1-T9")
	var ut *UnknownTargetError
	if !errors.As(err, &ut) {
		t.Fatalf("err = %v, want UnknownTargetError", err)
	}
}

func TestSyncAllDeletesStaleFiles(t *testing.T) {
	p := codedProject(t)
	root := t.TempDir()
	s := NewSyncer(root)
	if _, err := s.Sync(p, ScopeAll); err != nil {
		t.Fatalf("first sync: %v", err)
	}

	// A refine drops util.py from the artifact; the next full sync must
	// remove it from disk.
	t1 := p.Task("M1-T1")
	t1.Code.Files = []FileEntry{{Path: "app/main.py", Content: "print('v2')\n"}}
	t1.Dirty = true

	report, err := s.Sync(p, ScopeAll)
	if err != nil {
		t.Fatalf("second sync: %v", err)
	}
	if !reflect.DeepEqual(report.Deleted, []string{"app/util.py"}) {
		t.Errorf("Deleted = %v", report.Deleted)
	}
	if !reflect.DeepEqual(report.Written, []string{"app/main.py"}) {
		t.Errorf("Written = %v", report.Written)
	}
	if _, err := os.Stat(filepath.Join(root, "app", "util.py")); !os.IsNotExist(err) {
		t.Error("stale file still on disk")
	}
}

func TestSyncAllPrunesEmptyDirs(t *testing.T) {
	p := codedProject(t)
	root := t.TempDir()
	s := NewSyncer(root)
	if _, err := s.Sync(p, ScopeAll); err != nil {
		t.Fatalf("first sync: %v", err)
	}

	// Move every file out of app/ so the directory empties out.
	t1 := p.Task("M1-T1")
	t1.Code.Files = []FileEntry{{Path: "main.py", Content: "x"}}
	t2 := p.Task("M1-T2")
	t2.Code.Files = []FileEntry{{Path: "store.py", Content: "y"}}

	if _, err := s.Sync(p, ScopeAll); err != nil {
		t.Fatalf("second sync: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "app")); !os.IsNotExist(err) {
		t.Error("emptied directory not pruned")
	}
}

func TestSyncFailureKeepsTaskDirty(t *testing.T) {
	p := codedProject(t)
	root := t.TempDir()
	s := NewSyncer(root)

	// Occupy a target path with a directory so the write fails.
	if err := os.MkdirAll(filepath.Join(root, "app", "main.py"), 0o755); err != nil {
		t.Fatal(err)
	}

	report, err := s.Sync(p, "M1-T1")
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if len(report.Failed) != 1 || report.Failed[0].Path != "app/main.py" {
		t.Fatalf("Failed = %v", report.Failed)
	}
	// The other file of the task is still attempted.
	if !reflect.DeepEqual(report.Written, []string{"app/util.py"}) {
		t.Errorf("Written = %v", report.Written)
	}
	if !p.Task("M1-T1").Dirty {
		t.Error("dirty flag cleared despite a failed file")
	}
}

func TestSyncRejectsEscapingPaths(t *testing.T) {
	p := NewProject()
	m, _ := p.AddMilestone("M1", "")
	t1, _ := m.AddTask("M1-T1", "")
	t1.Dirty = true
	t1.Code = &CodeArtifact{Files: []FileEntry{
		{Path: "../evil.txt", Content: "nope"},
		{Path: "ok.txt", Content: "fine"},
	}}
	root := t.TempDir()

	report, err := NewSyncer(root).Sync(p, ScopeAll)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if len(report.Failed) != 1 || report.Failed[0].Path != "../evil.txt" {
		t.Fatalf("Failed = %v", report.Failed)
	}
	if _, err := os.Stat(filepath.Join(filepath.Dir(root), "evil.txt")); err == nil {
		t.Fatal("file written outside the output directory")
	}
	if !p.Task("M1-T1").Dirty {
		t.Error("dirty flag cleared despite a rejected path")
	}
}

func TestSyncPathCollisionLastTaskWins(t *testing.T) {
	p := codedProject(t)
	// M1-T2 now also declares app/main.py; it was created later, so its
	// content wins.
	t2 := p.Task("M1-T2")
	t2.Code.Files = append(t2.Code.Files, FileEntry{Path: "app/main.py", Content: "print('from T2')\n"})
	root := t.TempDir()

	if _, err := NewSyncer(root).Sync(p, ScopeAll); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if got := readDisk(t, root, "app/main.py"); got != "print('from T2')\n" {
		t.Errorf("collided file content = %q", got)
	}
}

func TestSafeRelPath(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"app/main.py", "app/main.py", false},
		{"./app/main.py", "app/main.py", false},
		{"app//main.py", "app/main.py", false},
		{`app\main.py`, "app/main.py", false},
		{"../evil", "", true},
		{"a/../../evil", "", true},
		{"/etc/passwd", "", true},
		{".", "", true},
		{"", "", true},
	}
	for _, tc := range cases {
		got, err := safeRelPath(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("safeRelPath(%q) accepted", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("safeRelPath(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("safeRelPath(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
