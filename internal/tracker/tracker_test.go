package tracker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-hclog"
)

func newTestTracker(t *testing.T) (*Tracker, string) {
	t.Helper()
	backing := filepath.Join(t.TempDir(), "tracker.json")
	return New(backing, hclog.NewNullLogger()), backing
}

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing test file: %v", err)
	}
	return path
}

func TestUpdateTrackingRoundTrip(t *testing.T) {
	tr, _ := newTestTracker(t)
	dir := t.TempDir()
	path := writeTestFile(t, dir, "main.swift", "let a = 1\n")

	if !tr.HasFileChanged(path) {
		t.Fatalf("untracked file should report as changed")
	}

	if err := tr.UpdateTracking(path); err != nil {
		t.Fatalf("UpdateTracking returned error: %v", err)
	}
	if tr.HasFileChanged(path) {
		t.Fatalf("freshly tracked file should not report as changed")
	}

	rec, ok := tr.GetMetadata(path)
	if !ok {
		t.Fatalf("expected metadata for tracked file")
	}
	if rec.Path != path {
		t.Fatalf("metadata path mismatch: want %q, got %q", path, rec.Path)
	}
	if rec.Fingerprint == "" {
		t.Fatalf("expected a non-empty fingerprint")
	}
	if rec.Size != int64(len("let a = 1\n")) {
		t.Fatalf("unexpected size: %d", rec.Size)
	}
}

func TestHasFileChangedDetectsContentChange(t *testing.T) {
	tr, _ := newTestTracker(t)
	dir := t.TempDir()
	path := writeTestFile(t, dir, "main.swift", "let a = 1\n")

	if err := tr.UpdateTracking(path); err != nil {
		t.Fatalf("UpdateTracking returned error: %v", err)
	}

	writeTestFile(t, dir, "main.swift", "let a = 2\n")
	if !tr.HasFileChanged(path) {
		t.Fatalf("modified file should report as changed")
	}
}

func TestHasFileChangedMissingFile(t *testing.T) {
	tr, _ := newTestTracker(t)
	dir := t.TempDir()
	path := writeTestFile(t, dir, "gone.swift", "x")

	if err := tr.UpdateTracking(path); err != nil {
		t.Fatalf("UpdateTracking returned error: %v", err)
	}
	if err := os.Remove(path); err != nil {
		t.Fatalf("removing test file: %v", err)
	}
	if !tr.HasFileChanged(path) {
		t.Fatalf("deleted file should report as changed")
	}
}

func TestUpdateTrackingUnreadableFile(t *testing.T) {
	tr, _ := newTestTracker(t)
	path := filepath.Join(t.TempDir(), "missing.swift")

	err := tr.UpdateTracking(path)
	if err == nil {
		t.Fatalf("expected an error for an unreadable file")
	}
	if _, ok := tr.GetMetadata(path); ok {
		t.Fatalf("failed tracking must not leave a record behind")
	}
}

func TestGetChangedFilesPreservesInputOrder(t *testing.T) {
	tr, _ := newTestTracker(t)
	dir := t.TempDir()
	a := writeTestFile(t, dir, "a.swift", "a")
	b := writeTestFile(t, dir, "b.swift", "b")
	c := writeTestFile(t, dir, "c.swift", "c")

	for _, p := range []string{a, b, c} {
		if err := tr.UpdateTracking(p); err != nil {
			t.Fatalf("UpdateTracking(%s): %v", p, err)
		}
	}
	writeTestFile(t, dir, "c.swift", "c2")
	writeTestFile(t, dir, "a.swift", "a2")

	changed := tr.GetChangedFiles([]string{c, b, a})
	if len(changed) != 2 {
		t.Fatalf("expected 2 changed files, got %d", len(changed))
	}
	if changed[0] != c || changed[1] != a {
		t.Fatalf("changed files out of input order: %v", changed)
	}
}

func TestPersistenceSurvivesReload(t *testing.T) {
	tr, backing := newTestTracker(t)
	dir := t.TempDir()
	path := writeTestFile(t, dir, "keep.swift", "content")

	if err := tr.UpdateTracking(path); err != nil {
		t.Fatalf("UpdateTracking returned error: %v", err)
	}

	reloaded := New(backing, hclog.NewNullLogger())
	if reloaded.HasFileChanged(path) {
		t.Fatalf("reloaded tracker should remember the unchanged file")
	}
	if got := reloaded.AllTrackedPaths(); len(got) != 1 || got[0] != path {
		t.Fatalf("unexpected tracked paths after reload: %v", got)
	}
}

func TestCorruptCacheStartsEmpty(t *testing.T) {
	backing := filepath.Join(t.TempDir(), "tracker.json")
	if err := os.WriteFile(backing, []byte("{not json"), 0644); err != nil {
		t.Fatalf("writing corrupt cache: %v", err)
	}

	tr := New(backing, hclog.NewNullLogger())
	if got := tr.AllTrackedPaths(); len(got) != 0 {
		t.Fatalf("corrupt cache should yield an empty tracker, got %v", got)
	}
}

func TestRemoveTracking(t *testing.T) {
	tr, _ := newTestTracker(t)
	dir := t.TempDir()
	path := writeTestFile(t, dir, "drop.swift", "x")

	if err := tr.UpdateTracking(path); err != nil {
		t.Fatalf("UpdateTracking returned error: %v", err)
	}
	if err := tr.RemoveTracking(path); err != nil {
		t.Fatalf("RemoveTracking returned error: %v", err)
	}
	if _, ok := tr.GetMetadata(path); ok {
		t.Fatalf("record should be gone after RemoveTracking")
	}

	// removing again is a no-op
	if err := tr.RemoveTracking(path); err != nil {
		t.Fatalf("RemoveTracking on untracked path returned error: %v", err)
	}
}

func TestClear(t *testing.T) {
	tr, backing := newTestTracker(t)
	dir := t.TempDir()
	a := writeTestFile(t, dir, "a.swift", "a")
	b := writeTestFile(t, dir, "b.swift", "b")

	for _, p := range []string{a, b} {
		if err := tr.UpdateTracking(p); err != nil {
			t.Fatalf("UpdateTracking(%s): %v", p, err)
		}
	}
	if err := tr.Clear(); err != nil {
		t.Fatalf("Clear returned error: %v", err)
	}
	if got := tr.AllTrackedPaths(); len(got) != 0 {
		t.Fatalf("expected no tracked paths after Clear, got %v", got)
	}

	reloaded := New(backing, hclog.NewNullLogger())
	if got := reloaded.AllTrackedPaths(); len(got) != 0 {
		t.Fatalf("Clear must persist, reload yielded %v", got)
	}
}
