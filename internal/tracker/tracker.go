package tracker

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/zeebo/xxh3"

	sharederrors "github.com/scan-io-git/lint-audit/pkg/shared/errors"
)

// Record holds the content fingerprint last observed for a tracked file.
type Record struct {
	Path        string    `json:"path"`
	Fingerprint string    `json:"fingerprint"`
	Size        int64     `json:"size"`
	ModTime     time.Time `json:"mod_time"`
}

// Tracker answers "has this file changed since we last looked at it" without
// re-running the external tool. The full record set is persisted to a backing
// file on every mutation; a missing or corrupt backing file means an empty
// tracker, never an error. A backing file must not be shared between tracker
// instances.
type Tracker struct {
	backingPath string
	logger      hclog.Logger

	mu      sync.Mutex
	records map[string]Record
}

// New creates a tracker backed by the file at backingPath, loading any
// previously persisted state.
func New(backingPath string, logger hclog.Logger) *Tracker {
	t := &Tracker{
		backingPath: backingPath,
		logger:      logger,
		records:     make(map[string]Record),
	}
	t.load()
	return t
}

func (t *Tracker) load() {
	data, err := os.ReadFile(t.backingPath)
	if err != nil {
		if !os.IsNotExist(err) {
			t.logger.Warn("tracker cache unreadable, starting empty", "path", t.backingPath, "error", err)
		}
		return
	}

	var records map[string]Record
	if err := json.Unmarshal(data, &records); err != nil {
		t.logger.Warn("tracker cache corrupt, starting empty", "path", t.backingPath, "error", err)
		return
	}
	t.records = records
}

// persist writes the full record set. Called with t.mu held.
func (t *Tracker) persist() error {
	data, err := json.MarshalIndent(t.records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode tracker state: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(t.backingPath), os.ModePerm); err != nil {
		return fmt.Errorf("failed to create tracker cache folder: %w", err)
	}
	if err := os.WriteFile(t.backingPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write tracker cache %q: %w", t.backingPath, err)
	}
	return nil
}

// snapshot reads the file's current fingerprint metadata.
func snapshot(path string) (Record, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Record{}, err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return Record{}, err
	}
	return Record{
		Path:        path,
		Fingerprint: fmt.Sprintf("%016x", xxh3.Hash(content)),
		Size:        info.Size(),
		ModTime:     info.ModTime().UTC(),
	}, nil
}

// UpdateTracking records the file's current fingerprint, overwriting any
// previous record for the same path. Returns a FileTrackerError if the file
// cannot be read; the caller must treat that as "tracking not established".
func (t *Tracker) UpdateTracking(path string) error {
	rec, err := snapshot(path)
	if err != nil {
		return sharederrors.NewFileTrackerError(path, err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.records[path] = rec
	if err := t.persist(); err != nil {
		return err
	}
	return nil
}

// HasFileChanged reports true for untracked paths, missing files, and files
// whose current fingerprint differs from the stored one.
func (t *Tracker) HasFileChanged(path string) bool {
	t.mu.Lock()
	stored, ok := t.records[path]
	t.mu.Unlock()
	if !ok {
		return true
	}

	current, err := snapshot(path)
	if err != nil {
		return true
	}
	return current.Fingerprint != stored.Fingerprint || current.Size != stored.Size
}

// GetMetadata returns the stored record for path, if any.
func (t *Tracker) GetMetadata(path string) (Record, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	rec, ok := t.records[path]
	return rec, ok
}

// GetChangedFiles returns the subset of paths for which HasFileChanged is
// true, preserving the input order.
func (t *Tracker) GetChangedFiles(paths []string) []string {
	changed := make([]string, 0, len(paths))
	for _, p := range paths {
		if t.HasFileChanged(p) {
			changed = append(changed, p)
		}
	}
	return changed
}

// RemoveTracking drops the record for path. Removing an untracked path is a no-op.
func (t *Tracker) RemoveTracking(path string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.records[path]; !ok {
		return nil
	}
	delete(t.records, path)
	return t.persist()
}

// Clear drops all records.
func (t *Tracker) Clear() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.records = make(map[string]Record)
	return t.persist()
}

// AllTrackedPaths returns every tracked path, sorted for stable output.
func (t *Tracker) AllTrackedPaths() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	paths := make([]string, 0, len(t.records))
	for p := range t.records {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
