package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/zeebo/xxh3"

	"github.com/scan-io-git/lint-audit/internal/findings"
	"github.com/scan-io-git/lint-audit/internal/store"
	"github.com/scan-io-git/lint-audit/internal/tool"
	"github.com/scan-io-git/lint-audit/internal/tracker"
)

// BuildDirName is the build-output directory inside a workspace. Files under
// it are never analyzed, regardless of change status.
const BuildDirName = ".build"

// ErrAnalysisInProgress is returned when an analysis is started while another
// one is still running on the same orchestrator.
var ErrAnalysisInProgress = errors.New("an analysis is already in progress")

// Workspace identifies a source tree and the identifier scoping its findings.
type Workspace struct {
	ID   string
	Root string
}

// Result is the outcome of one analysis pass. It is returned to the caller
// and not persisted; the findings themselves go to the result store.
type Result struct {
	Findings          []findings.Finding
	FilesAnalyzed     int
	StartedAt         time.Time
	CompletedAt       time.Time
	Duration          time.Duration
	ConfigFingerprint string
}

// Orchestrator drives one full or incremental analysis pass: it invokes the
// external tool, parses and normalizes the output, and replaces the
// workspace's finding set in the store. Only one analysis runs at a time.
type Orchestrator struct {
	runner     tool.Runner
	store      *store.Store
	tracker    *tracker.Tracker
	toolName   string
	sourceExts []string
	logger     hclog.Logger

	analyzing atomic.Bool
	mu        sync.Mutex
	cancelRun context.CancelFunc
}

// New creates an orchestrator. sourceExts limits which workspace files count
// as analyzable sources; nil defaults to Swift sources for the default tool.
func New(runner tool.Runner, st *store.Store, tr *tracker.Tracker, toolName string, sourceExts []string, logger hclog.Logger) *Orchestrator {
	if len(sourceExts) == 0 {
		sourceExts = []string{".swift"}
	}
	return &Orchestrator{
		runner:     runner,
		store:      st,
		tracker:    tr,
		toolName:   toolName,
		sourceExts: sourceExts,
		logger:     logger,
	}
}

// IsAnalyzing reports whether an analysis is currently running.
func (o *Orchestrator) IsAnalyzing() bool {
	return o.analyzing.Load()
}

// CancelAnalysis requests cooperative cancellation of the in-flight run. A
// run that already committed its findings completes normally; cancellation
// never leaves the store partially updated.
func (o *Orchestrator) CancelAnalysis() {
	o.mu.Lock()
	cancel := o.cancelRun
	o.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Analyze runs the external tool over the whole workspace and replaces the
// workspace's finding set. configPath is passed through to the tool opaquely;
// when it names an existing file its content fingerprint is included in the
// result for cache-key use by callers.
func (o *Orchestrator) Analyze(ctx context.Context, ws Workspace, configPath string) (*Result, error) {
	return o.run(ctx, ws, configPath, nil)
}

// AnalyzeFiles restricts the tool invocation to an explicit file subset.
// Files under the build-output directory are always excluded. When
// onlyChanged is set the subset is first narrowed by the change tracker; if
// nothing remains, the tool is not invoked and the store is left untouched.
func (o *Orchestrator) AnalyzeFiles(ctx context.Context, files []string, ws Workspace, onlyChanged bool) (*Result, error) {
	subset := excludeBuildDir(files)
	if onlyChanged {
		subset = o.tracker.GetChangedFiles(subset)
	}
	if len(subset) == 0 {
		now := time.Now().UTC()
		return &Result{StartedAt: now, CompletedAt: now}, nil
	}
	return o.run(ctx, ws, "", subset)
}

// AnalyzeChangedFiles analyzes every tracked file that changed since it was
// last recorded.
func (o *Orchestrator) AnalyzeChangedFiles(ctx context.Context, ws Workspace) (*Result, error) {
	return o.AnalyzeFiles(ctx, o.tracker.AllTrackedPaths(), ws, true)
}

func (o *Orchestrator) run(ctx context.Context, ws Workspace, configPath string, files []string) (*Result, error) {
	if !o.analyzing.CompareAndSwap(false, true) {
		return nil, ErrAnalysisInProgress
	}
	defer o.analyzing.Store(false)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	o.mu.Lock()
	o.cancelRun = cancel
	o.mu.Unlock()
	defer func() {
		o.mu.Lock()
		o.cancelRun = nil
		o.mu.Unlock()
	}()

	startedAt := time.Now().UTC()
	o.logger.Info("analysis started", "workspace", ws.ID, "root", ws.Root, "files", len(files))

	buf, err := o.runner.Run(runCtx, configPath, ws.Root, files)
	if err != nil {
		o.logger.Error("analysis failed", "workspace", ws.ID, "error", err)
		return nil, err
	}

	records, err := tool.ParseOutput(buf, o.toolName)
	if err != nil {
		o.logger.Error("analysis output rejected", "workspace", ws.ID, "error", err)
		return nil, err
	}

	results := make([]findings.Finding, 0, len(records))
	for _, r := range records {
		results = append(results, findings.New(
			r.RuleID,
			normalizePath(r.File, ws.Root),
			r.Line,
			r.Column,
			findings.NormalizeSeverity(r.Severity),
			r.Message,
		))
	}

	// Last cancellation point before the atomic store commit.
	if err := runCtx.Err(); err != nil {
		o.logger.Info("analysis cancelled before commit", "workspace", ws.ID)
		return nil, err
	}
	o.store.StoreViolations(results, ws.ID)

	// A full pass analyzed every workspace source, so every source gets a
	// tracking record; otherwise only the explicit subset does.
	analyzed := files
	if len(analyzed) == 0 {
		analyzed = o.workspaceSources(ws.Root)
	}
	o.refreshTracking(ws, analyzed)

	completedAt := time.Now().UTC()
	res := &Result{
		Findings:          results,
		FilesAnalyzed:     len(analyzed),
		StartedAt:         startedAt,
		CompletedAt:       completedAt,
		Duration:          completedAt.Sub(startedAt),
		ConfigFingerprint: configFingerprint(configPath),
	}

	o.logger.Info("analysis finished",
		"workspace", ws.ID, "findings", len(results), "files", res.FilesAnalyzed, "duration", res.Duration)
	return res, nil
}

// refreshTracking re-records the analyzed subset so the next incremental pass
// treats these files as up to date. Best effort: a file deleted mid-run stays
// flagged as changed.
func (o *Orchestrator) refreshTracking(ws Workspace, files []string) {
	for _, f := range files {
		path := f
		if !filepath.IsAbs(path) {
			path = filepath.Join(ws.Root, path)
		}
		if err := o.tracker.UpdateTracking(path); err != nil {
			o.logger.Debug("tracking refresh skipped", "file", f, "error", err)
		}
	}
}

// workspaceSources walks the workspace collecting analyzable sources,
// skipping the build-output directory and hidden directories.
func (o *Orchestrator) workspaceSources(root string) []string {
	var sources []string
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (name == BuildDirName || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		for _, ext := range o.sourceExts {
			if strings.HasSuffix(d.Name(), ext) {
				sources = append(sources, path)
				break
			}
		}
		return nil
	})
	return sources
}

// normalizePath rewrites absolute paths under the workspace root to be
// workspace-relative. Paths outside the root are passed through unchanged so
// findings from configs referencing sibling trees are not dropped.
func normalizePath(p, root string) string {
	if !filepath.IsAbs(p) {
		return p
	}
	rel, err := filepath.Rel(root, p)
	if err != nil || strings.HasPrefix(rel, "..") {
		return p
	}
	return rel
}

// excludeBuildDir drops any file that lives under the build-output directory.
func excludeBuildDir(files []string) []string {
	kept := make([]string, 0, len(files))
	for _, f := range files {
		if underBuildDir(f) {
			continue
		}
		kept = append(kept, f)
	}
	return kept
}

func underBuildDir(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == BuildDirName {
			return true
		}
	}
	return false
}

// configFingerprint hashes the configuration file contents for cache-key use.
// Returns an empty string when no readable configuration was supplied.
func configFingerprint(configPath string) string {
	if configPath == "" {
		return ""
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%016x", xxh3.Hash(data))
}
