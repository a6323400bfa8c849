package simulator

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	yaml "gopkg.in/yaml.v2"

	"github.com/scan-io-git/lint-audit/internal/findings"
	"github.com/scan-io-git/lint-audit/internal/tool"
)

// FailedEvaluationCount is the sentinel violation count recorded when a
// batch item's evaluation failed. Legitimate counts are never negative.
const FailedEvaluationCount = -1

// SimulationResult answers "what would happen if this rule were enabled"
// for one rule, without touching any persisted state.
type SimulationResult struct {
	RuleID         string
	ViolationCount int
	IsSafe         bool
	AffectedFiles  []string
	Findings       []findings.Finding
	Err            error // authoritative failure tag; set iff the evaluation failed
}

// Progress is invoked before each batch item is dispatched, with the
// zero-based index of the item about to run, the total count and its rule.
type Progress func(index, total int, ruleID string)

// Simulator evaluates rules under ephemeral configurations. It shares the
// orchestrator's tool runner but never writes to the result store or the
// change tracker.
type Simulator struct {
	runner   tool.Runner
	toolName string
	tempDir  string // where ephemeral configs are written; empty means the OS default
	jobs     int    // bound on concurrent evaluations
	logger   hclog.Logger
}

// New creates a simulator with the given concurrency bound for batch runs.
func New(runner tool.Runner, toolName, tempDir string, jobs int, logger hclog.Logger) *Simulator {
	if jobs < 1 {
		jobs = 1
	}
	return &Simulator{
		runner:   runner,
		toolName: toolName,
		tempDir:  tempDir,
		jobs:     jobs,
		logger:   logger,
	}
}

// ephemeralConfig is the synthetic configuration layered over the optional
// base: enable exactly one rule. The base config itself is never parsed.
type ephemeralConfig struct {
	ParentConfig string   `yaml:"parent_config,omitempty"`
	OnlyRules    []string `yaml:"only_rules"`
}

func (s *Simulator) writeEphemeralConfig(ruleID, baseConfigPath string) (string, func(), error) {
	data, err := yaml.Marshal(ephemeralConfig{
		ParentConfig: baseConfigPath,
		OnlyRules:    []string{ruleID},
	})
	if err != nil {
		return "", nil, fmt.Errorf("failed to build simulation config for rule %q: %w", ruleID, err)
	}

	f, err := os.CreateTemp(s.tempDir, "lintaudit-sim-*.yml")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create simulation config: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", nil, fmt.Errorf("failed to write simulation config: %w", err)
	}
	f.Close()

	return f.Name(), func() { os.Remove(f.Name()) }, nil
}

// evaluate runs the tool with the ephemeral configuration and reduces the
// output to a single rule's impact.
func (s *Simulator) evaluate(ctx context.Context, ruleID, workspaceRoot, baseConfigPath string) SimulationResult {
	configPath, cleanup, err := s.writeEphemeralConfig(ruleID, baseConfigPath)
	if err != nil {
		return failedResult(ruleID, err)
	}
	defer cleanup()

	buf, err := s.runner.Run(ctx, configPath, workspaceRoot, nil)
	if err != nil {
		return failedResult(ruleID, err)
	}

	records, err := tool.ParseOutput(buf, s.toolName)
	if err != nil {
		return failedResult(ruleID, err)
	}

	// Some tools report extraneous findings even under only_rules; keep only
	// the rule under evaluation.
	var matched []findings.Finding
	fileSet := make(map[string]bool)
	for _, r := range records {
		if r.RuleID != ruleID {
			continue
		}
		matched = append(matched, findings.New(
			r.RuleID, r.File, r.Line, r.Column,
			findings.NormalizeSeverity(r.Severity), r.Message,
		))
		fileSet[r.File] = true
	}

	affected := make([]string, 0, len(fileSet))
	for f := range fileSet {
		affected = append(affected, f)
	}
	sort.Strings(affected)

	return SimulationResult{
		RuleID:         ruleID,
		ViolationCount: len(matched),
		IsSafe:         len(matched) == 0,
		AffectedFiles:  affected,
		Findings:       matched,
	}
}

func failedResult(ruleID string, err error) SimulationResult {
	return SimulationResult{
		RuleID:         ruleID,
		ViolationCount: FailedEvaluationCount,
		IsSafe:         false,
		Err:            err,
	}
}

// SimulateRule evaluates a single rule. The tool's failure, if any, is
// propagated as-is.
func (s *Simulator) SimulateRule(ctx context.Context, ruleID, workspaceRoot, baseConfigPath string) (SimulationResult, error) {
	res := s.evaluate(ctx, ruleID, workspaceRoot, baseConfigPath)
	if res.Err != nil {
		return res, res.Err
	}
	return res, nil
}

// SimulateRules evaluates each rule in input order. A failed item records the
// failure sentinel instead of aborting the batch; the remaining items are
// still evaluated. Results preserve input order even though evaluations may
// overlap up to the configured bound.
func (s *Simulator) SimulateRules(ctx context.Context, ruleIDs []string, workspaceRoot, baseConfigPath string, progress Progress) ([]SimulationResult, error) {
	total := len(ruleIDs)
	results := make([]SimulationResult, total)

	sem := semaphore.NewWeighted(int64(s.jobs))
	g := new(errgroup.Group)

	for i, ruleID := range ruleIDs {
		// Acquiring in loop order keeps progress reporting in input order.
		if err := sem.Acquire(ctx, 1); err != nil {
			for j := i; j < total; j++ {
				results[j] = failedResult(ruleIDs[j], err)
			}
			break
		}
		if progress != nil {
			progress(i, total, ruleID)
		}

		i, ruleID := i, ruleID
		g.Go(func() error {
			defer sem.Release(1)
			res := s.evaluate(ctx, ruleID, workspaceRoot, baseConfigPath)
			if res.Err != nil {
				s.logger.Warn("rule evaluation failed", "rule", ruleID, "error", res.Err)
			}
			results[i] = res
			return nil
		})
	}

	_ = g.Wait()
	return results, nil
}

// FindSafeRules returns the subset of disabledRuleIDs that produce zero
// findings when hypothetically enabled. Failed evaluations are never safe.
func (s *Simulator) FindSafeRules(ctx context.Context, workspaceRoot, baseConfigPath string, disabledRuleIDs []string) ([]string, error) {
	results, err := s.SimulateRules(ctx, disabledRuleIDs, workspaceRoot, baseConfigPath, nil)
	if err != nil {
		return nil, err
	}

	safe := make([]string, 0, len(results))
	for _, res := range results {
		if res.IsSafe {
			safe = append(safe, res.RuleID)
		}
	}
	return safe, nil
}
