package store

import (
	"io"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/scan-io-git/lint-audit/internal/findings"
)

// Filter narrows a fetch to findings matching every provided predicate.
// A nil/empty predicate imposes no constraint.
type Filter struct {
	RuleIDs        []string
	Severities     []findings.Severity
	FilePaths      []string
	Suppressed     *bool // true: suppressed only, false: unsuppressed only
	DetectedAfter  *time.Time
	DetectedBefore *time.Time
}

type workspaceSet struct {
	byID  map[string]*findings.Finding
	order []string // finding IDs in insertion order, for stable fetch output
}

// Store holds the current finding set per workspace. All access is serialized
// through the store's own lock; callers never hold it across blocking calls.
// Operations scoped to one workspace never observe another workspace's set.
type Store struct {
	logger hclog.Logger

	mu         sync.RWMutex
	workspaces map[string]*workspaceSet
}

// New creates an empty store.
func New(logger hclog.Logger) *Store {
	return &Store{
		logger:     logger,
		workspaces: make(map[string]*workspaceSet),
	}
}

// StoreViolations atomically replaces the entire finding set for the
// workspace. Readers see either the old set in full or the new set in full.
// If two input findings share an identifier, the later one wins.
func (s *Store) StoreViolations(items []findings.Finding, workspaceID string) {
	ws := &workspaceSet{
		byID:  make(map[string]*findings.Finding, len(items)),
		order: make([]string, 0, len(items)),
	}
	for i := range items {
		f := cloneFinding(&items[i])
		if _, exists := ws.byID[f.ID]; !exists {
			ws.order = append(ws.order, f.ID)
		}
		ws.byID[f.ID] = &f
	}

	s.mu.Lock()
	s.workspaces[workspaceID] = ws
	s.mu.Unlock()

	s.logger.Debug("violations stored", "workspace", workspaceID, "count", len(ws.order))
}

// FetchViolations returns the workspace's findings matching all filter
// predicates, in insertion order. The returned values are copies.
func (s *Store) FetchViolations(filter Filter, workspaceID string) []findings.Finding {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ws, ok := s.workspaces[workspaceID]
	if !ok {
		return nil
	}

	var out []findings.Finding
	for _, id := range ws.order {
		f := ws.byID[id]
		if matches(f, filter) {
			out = append(out, cloneFinding(f))
		}
	}
	return out
}

// GetViolationCount is the count-only variant of FetchViolations. It shares
// the same predicate path so the two can never disagree.
func (s *Store) GetViolationCount(filter Filter, workspaceID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ws, ok := s.workspaces[workspaceID]
	if !ok {
		return 0
	}

	count := 0
	for _, id := range ws.order {
		if matches(ws.byID[id], filter) {
			count++
		}
	}
	return count
}

// SuppressViolations marks the findings with the given identifiers, in any
// workspace, as suppressed. Unknown identifiers are ignored. Suppressing an
// already-suppressed finding updates the reason and is not an error.
func (s *Store) SuppressViolations(ids []string, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wanted := idSet(ids)
	for _, ws := range s.workspaces {
		for id, f := range ws.byID {
			if wanted[id] {
				f.Suppressed = true
				f.SuppressionReason = reason
			}
		}
	}
}

// ResolveViolations sets a resolution timestamp on the findings with the
// given identifiers. Resolved findings stay in the store. Resolving an
// already-resolved finding keeps its original timestamp.
func (s *Store) ResolveViolations(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	wanted := idSet(ids)
	for _, ws := range s.workspaces {
		for id, f := range ws.byID {
			if wanted[id] && f.ResolvedAt == nil {
				ts := now
				f.ResolvedAt = &ts
			}
		}
	}
}

// ExportSARIF renders the workspace's full finding set as a SARIF report to w.
// Read-only; the export observes the same atomic set a fetch would.
func (s *Store) ExportSARIF(workspaceID string, w io.Writer) error {
	items := s.FetchViolations(Filter{}, workspaceID)
	return findings.WriteSarifReport(items, w)
}

// DeleteViolations removes all findings for the workspace.
func (s *Store) DeleteViolations(workspaceID string) {
	s.mu.Lock()
	delete(s.workspaces, workspaceID)
	s.mu.Unlock()

	s.logger.Debug("violations deleted", "workspace", workspaceID)
}

// cloneFinding copies a finding including its resolution timestamp, so the
// stored state and the caller's value never share a pointer.
func cloneFinding(f *findings.Finding) findings.Finding {
	c := *f
	if f.ResolvedAt != nil {
		ts := *f.ResolvedAt
		c.ResolvedAt = &ts
	}
	return c
}

func idSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}

func matches(f *findings.Finding, filter Filter) bool {
	if len(filter.RuleIDs) > 0 && !containsString(filter.RuleIDs, f.RuleID) {
		return false
	}
	if len(filter.Severities) > 0 && !containsSeverity(filter.Severities, f.Severity) {
		return false
	}
	if len(filter.FilePaths) > 0 && !containsString(filter.FilePaths, f.FilePath) {
		return false
	}
	if filter.Suppressed != nil && f.Suppressed != *filter.Suppressed {
		return false
	}
	if filter.DetectedAfter != nil && f.DetectedAt.Before(*filter.DetectedAfter) {
		return false
	}
	if filter.DetectedBefore != nil && f.DetectedAt.After(*filter.DetectedBefore) {
		return false
	}
	return true
}

func containsString(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

func containsSeverity(values []findings.Severity, v findings.Severity) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
