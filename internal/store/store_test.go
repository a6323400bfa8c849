package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/scan-io-git/lint-audit/internal/findings"
)

func newTestStore() *Store {
	return New(hclog.NewNullLogger())
}

func testFinding(ruleID, file string, severity findings.Severity) findings.Finding {
	return findings.New(ruleID, file, 10, 5, severity, "message for "+ruleID)
}

func TestStoreAndFetchInsertionOrder(t *testing.T) {
	s := newTestStore()
	items := []findings.Finding{
		testFinding("force_cast", "Sources/A.swift", findings.SeverityError),
		testFinding("line_length", "Sources/B.swift", findings.SeverityWarning),
		testFinding("todo", "Sources/C.swift", findings.SeverityWarning),
	}
	s.StoreViolations(items, "ws-1")

	got := s.FetchViolations(Filter{}, "ws-1")
	if len(got) != 3 {
		t.Fatalf("expected 3 findings, got %d", len(got))
	}
	for i := range items {
		if got[i].ID != items[i].ID {
			t.Fatalf("fetch order differs from insertion order at index %d", i)
		}
	}
}

func TestWorkspaceIsolation(t *testing.T) {
	s := newTestStore()
	s.StoreViolations([]findings.Finding{testFinding("r1", "a.swift", findings.SeverityError)}, "ws-1")
	s.StoreViolations([]findings.Finding{
		testFinding("r2", "b.swift", findings.SeverityWarning),
		testFinding("r3", "c.swift", findings.SeverityWarning),
	}, "ws-2")

	if n := s.GetViolationCount(Filter{}, "ws-1"); n != 1 {
		t.Fatalf("ws-1 count: want 1, got %d", n)
	}
	if n := s.GetViolationCount(Filter{}, "ws-2"); n != 2 {
		t.Fatalf("ws-2 count: want 2, got %d", n)
	}
	if got := s.FetchViolations(Filter{}, "ws-unknown"); len(got) != 0 {
		t.Fatalf("unknown workspace should be empty, got %d findings", len(got))
	}
}

func TestStoreReplacesNotMerges(t *testing.T) {
	s := newTestStore()
	old := testFinding("old_rule", "old.swift", findings.SeverityError)
	s.StoreViolations([]findings.Finding{old}, "ws-1")

	replacement := testFinding("new_rule", "new.swift", findings.SeverityWarning)
	s.StoreViolations([]findings.Finding{replacement}, "ws-1")

	got := s.FetchViolations(Filter{}, "ws-1")
	if len(got) != 1 {
		t.Fatalf("expected exactly the replacement set, got %d findings", len(got))
	}
	if got[0].RuleID != "new_rule" {
		t.Fatalf("old finding survived the replace: %v", got[0].RuleID)
	}
}

func TestDuplicateIDLaterWins(t *testing.T) {
	s := newTestStore()
	first := testFinding("r1", "a.swift", findings.SeverityError)
	second := first
	second.Message = "updated message"

	s.StoreViolations([]findings.Finding{first, second}, "ws-1")

	got := s.FetchViolations(Filter{}, "ws-1")
	if len(got) != 1 {
		t.Fatalf("duplicate identifiers must collapse to one finding, got %d", len(got))
	}
	if got[0].Message != "updated message" {
		t.Fatalf("expected the later duplicate to win, got %q", got[0].Message)
	}
}

func TestFilterPredicatesAreConjunctive(t *testing.T) {
	s := newTestStore()
	a := testFinding("force_cast", "Sources/A.swift", findings.SeverityError)
	b := testFinding("force_cast", "Sources/B.swift", findings.SeverityWarning)
	c := testFinding("line_length", "Sources/A.swift", findings.SeverityError)
	s.StoreViolations([]findings.Finding{a, b, c}, "ws-1")

	got := s.FetchViolations(Filter{
		RuleIDs:    []string{"force_cast"},
		Severities: []findings.Severity{findings.SeverityError},
	}, "ws-1")
	if len(got) != 1 {
		t.Fatalf("expected 1 finding matching both predicates, got %d", len(got))
	}
	if got[0].ID != a.ID {
		t.Fatalf("wrong finding matched: rule=%s file=%s", got[0].RuleID, got[0].FilePath)
	}

	got = s.FetchViolations(Filter{FilePaths: []string{"Sources/A.swift"}}, "ws-1")
	if len(got) != 2 {
		t.Fatalf("expected 2 findings for the file filter, got %d", len(got))
	}
}

func TestCountMatchesFetch(t *testing.T) {
	s := newTestStore()
	var items []findings.Finding
	for i := 0; i < 20; i++ {
		sev := findings.SeverityWarning
		if i%3 == 0 {
			sev = findings.SeverityError
		}
		items = append(items, testFinding(fmt.Sprintf("rule_%d", i%4), fmt.Sprintf("f%d.swift", i), sev))
	}
	s.StoreViolations(items, "ws-1")

	filters := []Filter{
		{},
		{RuleIDs: []string{"rule_0"}},
		{Severities: []findings.Severity{findings.SeverityError}},
		{RuleIDs: []string{"rule_1", "rule_2"}, Severities: []findings.Severity{findings.SeverityWarning}},
	}
	for i, f := range filters {
		fetched := s.FetchViolations(f, "ws-1")
		count := s.GetViolationCount(f, "ws-1")
		if len(fetched) != count {
			t.Fatalf("filter %d: fetch returned %d but count returned %d", i, len(fetched), count)
		}
	}
}

func TestDetectedAtWindowFilter(t *testing.T) {
	s := newTestStore()
	early := testFinding("r1", "a.swift", findings.SeverityError)
	early.DetectedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	late := testFinding("r2", "b.swift", findings.SeverityError)
	late.DetectedAt = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	s.StoreViolations([]findings.Finding{early, late}, "ws-1")

	cutoff := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	got := s.FetchViolations(Filter{DetectedAfter: &cutoff}, "ws-1")
	if len(got) != 1 || got[0].RuleID != "r2" {
		t.Fatalf("DetectedAfter filter returned wrong set: %+v", got)
	}
	got = s.FetchViolations(Filter{DetectedBefore: &cutoff}, "ws-1")
	if len(got) != 1 || got[0].RuleID != "r1" {
		t.Fatalf("DetectedBefore filter returned wrong set: %+v", got)
	}
}

func TestSuppressViolations(t *testing.T) {
	s := newTestStore()
	a := testFinding("r1", "a.swift", findings.SeverityError)
	b := testFinding("r2", "b.swift", findings.SeverityWarning)
	s.StoreViolations([]findings.Finding{a, b}, "ws-1")

	s.SuppressViolations([]string{a.ID, "no-such-id"}, "false positive")

	suppressed := true
	got := s.FetchViolations(Filter{Suppressed: &suppressed}, "ws-1")
	if len(got) != 1 || got[0].ID != a.ID {
		t.Fatalf("expected only the suppressed finding, got %+v", got)
	}
	if got[0].SuppressionReason != "false positive" {
		t.Fatalf("suppression reason not stored: %q", got[0].SuppressionReason)
	}

	// suppressing again updates the reason
	s.SuppressViolations([]string{a.ID}, "accepted risk")
	got = s.FetchViolations(Filter{Suppressed: &suppressed}, "ws-1")
	if got[0].SuppressionReason != "accepted risk" {
		t.Fatalf("re-suppression should update the reason, got %q", got[0].SuppressionReason)
	}

	unsuppressed := false
	got = s.FetchViolations(Filter{Suppressed: &unsuppressed}, "ws-1")
	if len(got) != 1 || got[0].ID != b.ID {
		t.Fatalf("unsuppressed filter returned wrong set: %+v", got)
	}
}

func TestResolveViolationsKeepsOriginalTimestamp(t *testing.T) {
	s := newTestStore()
	a := testFinding("r1", "a.swift", findings.SeverityError)
	s.StoreViolations([]findings.Finding{a}, "ws-1")

	s.ResolveViolations([]string{a.ID})
	got := s.FetchViolations(Filter{}, "ws-1")
	if got[0].ResolvedAt == nil {
		t.Fatalf("expected a resolution timestamp")
	}
	first := *got[0].ResolvedAt

	time.Sleep(10 * time.Millisecond)
	s.ResolveViolations([]string{a.ID})
	got = s.FetchViolations(Filter{}, "ws-1")
	if !got[0].ResolvedAt.Equal(first) {
		t.Fatalf("re-resolving must keep the original timestamp: %v vs %v", first, *got[0].ResolvedAt)
	}
}

func TestDeleteViolations(t *testing.T) {
	s := newTestStore()
	s.StoreViolations([]findings.Finding{testFinding("r1", "a.swift", findings.SeverityError)}, "ws-1")
	s.StoreViolations([]findings.Finding{testFinding("r2", "b.swift", findings.SeverityError)}, "ws-2")

	s.DeleteViolations("ws-1")
	if n := s.GetViolationCount(Filter{}, "ws-1"); n != 0 {
		t.Fatalf("ws-1 should be empty after delete, got %d", n)
	}
	if n := s.GetViolationCount(Filter{}, "ws-2"); n != 1 {
		t.Fatalf("delete must not touch other workspaces, ws-2 has %d", n)
	}
}

func TestFetchReturnsCopies(t *testing.T) {
	s := newTestStore()
	a := testFinding("r1", "a.swift", findings.SeverityError)
	s.StoreViolations([]findings.Finding{a}, "ws-1")

	got := s.FetchViolations(Filter{}, "ws-1")
	got[0].Message = "mutated by caller"

	again := s.FetchViolations(Filter{}, "ws-1")
	if again[0].Message == "mutated by caller" {
		t.Fatalf("caller mutation leaked into the store")
	}
}

func TestFetchCopiesResolutionTimestamp(t *testing.T) {
	s := newTestStore()
	a := testFinding("r1", "a.swift", findings.SeverityError)
	s.StoreViolations([]findings.Finding{a}, "ws-1")
	s.ResolveViolations([]string{a.ID})

	got := s.FetchViolations(Filter{}, "ws-1")
	original := *got[0].ResolvedAt
	*got[0].ResolvedAt = time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC)

	again := s.FetchViolations(Filter{}, "ws-1")
	if !again[0].ResolvedAt.Equal(original) {
		t.Fatalf("caller mutation through the timestamp pointer leaked into the store")
	}
}

func TestExportSARIF(t *testing.T) {
	s := newTestStore()
	s.StoreViolations([]findings.Finding{
		testFinding("force_cast", "Sources/A.swift", findings.SeverityError),
		testFinding("todo", "Sources/B.swift", findings.SeverityWarning),
	}, "ws-1")

	var buf bytes.Buffer
	if err := s.ExportSARIF("ws-1", &buf); err != nil {
		t.Fatalf("ExportSARIF returned error: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if decoded["version"] != "2.1.0" {
		t.Fatalf("unexpected SARIF version: %v", decoded["version"])
	}
	if !strings.Contains(buf.String(), "force_cast") || !strings.Contains(buf.String(), "todo") {
		t.Fatalf("exported report is missing rule identifiers")
	}

	// an unknown workspace exports an empty but valid report
	buf.Reset()
	if err := s.ExportSARIF("ws-unknown", &buf); err != nil {
		t.Fatalf("ExportSARIF for unknown workspace returned error: %v", err)
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("empty export is not valid JSON: %v", err)
	}
}

func TestLargeSetFiltering(t *testing.T) {
	s := newTestStore()
	items := make([]findings.Finding, 0, 1000)
	for i := 0; i < 1000; i++ {
		sev := findings.SeverityWarning
		if i%5 == 0 {
			sev = findings.SeverityError
		}
		items = append(items, testFinding(fmt.Sprintf("rule_%d", i%10), fmt.Sprintf("Sources/F%d.swift", i), sev))
	}
	s.StoreViolations(items, "ws-big")

	if n := s.GetViolationCount(Filter{}, "ws-big"); n != 1000 {
		t.Fatalf("want 1000 findings, got %d", n)
	}
	if n := s.GetViolationCount(Filter{Severities: []findings.Severity{findings.SeverityError}}, "ws-big"); n != 200 {
		t.Fatalf("want 200 errors, got %d", n)
	}
	if n := s.GetViolationCount(Filter{RuleIDs: []string{"rule_3"}}, "ws-big"); n != 100 {
		t.Fatalf("want 100 rule_3 findings, got %d", n)
	}
}

func TestConcurrentAccess(t *testing.T) {
	s := newTestStore()
	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wsID := fmt.Sprintf("ws-%d", w)
		wg.Add(2)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				s.StoreViolations([]findings.Finding{
					testFinding("r1", "a.swift", findings.SeverityError),
					testFinding("r2", "b.swift", findings.SeverityWarning),
				}, wsID)
			}
		}()
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				got := s.FetchViolations(Filter{}, wsID)
				// readers must never observe a partially replaced set
				if len(got) != 0 && len(got) != 2 {
					t.Errorf("observed partial set of %d findings", len(got))
					return
				}
			}
		}()
	}
	wg.Wait()
}
