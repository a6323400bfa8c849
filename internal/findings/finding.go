package findings

import (
	"time"

	"github.com/google/uuid"
)

// Severity is the level the external tool assigned to a finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// NormalizeSeverity maps a raw tool severity string onto the two supported
// levels. Anything that is not an error is treated as a warning.
func NormalizeSeverity(raw string) Severity {
	if raw == string(SeverityError) {
		return SeverityError
	}
	return SeverityWarning
}

// Finding is one reported issue, normalized from the external tool's output.
// A finding belongs to exactly one workspace; the workspace identifier is the
// store's partition key and is not part of the finding itself.
type Finding struct {
	ID       string   `json:"id"`
	RuleID   string   `json:"rule_id"`
	FilePath string   `json:"file_path"`
	Line     int      `json:"line"`
	Column   int      `json:"column,omitempty"` // 0 means the tool reported no column
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`

	DetectedAt time.Time  `json:"detected_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`

	Suppressed        bool   `json:"suppressed"`
	SuppressionReason string `json:"suppression_reason,omitempty"`
}

// New creates a finding with a fresh identity and the current detection time.
func New(ruleID, filePath string, line, column int, severity Severity, message string) Finding {
	return Finding{
		ID:         uuid.NewString(),
		RuleID:     ruleID,
		FilePath:   filePath,
		Line:       line,
		Column:     column,
		Severity:   severity,
		Message:    message,
		DetectedAt: time.Now().UTC(),
	}
}
