package tool

import (
	"encoding/json"
	"fmt"

	sharederrors "github.com/scan-io-git/lint-audit/pkg/shared/errors"
)

// Record is the typed intermediate form of one tool finding, after tolerant
// field matching. Column is 0 when the tool reported no usable column.
type Record struct {
	File     string
	Line     int
	Column   int
	Severity string
	RuleID   string
	Message  string
}

// rawRecord mirrors the tool's wire schema. The rule identifier is accepted
// under both field names different reporter versions emit; character may be a
// number, null, or absent.
type rawRecord struct {
	File      string      `json:"file"`
	Line      int         `json:"line"`
	Character interface{} `json:"character"`
	Severity  string      `json:"severity"`
	RuleID    string      `json:"rule_id"`
	RuleIDAlt string      `json:"ruleID"`
	Reason    string      `json:"reason"`
}

// ParseOutput decodes the raw report buffer into typed records. An empty list
// is a valid result with zero findings. A buffer that does not decode as a
// record list yields a MalformedOutputError.
func ParseOutput(buf []byte, toolName string) ([]Record, error) {
	var raw []rawRecord
	if err := json.Unmarshal(buf, &raw); err != nil {
		return nil, sharederrors.NewMalformedOutputError(toolName, err)
	}

	records := make([]Record, 0, len(raw))
	for i, r := range raw {
		ruleID := r.RuleID
		if ruleID == "" {
			ruleID = r.RuleIDAlt
		}
		if r.File == "" || ruleID == "" {
			return nil, sharederrors.NewMalformedOutputError(toolName,
				fmt.Errorf("record %d is missing a file or rule identifier", i))
		}
		if r.Line < 1 {
			return nil, sharederrors.NewMalformedOutputError(toolName,
				fmt.Errorf("record %d has a non-positive line number %d", i, r.Line))
		}

		records = append(records, Record{
			File:     r.File,
			Line:     r.Line,
			Column:   parseColumn(r.Character),
			Severity: r.Severity,
			RuleID:   ruleID,
			Message:  r.Reason,
		})
	}
	return records, nil
}

// parseColumn maps absent, null, or non-numeric character values to "no column".
func parseColumn(v interface{}) int {
	switch col := v.(type) {
	case float64:
		if col > 0 {
			return int(col)
		}
	case json.Number:
		if n, err := col.Int64(); err == nil && n > 0 {
			return int(n)
		}
	}
	return 0
}
