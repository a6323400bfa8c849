package findings

import (
	"fmt"
	"io"

	"github.com/owenrumney/go-sarif/v2/sarif"
)

const (
	toolName           = "lint-audit"
	toolInformationURI = "https://github.com/scan-io-git/lint-audit"
)

// NewSarifReport converts a finding set into a SARIF 2.1.0 report with a
// single run. Rules are registered once per distinct rule identifier.
func NewSarifReport(items []Finding) (*sarif.Report, error) {
	report, err := sarif.New(sarif.Version210)
	if err != nil {
		return nil, fmt.Errorf("failed to create SARIF report: %w", err)
	}

	run := sarif.NewRunWithInformationURI(toolName, toolInformationURI)
	seenRules := make(map[string]bool)

	for _, f := range items {
		if !seenRules[f.RuleID] {
			run.AddRule(f.RuleID).
				WithDefaultConfiguration(&sarif.ReportingConfiguration{
					Level: string(f.Severity),
				})
			seenRules[f.RuleID] = true
		}

		region := sarif.NewRegion().WithStartLine(f.Line)
		if f.Column > 0 {
			region = region.WithStartColumn(f.Column)
		}
		location := sarif.NewLocation().WithPhysicalLocation(
			sarif.NewPhysicalLocation().
				WithArtifactLocation(sarif.NewArtifactLocation().WithUri(f.FilePath)).
				WithRegion(region),
		)

		result := sarif.NewRuleResult(f.RuleID).
			WithMessage(sarif.NewTextMessage(f.Message)).
			WithLevel(string(f.Severity)).
			WithLocations([]*sarif.Location{location})

		if f.Suppressed {
			result.Properties = sarif.Properties{
				"suppressed":         true,
				"suppression_reason": f.SuppressionReason,
			}
		}

		run.AddResult(result)
	}

	report.AddRun(run)
	return report, nil
}

// WriteSarifReport renders the finding set as pretty-printed SARIF to w.
func WriteSarifReport(items []Finding, w io.Writer) error {
	report, err := NewSarifReport(items)
	if err != nil {
		return err
	}
	if err := report.PrettyWrite(w); err != nil {
		return fmt.Errorf("failed to write SARIF report: %w", err)
	}
	return nil
}
