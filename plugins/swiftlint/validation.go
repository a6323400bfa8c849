package main

import (
	"fmt"
	"os"

	"github.com/scan-io-git/lint-audit/pkg/shared"
	"github.com/scan-io-git/lint-audit/pkg/shared/files"
)

// validateLint checks the necessary fields in LintRequest and returns errors if they are not set.
func (g *LinterSwiftlint) validateLint(args *shared.LintRequest) error {
	if args.WorkspaceRoot == "" {
		return fmt.Errorf("workspace root is required")
	}
	info, err := os.Stat(args.WorkspaceRoot)
	if err != nil {
		return fmt.Errorf("workspace root is not accessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("workspace root %q is not a directory", args.WorkspaceRoot)
	}
	if args.ConfigPath != "" {
		if err := files.ValidatePath(args.ConfigPath); err != nil {
			return fmt.Errorf("linter config is not usable: %w", err)
		}
	}
	return nil
}
