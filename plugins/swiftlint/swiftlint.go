package main

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"

	"github.com/scan-io-git/lint-audit/pkg/shared"
)

// Metadata of the plugin
var (
	Version       = "unknown"
	GolangVersion = "unknown"
	BuildTime     = "unknown"
)

// LinterSwiftlint runs the swiftlint binary and hands the raw JSON report
// back to the host.
type LinterSwiftlint struct {
	logger hclog.Logger
}

// newLinterSwiftlint creates a new instance of LinterSwiftlint.
func newLinterSwiftlint(logger hclog.Logger) *LinterSwiftlint {
	return &LinterSwiftlint{logger: logger}
}

// buildCommandArgs constructs the command-line arguments for the swiftlint command.
func (g *LinterSwiftlint) buildCommandArgs(args shared.LintRequest) []string {
	commandArgs := []string{"lint", "--reporter", "json", "--quiet"}

	if args.ConfigPath != "" {
		commandArgs = append(commandArgs, "--config", args.ConfigPath)
	}
	commandArgs = append(commandArgs, args.Files...)

	return commandArgs
}

// Lint executes swiftlint with the provided arguments and returns the raw report.
func (g *LinterSwiftlint) Lint(args shared.LintRequest) (shared.LintResponse, error) {
	var result shared.LintResponse
	g.logger.Info("lint is starting", "workspace", args.WorkspaceRoot)

	if err := g.validateLint(&args); err != nil {
		g.logger.Error("validation failed for lint operation", "error", err)
		return result, err
	}

	cmd := exec.Command("swiftlint", g.buildCommandArgs(args)...)
	cmd.Dir = args.WorkspaceRoot
	g.logger.Debug("debug info", "cmd", cmd.Args)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	// swiftlint exits non-zero when serious violations are found; the report
	// on stdout is still the result of a successful run.
	if err := cmd.Run(); err != nil && stdout.Len() == 0 {
		g.logger.Error("swiftlint execution error", "error", err)
		return result, fmt.Errorf("swiftlint execution error: %w. Output: %s", err, stderr.String())
	}

	result.RawReport = stdout.Bytes()
	g.logger.Info("lint finished", "workspace", args.WorkspaceRoot, "bytes", len(result.RawReport))
	return result, nil
}

func main() {
	logger := hclog.New(&hclog.LoggerOptions{
		Level:      hclog.Trace,
		Output:     os.Stderr,
		JSONFormat: true,
	})

	linterInstance := newLinterSwiftlint(logger)

	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: shared.HandshakeConfig,
		Plugins: map[string]plugin.Plugin{
			shared.PluginTypeLinter: &shared.LinterPlugin{Impl: linterInstance},
		},
	})
}
