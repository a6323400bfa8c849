package tool

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"

	"github.com/hashicorp/go-hclog"

	"github.com/scan-io-git/lint-audit/pkg/shared"
	"github.com/scan-io-git/lint-audit/pkg/shared/config"
	sharederrors "github.com/scan-io-git/lint-audit/pkg/shared/errors"
)

// Runner invokes the external analysis tool against a workspace and returns
// the raw report buffer. Implementations must honor context cancellation and
// must not interpret the buffer.
type Runner interface {
	Run(ctx context.Context, configPath, workspaceRoot string, files []string) ([]byte, error)
}

// ExecRunner runs the linter binary directly as a child process.
type ExecRunner struct {
	binary string
	logger hclog.Logger
}

// NewExecRunner creates a runner for the given linter binary.
func NewExecRunner(binary string, logger hclog.Logger) *ExecRunner {
	return &ExecRunner{binary: binary, logger: logger}
}

// Run executes the linter with the JSON reporter. Lint tools conventionally
// exit non-zero when violations are found, so a failed exit with a non-empty
// report buffer is still a successful run; only a failure with no output is
// surfaced as a tool execution error.
func (r *ExecRunner) Run(ctx context.Context, configPath, workspaceRoot string, files []string) ([]byte, error) {
	args := []string{"lint", "--reporter", "json", "--quiet"}
	if configPath != "" {
		args = append(args, "--config", configPath)
	}
	args = append(args, files...)

	cmd := exec.CommandContext(ctx, r.binary, args...)
	cmd.Dir = workspaceRoot

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.logger.Debug("running linter", "binary", r.binary, "workspace", workspaceRoot, "files", len(files))
	err := cmd.Run()

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil && stdout.Len() == 0 {
		return nil, sharederrors.NewToolExecutionError(r.binary,
			fmt.Errorf("%w: %s", err, stderr.String()))
	}

	return stdout.Bytes(), nil
}

// PluginRunner invokes the linter through a lint-audit plugin binary, using
// the same plugin transport the rest of the toolchain uses.
type PluginRunner struct {
	cfg        *config.Config
	pluginName string
	logger     hclog.Logger
}

// NewPluginRunner creates a runner that dispenses the named linter plugin.
func NewPluginRunner(cfg *config.Config, pluginName string, logger hclog.Logger) *PluginRunner {
	return &PluginRunner{cfg: cfg, pluginName: pluginName, logger: logger}
}

// Run dispenses the plugin and forwards the lint request. The RPC call itself
// is not cancellable mid-flight; cancellation is checked before dispatch and
// after completion, and the plugin process dies with the host.
func (r *PluginRunner) Run(ctx context.Context, configPath, workspaceRoot string, files []string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var raw []byte
	err := shared.WithPlugin(r.cfg, "plugin-linter", r.pluginName, func(p interface{}) error {
		linter, ok := p.(shared.Linter)
		if !ok {
			return fmt.Errorf("invalid plugin type for %q", r.pluginName)
		}
		resp, err := linter.Lint(shared.LintRequest{
			WorkspaceRoot: workspaceRoot,
			ConfigPath:    configPath,
			Files:         files,
		})
		if err != nil {
			return err
		}
		raw = resp.RawReport
		return nil
	})
	if err != nil {
		return nil, sharederrors.NewToolExecutionError(r.pluginName, err)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	return raw, nil
}
