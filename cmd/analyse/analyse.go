package analyse

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/scan-io-git/lint-audit/internal/git"
	"github.com/scan-io-git/lint-audit/internal/orchestrator"
	"github.com/scan-io-git/lint-audit/internal/store"
	"github.com/scan-io-git/lint-audit/internal/tool"
	"github.com/scan-io-git/lint-audit/internal/tracker"
	"github.com/scan-io-git/lint-audit/pkg/shared/config"
	"github.com/scan-io-git/lint-audit/pkg/shared/files"
	"github.com/scan-io-git/lint-audit/pkg/shared/logger"
)

// RunOptionsAnalyse holds the arguments for the analyse command.
type RunOptionsAnalyse struct {
	ConfigPath  string
	OnlyChanged bool
	GitChanged  bool
	Plugin      string
	Format      string
	OutputPath  string
}

// Global variables for configuration and command arguments
var (
	AppConfig           *config.Config
	analyseOptions      RunOptionsAnalyse
	exampleAnalyseUsage = `  # Running a full analysis of a workspace
  lintaudit analyse /path/to/my_project

  # Running an analysis with a linter configuration
  lintaudit analyse --config /path/to/.swiftlint.yml /path/to/my_project

  # Re-analyzing only files that changed since the last run
  lintaudit analyse --changed /path/to/my_project

  # Narrowing the candidate set to git-modified files first
  lintaudit analyse --git-changed --changed /path/to/my_project

  # Exporting the findings as a SARIF report
  lintaudit analyse --format sarif --output findings.sarif /path/to/my_project

  # Running the linter through a plugin binary instead of in-process
  lintaudit analyse --plugin swiftlint /path/to/my_project`
)

// AnalyseCmd represents the analyse command.
var AnalyseCmd = &cobra.Command{
	Use:                   "analyse [--config/-c PATH] [--changed] [--git-changed] [--format/-f FORMAT] [--output/-o PATH] PATH",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleAnalyseUsage,
	Short:                 "Runs the external linter over a workspace and stores the findings",
	RunE:                  runAnalyseCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

// runAnalyseCommand executes the analyse command.
func runAnalyseCommand(cmd *cobra.Command, args []string) error {
	log := logger.NewLogger(AppConfig, "core-analyse")

	if analyseOptions.ConfigPath != "" {
		expanded, err := files.ExpandPath(analyseOptions.ConfigPath)
		if err != nil {
			return fmt.Errorf("failed to resolve linter config path: %w", err)
		}
		analyseOptions.ConfigPath = expanded
	}

	if err := validateAnalyseArgs(&analyseOptions, args); err != nil {
		log.Error("invalid analyse arguments", "error", err)
		return err
	}

	root, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("failed to resolve workspace path: %w", err)
	}
	ws := orchestrator.Workspace{ID: uuid.NewString(), Root: root}

	var runner tool.Runner
	toolName := AppConfig.Linter.Binary
	if pluginName := pickPlugin(&analyseOptions, AppConfig); pluginName != "" {
		runner = tool.NewPluginRunner(AppConfig, pluginName, log)
		toolName = pluginName
	} else {
		runner = tool.NewExecRunner(AppConfig.Linter.Binary, log)
	}

	st := store.New(log)
	tr := tracker.New(config.GetTrackerPath(AppConfig), log)
	orc := orchestrator.New(runner, st, tr, toolName, nil, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	result, err := runAnalysis(ctx, orc, ws, &analyseOptions)
	if err != nil {
		log.Error("analyse command failed", "error", err)
		return err
	}

	if err := writeReport(st, ws.ID, &analyseOptions); err != nil {
		log.Error("failed to write report", "error", err)
		return err
	}

	log.Info("analyse command completed successfully",
		"findings", len(result.Findings),
		"files", result.FilesAnalyzed,
		"duration", result.Duration,
		"config_fingerprint", result.ConfigFingerprint,
	)
	return nil
}

// runAnalysis dispatches to the right orchestrator entry point for the flags.
func runAnalysis(ctx context.Context, orc *orchestrator.Orchestrator, ws orchestrator.Workspace, options *RunOptionsAnalyse) (*orchestrator.Result, error) {
	if options.GitChanged {
		files, err := git.ModifiedFiles(ws.Root)
		if err != nil {
			return nil, fmt.Errorf("failed to list git-modified files: %w", err)
		}
		return orc.AnalyzeFiles(ctx, files, ws, options.OnlyChanged)
	}
	if options.OnlyChanged {
		return orc.AnalyzeChangedFiles(ctx, ws)
	}
	return orc.Analyze(ctx, ws, options.ConfigPath)
}

// writeReport renders the stored finding set in the requested format.
func writeReport(st *store.Store, workspaceID string, options *RunOptionsAnalyse) error {
	out := os.Stdout
	if options.OutputPath != "" {
		f, err := os.Create(options.OutputPath)
		if err != nil {
			return fmt.Errorf("failed to create output file %q: %w", options.OutputPath, err)
		}
		defer f.Close()
		out = f
	}

	if options.Format == "sarif" {
		return st.ExportSARIF(workspaceID, out)
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(st.FetchViolations(store.Filter{}, workspaceID))
}

func pickPlugin(options *RunOptionsAnalyse, cfg *config.Config) string {
	if options.Plugin != "" {
		return options.Plugin
	}
	return cfg.Linter.Plugin
}

// Initialize flags for the analyse command.
func init() {
	AnalyseCmd.Flags().StringVarP(&analyseOptions.ConfigPath, "config", "c", "", "Path to the linter configuration file. Passed through to the linter as-is.")
	AnalyseCmd.Flags().BoolVar(&analyseOptions.OnlyChanged, "changed", false, "Analyze only files that changed since the last recorded analysis.")
	AnalyseCmd.Flags().BoolVar(&analyseOptions.GitChanged, "git-changed", false, "Narrow the candidate set to files the git worktree reports as modified.")
	AnalyseCmd.Flags().StringVar(&analyseOptions.Plugin, "plugin", "", "Name of the linter plugin binary to use instead of the in-process runner.")
	AnalyseCmd.Flags().StringVarP(&analyseOptions.Format, "format", "f", "", "Report format: json (default) or sarif.")
	AnalyseCmd.Flags().StringVarP(&analyseOptions.OutputPath, "output", "o", "", "Path to the output file for the report. Defaults to stdout.")
}
