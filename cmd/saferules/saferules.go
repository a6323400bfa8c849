package saferules

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/scan-io-git/lint-audit/internal/simulator"
	"github.com/scan-io-git/lint-audit/internal/tool"
	"github.com/scan-io-git/lint-audit/pkg/shared/config"
	"github.com/scan-io-git/lint-audit/pkg/shared/files"
	"github.com/scan-io-git/lint-audit/pkg/shared/logger"
)

// RunOptionsSafeRules holds the arguments for the safe-rules command.
type RunOptionsSafeRules struct {
	Disabled   []string
	ConfigPath string
	Plugin     string
	Jobs       int
}

var (
	AppConfig            *config.Config
	safeRulesOptions     RunOptionsSafeRules
	exampleSafeRuleUsage = `  # Finding which disabled rules could be enabled without violations
  lintaudit safe-rules --disabled force_cast,force_try,todo /path/to/my_project

  # Against an existing base configuration
  lintaudit safe-rules --disabled force_cast --config /path/to/.swiftlint.yml /path/to/my_project`
)

// SafeRulesCmd represents the safe-rules command.
var SafeRulesCmd = &cobra.Command{
	Use:                   "safe-rules --disabled RULE[,RULE...] [--config/-c PATH] PATH",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleSafeRuleUsage,
	Short:                 "Lists disabled rules that would produce zero findings if enabled",
	RunE:                  runSafeRulesCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

// runSafeRulesCommand executes the safe-rules command.
func runSafeRulesCommand(cmd *cobra.Command, args []string) error {
	log := logger.NewLogger(AppConfig, "core-safe-rules")

	if len(args) != 1 {
		return fmt.Errorf("exactly one workspace path must be specified")
	}
	if len(safeRulesOptions.Disabled) == 0 {
		return fmt.Errorf("the 'disabled' flag must be specified")
	}

	root, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("failed to resolve workspace path: %w", err)
	}

	var runner tool.Runner
	toolName := AppConfig.Linter.Binary
	if safeRulesOptions.Plugin != "" {
		runner = tool.NewPluginRunner(AppConfig, safeRulesOptions.Plugin, log)
		toolName = safeRulesOptions.Plugin
	} else {
		runner = tool.NewExecRunner(AppConfig.Linter.Binary, log)
	}

	jobs := safeRulesOptions.Jobs
	if jobs <= 0 {
		jobs = AppConfig.Linter.SimulationJobs
	}
	tempHome := config.GetTempHome(AppConfig)
	if err := files.CreateFolderIfNotExists(tempHome); err != nil {
		log.Error("failed to prepare temp folder", "error", err)
		return err
	}
	sim := simulator.New(runner, toolName, tempHome, jobs, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	safe, err := sim.FindSafeRules(ctx, root, safeRulesOptions.ConfigPath, safeRulesOptions.Disabled)
	if err != nil {
		log.Error("safe-rules command failed", "error", err)
		return err
	}

	if len(safe) == 0 {
		fmt.Println("no safe rules found")
	} else {
		fmt.Printf("safe to enable: %s\n", strings.Join(safe, ", "))
	}

	log.Info("safe-rules command completed successfully", "candidates", len(safeRulesOptions.Disabled), "safe", len(safe))
	return nil
}

// Initialize flags for the safe-rules command.
func init() {
	SafeRulesCmd.Flags().StringSliceVar(&safeRulesOptions.Disabled, "disabled", nil, "Currently disabled rule identifiers to evaluate.")
	SafeRulesCmd.Flags().StringVarP(&safeRulesOptions.ConfigPath, "config", "c", "", "Path to the base linter configuration.")
	SafeRulesCmd.Flags().StringVar(&safeRulesOptions.Plugin, "plugin", "", "Name of the linter plugin binary to use instead of the in-process runner.")
	SafeRulesCmd.Flags().IntVarP(&safeRulesOptions.Jobs, "jobs", "j", 0, "Number of concurrent rule evaluations.")
}
