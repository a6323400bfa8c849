package simulate

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/scan-io-git/lint-audit/internal/simulator"
	"github.com/scan-io-git/lint-audit/internal/tool"
	"github.com/scan-io-git/lint-audit/pkg/shared/config"
	"github.com/scan-io-git/lint-audit/pkg/shared/files"
	"github.com/scan-io-git/lint-audit/pkg/shared/logger"
)

// RunOptionsSimulate holds the arguments for the simulate command.
type RunOptionsSimulate struct {
	Rules      []string
	ConfigPath string
	Plugin     string
	Jobs       int
}

var (
	AppConfig            *config.Config
	simulateOptions      RunOptionsSimulate
	exampleSimulateUsage = `  # Evaluating the impact of enabling two rules
  lintaudit simulate --rules force_cast,force_try /path/to/my_project

  # Evaluating on top of an existing linter configuration
  lintaudit simulate --rules force_cast --config /path/to/.swiftlint.yml /path/to/my_project

  # Evaluating several rules with two concurrent linter runs
  lintaudit simulate --rules r1,r2,r3,r4 -j 2 /path/to/my_project`
)

// SimulateCmd represents the simulate command.
var SimulateCmd = &cobra.Command{
	Use:                   "simulate --rules RULE[,RULE...] [--config/-c PATH] [-j JOBS] PATH",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleSimulateUsage,
	Short:                 "Evaluates what enabling individual rules would do, without persisting anything",
	RunE:                  runSimulateCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

// runSimulateCommand executes the simulate command.
func runSimulateCommand(cmd *cobra.Command, args []string) error {
	log := logger.NewLogger(AppConfig, "core-simulate")

	if simulateOptions.ConfigPath != "" {
		expanded, err := files.ExpandPath(simulateOptions.ConfigPath)
		if err != nil {
			return fmt.Errorf("failed to resolve linter config path: %w", err)
		}
		simulateOptions.ConfigPath = expanded
	}

	if err := validateSimulateArgs(&simulateOptions, args); err != nil {
		log.Error("invalid simulate arguments", "error", err)
		return err
	}

	root, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("failed to resolve workspace path: %w", err)
	}

	var runner tool.Runner
	toolName := AppConfig.Linter.Binary
	if pluginName := pickPlugin(&simulateOptions, AppConfig); pluginName != "" {
		runner = tool.NewPluginRunner(AppConfig, pluginName, log)
		toolName = pluginName
	} else {
		runner = tool.NewExecRunner(AppConfig.Linter.Binary, log)
	}

	jobs := simulateOptions.Jobs
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

	progress := func(index, total int, ruleID string) {
		log.Info("evaluating rule", "#", index+1, "total", total, "rule", ruleID)
	}

	results, err := sim.SimulateRules(ctx, simulateOptions.Rules, root, simulateOptions.ConfigPath, progress)
	if err != nil {
		log.Error("simulate command failed", "error", err)
		return err
	}

	for _, res := range results {
		if res.Err != nil {
			fmt.Printf("%s: evaluation failed: %v\n", res.RuleID, res.Err)
			continue
		}
		verdict := "unsafe"
		if res.IsSafe {
			verdict = "safe"
		}
		fmt.Printf("%s: %d violation(s) in %d file(s) [%s]\n",
			res.RuleID, res.ViolationCount, len(res.AffectedFiles), verdict)
	}

	log.Info("simulate command completed successfully", "rules", len(results))
	return nil
}

func pickPlugin(options *RunOptionsSimulate, cfg *config.Config) string {
	if options.Plugin != "" {
		return options.Plugin
	}
	return cfg.Linter.Plugin
}

// Initialize flags for the simulate command.
func init() {
	SimulateCmd.Flags().StringSliceVar(&simulateOptions.Rules, "rules", nil, "Rule identifiers to evaluate, in order.")
	SimulateCmd.Flags().StringVarP(&simulateOptions.ConfigPath, "config", "c", "", "Path to the base linter configuration to layer the rule on top of.")
	SimulateCmd.Flags().StringVar(&simulateOptions.Plugin, "plugin", "", "Name of the linter plugin binary to use instead of the in-process runner.")
	SimulateCmd.Flags().IntVarP(&simulateOptions.Jobs, "jobs", "j", 0, "Number of concurrent rule evaluations.")
}
