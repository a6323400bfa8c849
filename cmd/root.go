package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/scan-io-git/lint-audit/cmd/analyse"
	"github.com/scan-io-git/lint-audit/cmd/saferules"
	"github.com/scan-io-git/lint-audit/cmd/simulate"
	"github.com/scan-io-git/lint-audit/cmd/version"
	"github.com/scan-io-git/lint-audit/pkg/shared/config"
)

var (
	cfgFile   string
	AppConfig *config.Config
	rootCmd   = &cobra.Command{
		Use:                   "lintaudit [command]",
		SilenceUsage:          true,
		DisableFlagsInUseLine: true,
		Short:                 "Lintaudit analyzes a source tree with an external linter and simulates rule changes.",
		Long: `Lintaudit orchestrates an external lint tool over a workspace, persists the
resulting findings per workspace, skips unchanged files through a content-fingerprint
tracker, and speculatively evaluates the impact of enabling individual rules.
`,
	}
)

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "app-config", "", "application config file (default is config.yml)")
	rootCmd.AddCommand(analyse.AnalyseCmd)
	rootCmd.AddCommand(simulate.SimulateCmd)
	rootCmd.AddCommand(saferules.SafeRulesCmd)
	rootCmd.AddCommand(version.NewVersionCmd())
}

func Execute() int {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		return 1
	}
	return 0
}

func initConfig() {
	var err error

	if cfgFile == "" {
		cfgFile = "config.yml"
	}
	AppConfig, err = config.LoadConfig(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load application config: %v\n", err)
		os.Exit(1)
	}

	analyse.Init(AppConfig)
	simulate.Init(AppConfig)
	saferules.Init(AppConfig)
	version.Init(AppConfig)
}
