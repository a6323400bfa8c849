package version

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/scan-io-git/lint-audit/pkg/shared"
	"github.com/scan-io-git/lint-audit/pkg/shared/config"
)

var (
	AppConfig     *config.Config
	CoreVersion   = "unknown"
	GolangVersion = "unknown"
	BuildTime     = "unknown"
)

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

// NewVersionCmd creates a new cobra.Command for the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "version",
		SilenceUsage:          true,
		DisableFlagsInUseLine: true,
		Short:                 "Print the version number of the application and installed linter plugins",
		Run: func(cmd *cobra.Command, args []string) {
			versions := shared.Versions{
				Version:       CoreVersion,
				GolangVersion: GolangVersion,
				BuildTime:     BuildTime,
			}
			printVersionInfo(versions, getPluginVersions(config.GetPluginsHome(AppConfig)))
		},
	}
}

// getPluginVersions reads the VERSION file of every installed plugin. Each
// file holds a single version string; a plugin without one reports "unknown".
func getPluginVersions(pluginsDir string) map[string]string {
	versions := make(map[string]string)
	entries, err := os.ReadDir(pluginsDir)
	if err != nil {
		return versions
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(pluginsDir, entry.Name(), "VERSION"))
		if err != nil || len(strings.TrimSpace(string(data))) == 0 {
			versions[entry.Name()] = "unknown"
			continue
		}
		versions[entry.Name()] = strings.TrimSpace(string(data))
	}
	return versions
}

// printVersionInfo prints the version information for the core binary and plugins.
func printVersionInfo(versions shared.Versions, plugins map[string]string) {
	fmt.Printf("Core Version: v%s\n", versions.Version)
	if len(plugins) > 0 {
		fmt.Println("Plugin Versions:")
		names := make([]string, 0, len(plugins))
		for name := range plugins {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Printf("  %s: v%s\n", name, plugins[name])
		}
	}
	fmt.Printf("Go Version: %s\n", versions.GolangVersion)
	fmt.Printf("Build Time: %s\n", versions.BuildTime)
}
