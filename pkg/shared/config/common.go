package config

import (
	"os"
	"path/filepath"
)

const (
	// DefaultLinterBinary is the external analysis tool used when neither a
	// binary nor a plugin is configured.
	DefaultLinterBinary = "swiftlint"

	// DefaultSimulationJobs bounds concurrent rule evaluations in the
	// impact simulator.
	DefaultSimulationJobs = 1

	trackerFileName = "tracker.json"
)

// applyDefaults fills in every unset directive so callers never need to
// distinguish "no config file" from "empty config file".
func applyDefaults(cfg *Config) {
	if cfg.LintAudit.HomeFolder == "" {
		cfg.LintAudit.HomeFolder = defaultHome()
	}
	if cfg.LintAudit.PluginsFolder == "" {
		cfg.LintAudit.PluginsFolder = filepath.Join(cfg.LintAudit.HomeFolder, "plugins")
	}
	if cfg.LintAudit.TempFolder == "" {
		cfg.LintAudit.TempFolder = filepath.Join(cfg.LintAudit.HomeFolder, "tmp")
	}
	if cfg.Linter.Binary == "" {
		cfg.Linter.Binary = DefaultLinterBinary
	}
	if cfg.Linter.SimulationJobs <= 0 {
		cfg.Linter.SimulationJobs = DefaultSimulationJobs
	}
}

func defaultHome() string {
	if envHome := os.Getenv("LINTAUDIT_HOME"); envHome != "" {
		return envHome
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fall back to the working directory when no home folder exists,
		// e.g. in minimal CI containers.
		return ".lintaudit"
	}
	return filepath.Join(home, ".lintaudit")
}

// GetLintAuditHome returns the resolved home folder.
func GetLintAuditHome(cfg *Config) string {
	if cfg != nil && cfg.LintAudit.HomeFolder != "" {
		return cfg.LintAudit.HomeFolder
	}
	return defaultHome()
}

// GetPluginsHome returns the folder that holds linter plugin binaries.
func GetPluginsHome(cfg *Config) string {
	if envPlugins := os.Getenv("LINTAUDIT_PLUGINS_FOLDER"); envPlugins != "" {
		return envPlugins
	}
	if cfg != nil && cfg.LintAudit.PluginsFolder != "" {
		return cfg.LintAudit.PluginsFolder
	}
	return filepath.Join(defaultHome(), "plugins")
}

// GetTempHome returns the folder for ephemeral files such as the simulator's
// synthetic configurations.
func GetTempHome(cfg *Config) string {
	if cfg != nil && cfg.LintAudit.TempFolder != "" {
		return cfg.LintAudit.TempFolder
	}
	return filepath.Join(defaultHome(), "tmp")
}

// GetTrackerPath returns the default backing file for the change tracker.
func GetTrackerPath(cfg *Config) string {
	return filepath.Join(GetLintAuditHome(cfg), trackerFileName)
}
