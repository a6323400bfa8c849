package config

import (
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v2"
)

// Config holds the global application configuration loaded from a YAML file.
type Config struct {
	Logger    Logger    `yaml:"logger"`
	LintAudit LintAudit `yaml:"lintaudit"`
	Linter    Linter    `yaml:"linter"`
}

type Logger struct {
	Level string `yaml:"level"`
}

// LintAudit holds paths used by the core: the home folder with the plugins
// directory, the change-tracker cache and the temp folder for ephemeral
// simulation configs.
type LintAudit struct {
	HomeFolder    string `yaml:"home_folder"`
	PluginsFolder string `yaml:"plugins_folder"`
	TempFolder    string `yaml:"temp_folder"`
}

// Linter describes how the external lint tool is invoked. Binary is used by
// the in-process runner; Plugin selects a plugin binary instead. The linter's
// own configuration file is never parsed here, it is passed through as a path.
type Linter struct {
	Binary         string `yaml:"binary"`
	Plugin         string `yaml:"plugin"`
	SimulationJobs int    `yaml:"simulation_jobs"`
}

// ValidateConfigPath checks that the given path points to a regular file.
func ValidateConfigPath(path string) error {
	s, err := os.Stat(path)
	if err != nil {
		return err
	}
	if s.IsDir() {
		return fmt.Errorf("'%s' is a directory, not a file", path)
	}
	return nil
}

// LoadYAML decodes the YAML file at configPath into data.
func LoadYAML(configPath string, data interface{}) error {
	if err := ValidateConfigPath(configPath); err != nil {
		return err
	}

	file, err := os.Open(configPath)
	if err != nil {
		return err
	}
	defer file.Close()

	d := yaml.NewDecoder(file)
	if err := d.Decode(data); err != nil {
		return err
	}

	return nil
}

// LoadConfig reads the application configuration from configPath. A missing
// file is not an error: the defaults are used so the CLI works out of the box.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		applyDefaults(config)
		return config, nil
	}

	if err := LoadYAML(configPath, &config); err != nil {
		return nil, err
	}
	applyDefaults(config)

	return config, nil
}
