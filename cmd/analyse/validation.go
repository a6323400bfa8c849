package analyse

import (
	"fmt"
	"os"
)

// validateAnalyseArgs validates the arguments provided to the analyse command.
func validateAnalyseArgs(options *RunOptionsAnalyse, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("exactly one workspace path must be specified")
	}

	info, err := os.Stat(args[0])
	if os.IsNotExist(err) {
		return fmt.Errorf("the workspace path does not exist: %v", args[0])
	}
	if err == nil && !info.IsDir() {
		return fmt.Errorf("the workspace path %q is not a directory", args[0])
	}

	if options.ConfigPath != "" {
		if _, err := os.Stat(options.ConfigPath); os.IsNotExist(err) {
			return fmt.Errorf("the linter config does not exist: %v", options.ConfigPath)
		}
	}

	if options.Format != "" && options.Format != "json" && options.Format != "sarif" {
		return fmt.Errorf("unsupported report format %q, expected json or sarif", options.Format)
	}

	return nil
}
