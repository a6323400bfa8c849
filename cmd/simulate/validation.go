package simulate

import (
	"fmt"
	"os"
)

// validateSimulateArgs validates the arguments provided to the simulate command.
func validateSimulateArgs(options *RunOptionsSimulate, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("exactly one workspace path must be specified")
	}
	if _, err := os.Stat(args[0]); os.IsNotExist(err) {
		return fmt.Errorf("the workspace path does not exist: %v", args[0])
	}

	if len(options.Rules) == 0 {
		return fmt.Errorf("the 'rules' flag must be specified")
	}

	if options.ConfigPath != "" {
		if _, err := os.Stat(options.ConfigPath); os.IsNotExist(err) {
			return fmt.Errorf("the linter config does not exist: %v", options.ConfigPath)
		}
	}

	return nil
}
