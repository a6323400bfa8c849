package simulate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSimulateArgs(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name    string
		options RunOptionsSimulate
		args    []string
		wantErr string
	}{
		{
			// valid: lintaudit simulate --rules force_cast /path/to/workspace
			name: "Valid rules and workspace path",
			options: RunOptionsSimulate{
				Rules: []string{"force_cast"},
			},
			args:    []string{tmpDir},
			wantErr: "",
		},
		{
			// fail: lintaudit simulate /path/to/workspace
			name:    "Missing rules flag",
			options: RunOptionsSimulate{},
			args:    []string{tmpDir},
			wantErr: "the 'rules' flag must be specified",
		},
		{
			// fail: lintaudit simulate --rules force_cast
			name: "Missing workspace path",
			options: RunOptionsSimulate{
				Rules: []string{"force_cast"},
			},
			args:    []string{},
			wantErr: "exactly one workspace path must be specified",
		},
		{
			// fail: lintaudit simulate --rules force_cast /invalid/path
			name: "Invalid workspace path",
			options: RunOptionsSimulate{
				Rules: []string{"force_cast"},
			},
			args:    []string{"/invalid/path/to/workspace"},
			wantErr: "the workspace path does not exist: /invalid/path/to/workspace",
		},
		{
			// fail: lintaudit simulate --rules force_cast --config /invalid/config.yml /path/to/workspace
			name: "Invalid config path",
			options: RunOptionsSimulate{
				Rules:      []string{"force_cast"},
				ConfigPath: "/invalid/config.yml",
			},
			args:    []string{tmpDir},
			wantErr: "the linter config does not exist: /invalid/config.yml",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateSimulateArgs(&tt.options, tt.args)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.EqualError(t, err, tt.wantErr)
			}
		})
	}
}
