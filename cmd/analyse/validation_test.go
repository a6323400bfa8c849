package analyse

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateAnalyseArgs(t *testing.T) {
	tmpDir := t.TempDir()
	tmpConfig := filepath.Join(tmpDir, ".swiftlint.yml")
	err := os.WriteFile(tmpConfig, []byte("disabled_rules: []\n"), 0644)
	assert.NoError(t, err)
	tmpFile := filepath.Join(tmpDir, "not-a-dir")
	err = os.WriteFile(tmpFile, []byte("x"), 0644)
	assert.NoError(t, err)

	tests := []struct {
		name    string
		options RunOptionsAnalyse
		args    []string
		wantErr string
	}{
		{
			// valid: lintaudit analyse /path/to/workspace
			name:    "Valid workspace path",
			options: RunOptionsAnalyse{},
			args:    []string{tmpDir},
			wantErr: "",
		},
		{
			// valid: lintaudit analyse --config .swiftlint.yml --format sarif /path/to/workspace
			name: "Valid config and format",
			options: RunOptionsAnalyse{
				ConfigPath: tmpConfig,
				Format:     "sarif",
			},
			args:    []string{tmpDir},
			wantErr: "",
		},
		{
			// fail: lintaudit analyse
			name:    "Missing workspace path",
			options: RunOptionsAnalyse{},
			args:    []string{},
			wantErr: "exactly one workspace path must be specified",
		},
		{
			// fail: lintaudit analyse /invalid/path
			name:    "Invalid workspace path",
			options: RunOptionsAnalyse{},
			args:    []string{"/invalid/path/to/workspace"},
			wantErr: "the workspace path does not exist: /invalid/path/to/workspace",
		},
		{
			// fail: lintaudit analyse /path/to/file
			name:    "Workspace path is a file",
			options: RunOptionsAnalyse{},
			args:    []string{tmpFile},
			wantErr: "the workspace path \"" + tmpFile + "\" is not a directory",
		},
		{
			// fail: lintaudit analyse --config /invalid/config.yml /path/to/workspace
			name: "Invalid config path",
			options: RunOptionsAnalyse{
				ConfigPath: "/invalid/config.yml",
			},
			args:    []string{tmpDir},
			wantErr: "the linter config does not exist: /invalid/config.yml",
		},
		{
			// fail: lintaudit analyse --format xml /path/to/workspace
			name: "Unsupported format",
			options: RunOptionsAnalyse{
				Format: "xml",
			},
			args:    []string{tmpDir},
			wantErr: "unsupported report format \"xml\", expected json or sarif",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateAnalyseArgs(&tt.options, tt.args)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.EqualError(t, err, tt.wantErr)
			}
		})
	}
}
