package shared

import (
	"fmt"
	"os/exec"
	"path/filepath"

	"github.com/hashicorp/go-plugin"

	"github.com/scan-io-git/lint-audit/pkg/shared/config"
	"github.com/scan-io-git/lint-audit/pkg/shared/logger"
)

const PluginTypeLinter string = "linter"

var HandshakeConfig = plugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "LINTAUDIT",
	MagicCookieValue: "0a4d2f0f8b7e17c3a6a1d94be2f6c05d6f2f41aa",
}

var PluginMap = map[string]plugin.Plugin{
	PluginTypeLinter: &LinterPlugin{},
}

// WithPlugin starts the named plugin binary, dispenses the linter interface
// and runs f against it. The plugin process is killed when f returns.
func WithPlugin(cfg *config.Config, loggerName string, pluginName string, f func(interface{}) error) error {
	log := logger.NewLogger(cfg, loggerName)

	pluginPath := filepath.Join(config.GetPluginsHome(cfg), pluginName)
	client := plugin.NewClient(&plugin.ClientConfig{
		HandshakeConfig: HandshakeConfig,
		Plugins:         PluginMap,
		Cmd:             exec.Command(pluginPath),
		Logger:          log,
	})
	defer client.Kill()

	rpcClient, err := client.Client()
	if err != nil {
		return fmt.Errorf("failed to connect to plugin %q: %w", pluginName, err)
	}

	raw, err := rpcClient.Dispense(PluginTypeLinter)
	if err != nil {
		return fmt.Errorf("failed to dispense plugin %q: %w", pluginName, err)
	}

	return f(raw)
}

// Versions holds build-time version information for the core binary.
type Versions struct {
	Version       string `json:"version"`
	GolangVersion string `json:"golang_version"`
	BuildTime     string `json:"build_time"`
}
