package shared

import (
	"net/rpc"

	"github.com/hashicorp/go-plugin"
)

// Linter is the contract every linter plugin implements: run the external
// analysis tool for the requested target and hand back the raw report buffer.
// The host never assumes anything about how the findings were computed.
type Linter interface {
	Lint(args LintRequest) (LintResponse, error)
}

// LintRequest represents a single lint invocation.
type LintRequest struct {
	WorkspaceRoot string   // Root of the source tree to analyze
	ConfigPath    string   // Optional path to the linter configuration, passed through opaquely
	Files         []string // Optional explicit file subset, workspace-relative
}

// LintResponse carries the raw, undecoded report produced by the tool.
type LintResponse struct {
	RawReport []byte
}

type LinterRPCClient struct{ client *rpc.Client }

func (g *LinterRPCClient) Lint(req LintRequest) (LintResponse, error) {
	var resp LintResponse

	err := g.client.Call("Plugin.Lint", req, &resp)
	if err != nil {
		return resp, err
	}

	return resp, nil
}

type LinterRPCServer struct {
	Impl Linter
}

func (s *LinterRPCServer) Lint(req LintRequest, resp *LintResponse) error {
	var err error
	*resp, err = s.Impl.Lint(req)
	return err
}

// LinterPlugin is the go-plugin wrapper dispensed to the host process.
type LinterPlugin struct {
	Impl Linter
}

func (p *LinterPlugin) Server(*plugin.MuxBroker) (interface{}, error) {
	return &LinterRPCServer{Impl: p.Impl}, nil
}

func (LinterPlugin) Client(b *plugin.MuxBroker, c *rpc.Client) (interface{}, error) {
	return &LinterRPCClient{client: c}, nil
}
