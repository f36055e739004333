package envinfo

import (
	"context"
	"os"
	"strings"

	"github.com/mz/nerfnavgo/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for the envinfo runner.
type Input struct {
	Prefix string `nng:"prefix"`
}

// Deps is an empty struct because this runner does not use any resources.
type Deps struct{}

// Output defines the data structure returned by the runner.
type Output struct {
	Values map[string]string `cty:"values"`
}

// OnRunEnvInfo is the handler for the 'envinfo' runner. It captures the
// process environment, optionally filtered by a variable-name prefix.
func OnRunEnvInfo(ctx context.Context, deps *Deps, input *Input) (*Output, error) {
	envMap := make(map[string]string)
	for _, e := range os.Environ() {
		pair := strings.SplitN(e, "=", 2)
		if len(pair) != 2 {
			continue
		}
		if input.Prefix != "" && !strings.HasPrefix(pair[0], input.Prefix) {
			continue
		}
		envMap[pair[0]] = pair[1]
	}

	return &Output{Values: envMap}, nil
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterRunner("OnRunEnvInfo", &registry.RegisteredRunner{
		NewInput: func() any { return new(Input) },
		NewDeps:  func() any { return new(Deps) },
		Fn:       OnRunEnvInfo,
	})
}
