package report

import (
	"context"
	"fmt"
	"sort"

	"github.com/mz/nerfnavgo/internal/ctxlog"
	"github.com/mz/nerfnavgo/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for the report runner.
type Input struct {
	Values map[string]string `nng:"values"`
	Title  string            `nng:"title"`
}

// Deps is an empty struct because this runner does not use any resources.
type Deps struct{}

// OnRunReport prints a configuration map as sorted `key = value` lines.
func OnRunReport(ctx context.Context, deps *Deps, input *Input) (any, error) {
	ctxlog.FromContext(ctx).Info("Printing report", "entries", len(input.Values))

	if input.Title != "" {
		fmt.Printf("# %s\n", input.Title)
	}
	if input.Values == nil {
		fmt.Println("      (null)")
		return nil, nil
	}

	// Sort keys for consistent output
	keys := make([]string, 0, len(input.Values))
	for k := range input.Values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		fmt.Printf("%s = %s\n", k, input.Values[k])
	}
	return nil, nil
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterRunner("OnRunReport", &registry.RegisteredRunner{
		NewInput: func() any { return new(Input) },
		NewDeps:  func() any { return new(Deps) },
		Fn:       OnRunReport,
	})
}
