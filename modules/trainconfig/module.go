package trainconfig

import (
	"context"
	"fmt"
	"reflect"

	"github.com/zclconf/go-cty/cty"

	"github.com/mz/nerfnavgo/internal/ctxlog"
	"github.com/mz/nerfnavgo/internal/nerfconf"
	"github.com/mz/nerfnavgo/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct {
	registry *registry.Registry
}

// Input defines the arguments for the trainconfig runner.
type Input struct {
	Path      string            `nng:"path"`
	Profile   string            `nng:"profile"`
	Overrides map[string]string `nng:"overrides"`
}

// Deps is an empty struct because this runner does not use any resources.
type Deps struct{}

// Output defines the data structure returned by the runner.
type Output struct {
	ExpName string            `cty:"expname"`
	Values  map[string]string `cty:"values"`
}

// OnRunTrainConfig parses a flat-text trainer configuration file, applies
// inline overrides, and resolves the result against a hyperparameter profile.
func (m *Module) OnRunTrainConfig(ctx context.Context, deps *Deps, input *Input) (*Output, error) {
	logger := ctxlog.FromContext(ctx).With("runner", "trainconfig", "path", input.Path, "profile", input.Profile)
	logger.Debug("Handler started")

	profile := m.registry.Profile(input.Profile)
	if profile == nil {
		return nil, fmt.Errorf("no profile named %q is loaded", input.Profile)
	}

	rec, err := nerfconf.ParseFile(input.Path)
	if err != nil {
		return nil, err
	}

	if len(input.Overrides) > 0 {
		overlay := nerfconf.New(rec.Name)
		for key, raw := range input.Overrides {
			overlay.Set(key, nerfconf.ParseValue(raw))
		}
		rec = nerfconf.Merge(rec, overlay)
		logger.Debug("Applied overrides.", "count", len(input.Overrides))
	}

	resolved, err := nerfconf.Resolve(ctx, rec, profile)
	if err != nil {
		return nil, err
	}

	expname := ""
	if val, ok := resolved.Get("expname"); ok && val.Type() == cty.String {
		expname = val.AsString()
	}

	logger.Info("Resolved training configuration.", "expname", expname, "keys", resolved.Len())
	return &Output{ExpName: expname, Values: resolved.ToValueMap()}, nil
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	m.registry = r
	r.RegisterRunner("OnRunTrainConfig", &registry.RegisteredRunner{
		NewInput: func() any { return new(Input) },
		NewDeps:  func() any { return new(Deps) },
		Fn:       m.OnRunTrainConfig,
	})
	r.RegisterProfileStruct("nerf", reflect.TypeOf(nerfconf.TrainConfig{}))
}
