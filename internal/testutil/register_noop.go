package testutil

import (
	"context"

	"github.com/mz/nerfnavgo/internal/registry"
)

// NoOpModule registers a single "NoOp" runner that takes no inputs, requires
// no dependencies, and does nothing. Useful for tests that should fail
// before execution begins but still need HCL that passes registry validation.
type NoOpModule struct{}

// Register implements the registry.Module interface.
func (m *NoOpModule) Register(r *registry.Registry) {
	r.RegisterRunner("NoOp", &registry.RegisteredRunner{
		NewInput: func() any { return new(struct{}) },
		NewDeps:  func() any { return new(struct{}) },
		Fn: func(ctx context.Context, deps *struct{}, input *struct{}) (any, error) {
			return nil, nil
		},
	})
}
