package integration_tests

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mz/nerfnavgo/internal/registry"
	"github.com/mz/nerfnavgo/internal/testutil"
)

type typedInput struct {
	Count float64 `nng:"count"`
}

func typedModule() *testutil.SimpleModule {
	return &testutil.SimpleModule{
		RunnerName: "OnRunTyped",
		Runner: &registry.RegisteredRunner{
			NewInput: func() any { return new(typedInput) },
			NewDeps:  func() any { return new(struct{}) },
			Fn: func(ctx context.Context, deps *struct{}, input *typedInput) (any, error) {
				return nil, nil
			},
		},
	}
}

// A manifest type that disagrees with the Go struct field fails at startup.
func TestTypeSystem_StartupMismatchRejected(t *testing.T) {
	t.Parallel()

	files := map[string]string{
		"modules/typed/manifest.hcl": `
			runner "typed" {
			  lifecycle { on_run = "OnRunTyped" }
			  input "count" { type = string }
			}
		`,
		"mission/main.hcl": `
			step "typed" "only" {
				arguments {
					count = "5"
				}
			}
		`,
	}

	result := testutil.RunMission(t, files, typedModule())

	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "registry validation failed")
	assert.Contains(t, result.Err.Error(), "type mismatch")
}

// An argument value that cannot convert to the declared type fails the step.
func TestTypeSystem_RuntimeConversionFailure(t *testing.T) {
	t.Parallel()

	files := map[string]string{
		"modules/typed/manifest.hcl": `
			runner "typed" {
			  lifecycle { on_run = "OnRunTyped" }
			  input "count" { type = number }
			}
		`,
		"mission/main.hcl": `
			step "typed" "bad" {
				arguments {
					count = "not-a-number"
				}
			}
		`,
	}

	result := testutil.RunMission(t, files, typedModule())

	require.Error(t, result.Err)
	assert.Contains(t, result.Err.Error(), "step.typed.bad")
	assert.Contains(t, result.Err.Error(), "cannot convert")
}

// A number literal converts cleanly into a string argument where HCL
// permits it.
func TestTypeSystem_PermissiveStringConversion(t *testing.T) {
	t.Parallel()

	stringModule := &testutil.SimpleModule{
		RunnerName: "OnRunLabel",
		Runner: &registry.RegisteredRunner{
			NewInput: func() any {
				return new(struct {
					Label string `nng:"label"`
				})
			},
			NewDeps: func() any { return new(struct{}) },
			Fn: func(ctx context.Context, deps *struct{}, input *struct {
				Label string `nng:"label"`
			}) (any, error) {
				return nil, nil
			},
		},
	}

	files := map[string]string{
		"modules/label/manifest.hcl": `
			runner "label" {
			  lifecycle { on_run = "OnRunLabel" }
			  input "label" { type = string }
			}
		`,
		"mission/main.hcl": `
			step "label" "numeric" {
				arguments {
					label = 42
				}
			}
		`,
	}

	result := testutil.RunMission(t, files, stringModule)

	require.NoError(t, result.Err)
}
