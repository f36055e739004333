package integration_tests

import (
	"context"
	"reflect"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mz/nerfnavgo/internal/registry"
	"github.com/mz/nerfnavgo/internal/testutil"
)

// tallyHandle is the live resource instance shared between steps.
type tallyHandle struct {
	hits atomic.Int32
}

// tallyModule registers a counting asset and a runner that uses it, so the
// test can observe create/use/destroy ordering and sharing.
type tallyModule struct {
	created   atomic.Int32
	destroyed atomic.Int32
}

type tallyDeps struct {
	Counter *tallyHandle `nng:"counter"`
}

func (m *tallyModule) Register(r *registry.Registry) {
	r.RegisterAssetHandler("CreateTally", &registry.RegisteredAsset{
		NewInput: func() any { return new(struct{}) },
		CreateFn: func(ctx context.Context, input *struct{}) (*tallyHandle, error) {
			m.created.Add(1)
			return &tallyHandle{}, nil
		},
	})
	r.RegisterAssetHandler("DestroyTally", &registry.RegisteredAsset{
		DestroyFn: func(h *tallyHandle) error {
			m.destroyed.Add(1)
			return nil
		},
	})
	r.RegisterAssetInterface("tally", reflect.TypeOf((*tallyHandle)(nil)))

	r.RegisterRunner("OnRunTick", &registry.RegisteredRunner{
		NewDeps: func() any { return new(tallyDeps) },
		Fn: func(ctx context.Context, deps *tallyDeps, input *struct{}) (any, error) {
			deps.Counter.hits.Add(1)
			return nil, nil
		},
	})
}

const tallyManifestHCL = `
	asset "tally" {
	  lifecycle {
	    create  = "CreateTally"
	    destroy = "DestroyTally"
	  }
	}

	runner "tick" {
	  lifecycle { on_run = "OnRunTick" }
	  uses "counter" { asset_type = "tally" }
	}
`

// One resource instance is created, shared by every step that uses it, and
// destroyed exactly once after the run.
func TestMissionExecution_SharedResourceLifecycle(t *testing.T) {
	t.Parallel()

	module := &tallyModule{}
	files := map[string]string{
		"modules/tally/manifest.hcl": tallyManifestHCL,
		"mission/main.hcl": `
			resource "tally" "shared" {}

			step "tick" "a" {
				uses {
					counter = resource.tally.shared
				}
			}

			step "tick" "b" {
				uses {
					counter = resource.tally.shared
				}
			}
		`,
	}

	result := testutil.RunMission(t, files, module)

	require.NoError(t, result.Err)
	assert.Equal(t, int32(1), module.created.Load(), "resource should be created once")
	assert.Equal(t, int32(1), module.destroyed.Load(), "resource should be destroyed once")
	assert.Contains(t, result.LogOutput, "Destroying resource")
}
