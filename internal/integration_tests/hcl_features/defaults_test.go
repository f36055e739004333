package integration_tests

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mz/nerfnavgo/internal/registry"
	"github.com/mz/nerfnavgo/internal/testutil"
)

type greeterInput struct {
	Name     string `nng:"name"`
	Greeting string `nng:"greeting"`
}

// greeterModule records the input it was called with, so tests can check
// how manifest defaults and arguments combine.
type greeterModule struct {
	mu   sync.Mutex
	last *greeterInput
}

func (m *greeterModule) Register(r *registry.Registry) {
	r.RegisterRunner("OnRunGreeter", &registry.RegisteredRunner{
		NewInput: func() any { return new(greeterInput) },
		NewDeps:  func() any { return new(struct{}) },
		Fn: func(ctx context.Context, deps *struct{}, input *greeterInput) (any, error) {
			m.mu.Lock()
			m.last = input
			m.mu.Unlock()
			return nil, nil
		},
	})
}

func (m *greeterModule) lastInput() *greeterInput {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}

const greeterManifestHCL = `
	runner "greeter" {
	  lifecycle { on_run = "OnRunGreeter" }
	  input "name" { type = string }
	  input "greeting" {
	    type    = string
	    default = "hello"
	  }
	}
`

// An omitted optional argument takes its manifest default.
func TestHclFeatures_OptionalArgumentDefault(t *testing.T) {
	t.Parallel()

	module := &greeterModule{}
	files := map[string]string{
		"modules/greeter/manifest.hcl": greeterManifestHCL,
		"mission/main.hcl": `
			step "greeter" "plain" {
				arguments {
					name = "world"
				}
			}
		`,
	}

	result := testutil.RunMission(t, files, module)
	require.NoError(t, result.Err)

	input := module.lastInput()
	require.NotNil(t, input)
	assert.Equal(t, "world", input.Name)
	assert.Equal(t, "hello", input.Greeting, "omitted argument should take the manifest default")
}

// A provided argument overrides the manifest default.
func TestHclFeatures_ArgumentOverridesDefault(t *testing.T) {
	t.Parallel()

	module := &greeterModule{}
	files := map[string]string{
		"modules/greeter/manifest.hcl": greeterManifestHCL,
		"mission/main.hcl": `
			step "greeter" "loud" {
				arguments {
					name     = "world"
					greeting = "HELLO"
				}
			}
		`,
	}

	result := testutil.RunMission(t, files, module)
	require.NoError(t, result.Err)

	input := module.lastInput()
	require.NotNil(t, input)
	assert.Equal(t, "HELLO", input.Greeting)
}
