package integration_tests

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mz/nerfnavgo/internal/registry"
)

// shippedFile reads a file from the repository root, so tests run against
// the manifests and profiles that actually ship.
func shippedFile(t *testing.T, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("..", "..", "..", rel))
	require.NoError(t, err)
	return string(data)
}

// collectorModule registers a "collect" runner that records the arguments it
// receives, so tests can observe data flowing between steps.
type collectorModule struct {
	mu      sync.Mutex
	expname string
	values  map[string]string
}

type collectInput struct {
	Expname string            `nng:"expname"`
	Values  map[string]string `nng:"values"`
}

func (m *collectorModule) Register(r *registry.Registry) {
	r.RegisterRunner("OnRunCollect", &registry.RegisteredRunner{
		NewInput: func() any { return new(collectInput) },
		NewDeps:  func() any { return new(struct{}) },
		Fn: func(ctx context.Context, deps *struct{}, input *collectInput) (any, error) {
			m.mu.Lock()
			defer m.mu.Unlock()
			m.expname = input.Expname
			m.values = input.Values
			return nil, nil
		},
	})
}

func (m *collectorModule) captured() (string, map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.expname, m.values
}

const collectManifestHCL = `
	runner "collect" {
	  lifecycle { on_run = "OnRunCollect" }
	  input "expname" { type = string }
	  input "values" { type = map(string) }
	}
`
