package integration_tests

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/mz/nerfnavgo/internal/registry"
)

// failerModule registers a "failer" runner whose handler always errors,
// optionally after a delay so other root steps get picked up first.
type failerModule struct {
	delay time.Duration
}

func (m *failerModule) Register(r *registry.Registry) {
	r.RegisterRunner("OnRunFailer", &registry.RegisteredRunner{
		NewDeps: func() any { return new(struct{}) },
		Fn: func(ctx context.Context, deps *struct{}, input *struct{}) (any, error) {
			if m.delay > 0 {
				time.Sleep(m.delay)
			}
			return nil, errors.New("handler exploded on purpose")
		},
	})
}

// spyModule registers a "spy" runner that records whether it ever ran.
type spyModule struct {
	mu  sync.Mutex
	ran bool
}

func (m *spyModule) Register(r *registry.Registry) {
	r.RegisterRunner("OnRunSpy", &registry.RegisteredRunner{
		NewDeps: func() any { return new(struct{}) },
		Fn: func(ctx context.Context, deps *struct{}, input *struct{}) (any, error) {
			m.mu.Lock()
			m.ran = true
			m.mu.Unlock()
			return nil, nil
		},
	})
}

func (m *spyModule) didRun() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ran
}

const failerManifestHCL = `
	runner "failer" {
	  lifecycle { on_run = "OnRunFailer" }
	}
`

const spyManifestHCL = `
	runner "spy" {
	  lifecycle { on_run = "OnRunSpy" }
	}
`
