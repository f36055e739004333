package integration_tests

import (
	"context"
	"sync"
	"time"

	"github.com/mz/nerfnavgo/internal/registry"
)

// executionRecord captures when a step's handler ran.
type executionRecord struct {
	Start time.Time
	End   time.Time
}

// sleeperModule registers a runner that sleeps for a fixed duration and
// records its execution window, so tests can assert on overlap and ordering.
type sleeperModule struct {
	mu      sync.Mutex
	records map[string]executionRecord
	sleep   time.Duration
}

type sleeperInput struct {
	ID string `nng:"id"`
}

func newSleeperModule(sleep time.Duration) *sleeperModule {
	return &sleeperModule{
		records: make(map[string]executionRecord),
		sleep:   sleep,
	}
}

func (m *sleeperModule) Register(r *registry.Registry) {
	r.RegisterRunner("OnRunSleeper", &registry.RegisteredRunner{
		NewInput: func() any { return new(sleeperInput) },
		NewDeps:  func() any { return new(struct{}) },
		Fn: func(ctx context.Context, deps *struct{}, input *sleeperInput) (any, error) {
			start := time.Now()
			time.Sleep(m.sleep)
			end := time.Now()

			m.mu.Lock()
			m.records[input.ID] = executionRecord{Start: start, End: end}
			m.mu.Unlock()
			return nil, nil
		},
	})
}

func (m *sleeperModule) record(id string) (executionRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	return rec, ok
}

// overlaps reports whether two execution windows intersect in time.
func overlaps(a, b executionRecord) bool {
	return !a.Start.After(b.End) && !b.Start.After(a.End)
}

const sleeperManifestHCL = `
	runner "sleeper" {
	  lifecycle { on_run = "OnRunSleeper" }
	  input "id" { type = string }
	}
`
