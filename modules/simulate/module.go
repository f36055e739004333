package simulate

import (
	"context"
	"math/rand"

	"github.com/mz/nerfnavgo/internal/ctxlog"
	"github.com/mz/nerfnavgo/internal/planner"
	"github.com/mz/nerfnavgo/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Input defines the arguments for the simulate runner.
type Input struct {
	PosesPath string  `nng:"poses_path"`
	Dt        float64 `nng:"dt"`
	NoiseStd  float64 `nng:"noise_std"`
	Seed      int64   `nng:"seed"`
}

// Deps is an empty struct because this runner does not use any resources.
type Deps struct{}

// Output defines the data structure returned by the runner.
type Output struct {
	FinalError    float64 `cty:"final_error"`
	MaxDivergence float64 `cty:"max_divergence"`
	Steps         int     `cty:"steps"`
}

// OnRunSimulate replays the action sequence implied by a saved pose file
// through the rigid-body simulator and measures how far the simulated
// vehicle drifts from the plan.
func OnRunSimulate(ctx context.Context, deps *Deps, input *Input) (*Output, error) {
	logger := ctxlog.FromContext(ctx).With("runner", "simulate", "posesPath", input.PosesPath)
	logger.Debug("Handler started")

	poses, err := planner.LoadPoses(input.PosesPath)
	if err != nil {
		return nil, err
	}
	plan, err := planner.PlanFromPoses(poses, input.Dt)
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(input.Seed))
	noisy := func(a planner.Action) planner.Action {
		if input.NoiseStd <= 0 {
			return a
		}
		a.Thrust += rng.NormFloat64() * input.NoiseStd
		for i := range a.Torque {
			a.Torque[i] += rng.NormFloat64() * input.NoiseStd
		}
		return a
	}

	sim := planner.NewSimulator(plan.Initial, input.Dt)
	maxDivergence := 0.0
	for i := 0; i < len(plan.Actions)-1; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		state := sim.Advance(noisy(plan.Actions[i]))
		if d := state.Pos.Sub(plan.Positions[i+1]).Norm(); d > maxDivergence {
			maxDivergence = d
		}
	}

	finalError := sim.State().Pos.Sub(plan.Positions[len(plan.Positions)-1]).Norm()
	logger.Info("Replay finished.", "steps", len(plan.Actions)-1, "finalError", finalError, "maxDivergence", maxDivergence)

	return &Output{
		FinalError:    finalError,
		MaxDivergence: maxDivergence,
		Steps:         len(plan.Actions) - 1,
	}, nil
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	r.RegisterRunner("OnRunSimulate", &registry.RegisteredRunner{
		NewInput: func() any { return new(Input) },
		NewDeps:  func() any { return new(Deps) },
		Fn:       OnRunSimulate,
	})
}
