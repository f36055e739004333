package plan

import (
	"context"
	"fmt"
	"reflect"

	"github.com/mz/nerfnavgo/internal/ctxlog"
	"github.com/mz/nerfnavgo/internal/nerfconf"
	"github.com/mz/nerfnavgo/internal/planner"
	"github.com/mz/nerfnavgo/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct {
	registry *registry.Registry
}

// Input defines the arguments for the plan runner.
type Input struct {
	StartPos []float64 `nng:"start_pos"`
	EndPos   []float64 `nng:"end_pos"`
	StartVel []float64 `nng:"start_vel"`
	EndVel   []float64 `nng:"end_vel"`
	StartRot []float64 `nng:"start_rot"`
	EndRot   []float64 `nng:"end_rot"`

	Field              string  `nng:"field"`
	GridPath           string  `nng:"grid_path"`
	OccupancyThreshold float64 `nng:"occupancy_threshold"`
	AStarSeed          bool    `nng:"astar_seed"`

	ConfigPath string            `nng:"config_path"`
	Overrides  map[string]string `nng:"overrides"`

	PosesPath string `nng:"poses_path"`
}

// Deps is an empty struct because this runner does not use any resources.
type Deps struct{}

// Output defines the data structure returned by the runner.
type Output struct {
	FinalCost     float64 `cty:"final_cost"`
	CollisionCost float64 `cty:"collision_cost"`
	States        int     `cty:"states"`
	PosesPath     string  `cty:"poses_path"`
}

// Params is the typed view of the "planner" hyperparameter profile.
type Params struct {
	TFinal           float64 `nerf:"T_final"`
	Steps            int     `nerf:"steps"`
	LR               float64 `nerf:"lr"`
	EpochsInit       int     `nerf:"epochs_init"`
	EpochsUpdate     int     `nerf:"epochs_update"`
	FadeOutEpoch     int     `nerf:"fade_out_epoch"`
	FadeOutSharpness float64 `nerf:"fade_out_sharpness"`
}

func vecFromList(name string, list []float64) (planner.Vec3, error) {
	if len(list) != 3 {
		return planner.Vec3{}, fmt.Errorf("%s must have exactly 3 components, got %d", name, len(list))
	}
	return planner.Vec3{list[0], list[1], list[2]}, nil
}

// loadParams resolves the planner hyperparameters: an optional config file
// plus overrides, validated against the "planner" profile.
func (m *Module) loadParams(ctx context.Context, input *Input) (*Params, error) {
	profile := m.registry.Profile("planner")
	if profile == nil {
		return nil, fmt.Errorf("no profile named %q is loaded", "planner")
	}

	var rec *nerfconf.Record
	if input.ConfigPath != "" {
		var err error
		rec, err = nerfconf.ParseFile(input.ConfigPath)
		if err != nil {
			return nil, err
		}
	} else {
		rec = nerfconf.New("planner defaults")
	}

	if len(input.Overrides) > 0 {
		overlay := nerfconf.New(rec.Name)
		for key, raw := range input.Overrides {
			overlay.Set(key, nerfconf.ParseValue(raw))
		}
		rec = nerfconf.Merge(rec, overlay)
	}

	resolved, err := nerfconf.Resolve(ctx, rec, profile)
	if err != nil {
		return nil, err
	}

	params := &Params{}
	if err := nerfconf.DecodeRecord(ctx, resolved, profile, params); err != nil {
		return nil, err
	}
	return params, nil
}

func buildField(input *Input) (planner.DensityField, error) {
	switch input.Field {
	case "empty":
		return planner.EmptyField{}, nil
	case "cylinder":
		return planner.CylinderField{}, nil
	case "grid":
		if input.GridPath == "" {
			return nil, fmt.Errorf("field %q requires grid_path", input.Field)
		}
		return planner.LoadGridField(input.GridPath)
	default:
		return nil, fmt.Errorf("unknown density field %q (want empty, cylinder, or grid)", input.Field)
	}
}

// OnRunPlan optimizes a quadrotor trajectory between two poses through a
// density field and writes the planned pose sequence to disk.
func (m *Module) OnRunPlan(ctx context.Context, deps *Deps, input *Input) (*Output, error) {
	logger := ctxlog.FromContext(ctx).With("runner", "plan", "field", input.Field)
	logger.Debug("Handler started")

	params, err := m.loadParams(ctx, input)
	if err != nil {
		return nil, err
	}

	field, err := buildField(input)
	if err != nil {
		return nil, err
	}

	startPos, err := vecFromList("start_pos", input.StartPos)
	if err != nil {
		return nil, err
	}
	endPos, err := vecFromList("end_pos", input.EndPos)
	if err != nil {
		return nil, err
	}
	startVel, err := vecFromList("start_vel", input.StartVel)
	if err != nil {
		return nil, err
	}
	endVel, err := vecFromList("end_vel", input.EndVel)
	if err != nil {
		return nil, err
	}
	startRot, err := vecFromList("start_rot", input.StartRot)
	if err != nil {
		return nil, err
	}
	endRot, err := vecFromList("end_rot", input.EndRot)
	if err != nil {
		return nil, err
	}

	start := planner.State{Pos: startPos, Vel: startVel, Rot: planner.VecToRotMatrix(startRot)}
	end := planner.State{Pos: endPos, Vel: endVel, Rot: planner.VecToRotMatrix(endRot)}

	cfg := planner.Config{
		TFinal:           params.TFinal,
		Steps:            params.Steps,
		LR:               params.LR,
		EpochsInit:       params.EpochsInit,
		EpochsUpdate:     params.EpochsUpdate,
		FadeOutEpoch:     params.FadeOutEpoch,
		FadeOutSharpness: params.FadeOutSharpness,
	}
	traj, err := planner.NewTrajectory(cfg, field, start, end)
	if err != nil {
		return nil, err
	}

	if input.AStarSeed {
		grid, ok := field.(*planner.GridField)
		if !ok {
			logger.Warn("astar_seed requires a grid density field, skipping seeding")
		} else if err := seedFromGrid(traj, grid, startPos, endPos, input.OccupancyThreshold); err != nil {
			return nil, err
		}
	}

	logger.Info("Optimizing trajectory.", "steps", params.Steps, "epochs", params.EpochsInit)
	if err := traj.LearnInit(ctx); err != nil {
		return nil, err
	}

	if err := traj.SavePoses(input.PosesPath); err != nil {
		return nil, err
	}

	cost := traj.Cost()
	collision := traj.CollisionCost()
	logger.Info("Trajectory planned.", "finalCost", cost, "collisionCost", collision, "posesPath", input.PosesPath)
	return &Output{
		FinalCost:     cost,
		CollisionCost: collision,
		States:        len(traj.Positions()),
		PosesPath:     input.PosesPath,
	}, nil
}

// seedFromGrid replaces the straight-line seed with a collision-free A* path
// through the thresholded occupancy of the grid.
func seedFromGrid(traj *planner.Trajectory, grid *planner.GridField, start, end planner.Vec3, threshold float64) error {
	occ := grid.Occupancy(threshold)
	path, err := planner.AStar(occ, grid.Cell(start), grid.Cell(end))
	if err != nil {
		return fmt.Errorf("seeding trajectory: %w", err)
	}
	waypoints := make([]planner.Vec3, len(path))
	for i, c := range path {
		waypoints[i] = grid.CellCenter(c)
	}
	return traj.InitFromWaypoints(waypoints)
}

// Register registers the handler with the engine.
func (m *Module) Register(r *registry.Registry) {
	m.registry = r
	r.RegisterRunner("OnRunPlan", &registry.RegisteredRunner{
		NewInput: func() any { return new(Input) },
		NewDeps:  func() any { return new(Deps) },
		Fn:       m.OnRunPlan,
	})
	r.RegisterProfileStruct("planner", reflect.TypeOf(Params{}))
}
