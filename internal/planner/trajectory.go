package planner

import (
	"context"
	"fmt"
	"math"

	"github.com/mz/nerfnavgo/internal/ctxlog"
)

const (
	mass       = 1.0
	gravityZ   = -10.0
	velEps     = 1e-5
	thrustW    = 1000.0
	torqueW    = 0.01
	collisionW = 1e6
)

var gravity = Vec3{0, 0, gravityZ}

// State is the full rigid-body state of the quadrotor.
type State struct {
	Pos   Vec3
	Vel   Vec3
	Rot   Mat3
	Omega Vec3
}

// Action is a single control: scalar thrust along the body z axis plus a
// body torque.
type Action struct {
	Thrust float64
	Torque Vec3
}

// Config holds the trajectory optimizer's hyperparameters.
type Config struct {
	TFinal           float64
	Steps            int
	LR               float64
	EpochsInit       int
	EpochsUpdate     int
	FadeOutEpoch     int
	FadeOutSharpness float64
}

// DefaultConfig mirrors the stock planner settings.
func DefaultConfig() Config {
	return Config{
		TFinal:           2,
		Steps:            20,
		LR:               0.01,
		EpochsInit:       2500,
		EpochsUpdate:     200,
		FadeOutEpoch:     500,
		FadeOutSharpness: 10,
	}
}

// Trajectory refines a sequence of reduced states (position plus yaw)
// between two fixed endpoint states. The interior states and the first two
// thrust magnitudes are the free parameters; everything else (velocities,
// attitudes, body rates, actions) is recovered from them by differential
// flatness in calcEverything.
type Trajectory struct {
	cfg   Config
	field DensityField

	start State
	end   State

	// states holds the free interior waypoints: x, y, z, yaw.
	states       [][4]float64
	initialAccel [2]float64

	body  []Vec3
	epoch int

	// Adam moments over the flattened parameter vector.
	adamM []float64
	adamV []float64
	adamT int
}

// reducedYaw extracts the heading of a rotation: the angle of the rotated
// body x axis in the world xy plane.
func reducedYaw(r Mat3) float64 {
	x := r.MulVec(Vec3{1, 0, 0})
	return math.Atan2(x[1], x[0])
}

// NewTrajectory seeds the interior states on the straight line between the
// endpoint reduced states, with hovering thrust on the first two steps.
func NewTrajectory(cfg Config, field DensityField, start, end State) (*Trajectory, error) {
	if cfg.Steps < 5 {
		return nil, fmt.Errorf("trajectory needs at least 5 steps, got %d", cfg.Steps)
	}
	if cfg.TFinal <= 0 {
		return nil, fmt.Errorf("trajectory duration must be positive, got %v", cfg.TFinal)
	}
	t := &Trajectory{
		cfg:          cfg,
		field:        field,
		start:        start,
		end:          end,
		initialAccel: [2]float64{-gravityZ, -gravityZ},
		body:         robotBody(),
	}
	t.states = make([][4]float64, cfg.Steps-2)
	startYaw := reducedYaw(start.Rot)
	endYaw := reducedYaw(end.Rot)
	for i := range t.states {
		f := float64(i+1) / float64(cfg.Steps-1)
		p := start.Pos.Add(end.Pos.Sub(start.Pos).Scale(f))
		t.states[i] = [4]float64{p[0], p[1], p[2], startYaw + f*(endYaw-startYaw)}
	}
	t.resetOptimizer()
	return t, nil
}

// InitFromWaypoints replaces the straight-line seed with a coarse path,
// typically from AStar, linearly resampled to the interior state count.
func (t *Trajectory) InitFromWaypoints(points []Vec3) error {
	if len(points) < 2 {
		return fmt.Errorf("need at least 2 waypoints, got %d", len(points))
	}
	n := len(t.states)
	for i := range t.states {
		f := float64(i+1) / float64(n+1) * float64(len(points)-1)
		lo := int(f)
		if lo >= len(points)-1 {
			lo = len(points) - 2
		}
		frac := f - float64(lo)
		p := points[lo].Add(points[lo+1].Sub(points[lo]).Scale(frac))
		t.states[i] = [4]float64{p[0], p[1], p[2], t.states[i][3]}
	}
	t.resetOptimizer()
	return nil
}

func robotBody() []Vec3 {
	body := make([]Vec3, 0, 10*10*5)
	for i := 0; i < 10; i++ {
		x := -0.05 + 0.1*float64(i)/9
		for j := 0; j < 10; j++ {
			y := -0.05 + 0.1*float64(j)/9
			for k := 0; k < 5; k++ {
				z := -0.02 + 0.04*float64(k)/4
				body = append(body, Vec3{x, y, z})
			}
		}
	}
	return body
}

func (t *Trajectory) dt() float64 {
	return t.cfg.TFinal / float64(t.cfg.Steps)
}

// flat holds every derived quantity of the current parameters. All slices
// share the same length: steps+2.
type flat struct {
	pos      []Vec3
	vel      []Vec3
	accel    []Vec3
	rot      []Mat3
	omega    []Vec3
	angAccel []Vec3
	actions  []Action
}

// calcEverything recovers the full state and action sequence from the
// reduced parameterization. The first two and last two entries are pinned by
// the endpoint states and the two seed thrusts so that position, velocity,
// and attitude are all continuous at the boundary.
func (t *Trajectory) calcEverything() flat {
	dt := t.dt()
	startPos, startVel, startR, startOmega := t.start.Pos, t.start.Vel, t.start.Rot, t.start.Omega
	endPos, endVel, endR, endOmega := t.end.Pos, t.end.Vel, t.end.Rot, t.end.Omega

	nextPos := startPos.Add(startVel.Scale(dt))
	lastPos := endPos.Sub(endVel.Scale(dt))
	nextR := NextRotation(startR, startOmega, dt)

	startAccel := startR.MulVec(Vec3{0, 0, 1}).Scale(t.initialAccel[0]).Add(gravity)
	nextAccel := nextR.MulVec(Vec3{0, 0, 1}).Scale(t.initialAccel[1]).Add(gravity)

	nextVel := startVel.Add(startAccel.Scale(dt))
	afterNextPos := nextPos.Add(nextVel.Scale(dt))
	afterNextVel := nextVel.Add(nextAccel.Scale(dt))
	after2NextPos := afterNextPos.Add(afterNextVel.Scale(dt))

	pos := make([]Vec3, 0, t.cfg.Steps+2)
	pos = append(pos, startPos, nextPos, afterNextPos, after2NextPos)
	for _, s := range t.states[2:] {
		pos = append(pos, Vec3{s[0], s[1], s[2]})
	}
	pos = append(pos, lastPos, endPos)
	n := len(pos)

	vel := make([]Vec3, n)
	for i := 0; i < n-1; i++ {
		vel[i] = pos[i+1].Sub(pos[i]).Scale(1 / dt)
	}
	vel[n-1] = endVel

	accel := make([]Vec3, n)
	for i := 0; i < n-1; i++ {
		accel[i] = vel[i+1].Sub(vel[i]).Scale(1 / dt).Sub(gravity)
	}
	accel[n-1] = accel[n-2]

	// Interior attitudes: body z along the required acceleration, yaw fixed
	// by the free yaw angle of each interior state.
	rot := make([]Mat3, 0, n)
	rot = append(rot, startR, nextR)
	for i := 2; i <= n-3; i++ {
		zAxis := accel[i].Normalize()
		yaw := t.states[i-2][3]
		heading := Vec3{math.Sin(yaw), -math.Cos(yaw), 0}
		xAxis := zAxis.Cross(heading).Normalize()
		yAxis := zAxis.Cross(xAxis)
		rot = append(rot, ColumnStack(xAxis, yAxis, zAxis))
	}
	lastR := NextRotation(endR, endOmega, -dt)
	rot = append(rot, lastR, endR)

	omega := make([]Vec3, n)
	for i := 0; i < n-1; i++ {
		omega[i] = RotMatrixToVec(rot[i+1].Mul(rot[i].Transpose())).Scale(1 / dt)
	}
	omega[n-1] = endOmega

	angAccel := make([]Vec3, n)
	for i := 0; i < n-1; i++ {
		angAccel[i] = omega[i+1].Sub(omega[i]).Scale(1 / dt)
	}
	angAccel[n-1] = angAccel[n-2]

	actions := make([]Action, n)
	for i := 0; i < n; i++ {
		// J is the identity, so torque equals angular acceleration.
		actions[i] = Action{Thrust: mass * accel[i].Norm(), Torque: angAccel[i]}
	}

	return flat{pos: pos, vel: vel, accel: accel, rot: rot, omega: omega, angAccel: angAccel, actions: actions}
}

// Cost evaluates the current parameters: quadratic thrust effort, quartic
// torque effort, and the integrated squared density of the body point cloud
// swept along the path, scaled by per-step travel distance. Early in
// training the collision term near the start of the horizon is faded out so
// the endpoints can pull the path taut before obstacles push back.
func (t *Trajectory) Cost() float64 {
	return t.costAtEpoch(t.epoch)
}

func (t *Trajectory) costAtEpoch(epoch int) float64 {
	f := t.calcEverything()
	n := len(f.pos)
	total := 0.0
	for i := 0; i < n; i++ {
		fz := f.actions[i].Thrust
		torque := f.actions[i].Torque.Norm()

		distSq := velEps * 3
		for _, v := range f.vel[i] {
			distSq += v * v
		}
		distance := math.Sqrt(distSq)

		densitySq := 0.0
		for _, p := range t.body {
			world := f.rot[i].MulVec(p).Add(f.pos[i])
			d := t.field.Density(world)
			densitySq += d * d
		}
		collision := densitySq / float64(len(t.body)) * distance

		if t.cfg.FadeOutEpoch > 0 && epoch < t.cfg.FadeOutEpoch {
			tt := float64(i) / float64(n-1)
			position := float64(epoch) / float64(t.cfg.FadeOutEpoch)
			collision *= sigmoid(t.cfg.FadeOutSharpness * (position - tt))
		}

		total += thrustW*fz*fz + torqueW*math.Pow(torque, 4) + collisionW*collision
	}
	return total / float64(n)
}

// CollisionCost reports only the weighted collision term, without the
// fade-out mask, so callers can judge how much of the total cost is
// obstacle exposure.
func (t *Trajectory) CollisionCost() float64 {
	f := t.calcEverything()
	n := len(f.pos)
	total := 0.0
	for i := 0; i < n; i++ {
		distSq := velEps * 3
		for _, v := range f.vel[i] {
			distSq += v * v
		}
		distance := math.Sqrt(distSq)

		densitySq := 0.0
		for _, p := range t.body {
			world := f.rot[i].MulVec(p).Add(f.pos[i])
			d := t.field.Density(world)
			densitySq += d * d
		}
		total += collisionW * densitySq / float64(len(t.body)) * distance
	}
	return total / float64(n)
}

func (t *Trajectory) paramCount() int {
	return 2 + 4*len(t.states)
}

func (t *Trajectory) getParam(i int) float64 {
	if i < 2 {
		return t.initialAccel[i]
	}
	i -= 2
	return t.states[i/4][i%4]
}

func (t *Trajectory) setParam(i int, v float64) {
	if i < 2 {
		t.initialAccel[i] = v
		return
	}
	i -= 2
	t.states[i/4][i%4] = v
}

func (t *Trajectory) resetOptimizer() {
	t.adamM = make([]float64, t.paramCount())
	t.adamV = make([]float64, t.paramCount())
	t.adamT = 0
}

// step performs one Adam update using central-difference gradients.
func (t *Trajectory) step() float64 {
	const (
		h     = 1e-4
		beta1 = 0.9
		beta2 = 0.999
		eps   = 1e-8
	)
	n := t.paramCount()
	grad := make([]float64, n)
	for i := 0; i < n; i++ {
		orig := t.getParam(i)
		t.setParam(i, orig+h)
		up := t.costAtEpoch(t.epoch)
		t.setParam(i, orig-h)
		down := t.costAtEpoch(t.epoch)
		t.setParam(i, orig)
		grad[i] = (up - down) / (2 * h)
	}

	t.adamT++
	mHat := 1 - math.Pow(beta1, float64(t.adamT))
	vHat := 1 - math.Pow(beta2, float64(t.adamT))
	for i := 0; i < n; i++ {
		t.adamM[i] = beta1*t.adamM[i] + (1-beta1)*grad[i]
		t.adamV[i] = beta2*t.adamV[i] + (1-beta2)*grad[i]*grad[i]
		update := t.cfg.LR * (t.adamM[i] / mHat) / (math.Sqrt(t.adamV[i]/vHat) + eps)
		t.setParam(i, t.getParam(i)-update)
	}
	return t.costAtEpoch(t.epoch)
}

func (t *Trajectory) learn(ctx context.Context, epochs int) error {
	log := ctxlog.FromContext(ctx)
	for i := 0; i < epochs; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		loss := t.step()
		if i%100 == 0 || i == epochs-1 {
			log.Debug("Trajectory optimization progress", "epoch", t.epoch, "loss", loss)
		}
		t.epoch++
	}
	return nil
}

// LearnInit runs the full initial optimization, including the collision
// fade-out schedule.
func (t *Trajectory) LearnInit(ctx context.Context) error {
	t.epoch = 0
	return t.learn(ctx, t.cfg.EpochsInit)
}

// LearnUpdate refines the trajectory after the horizon has shifted. The
// epoch counter restarts, so the collision fade-out schedule re-engages for
// the new horizon.
func (t *Trajectory) LearnUpdate(ctx context.Context) error {
	t.epoch = 0
	return t.learn(ctx, t.cfg.EpochsUpdate)
}

// UpdateState shifts the receding horizon: the measured state becomes the
// new start, the first interior waypoint is consumed, and the seed thrusts
// are re-derived from the previously planned actions.
func (t *Trajectory) UpdateState(measured State) error {
	if len(t.states) <= 2 {
		return fmt.Errorf("horizon exhausted: %d interior states left", len(t.states))
	}
	f := t.calcEverything()
	t.start = measured
	t.states = t.states[1:]
	t.initialAccel = [2]float64{f.actions[1].Thrust, f.actions[2].Thrust}
	t.resetOptimizer()
	return nil
}

// Positions returns the planned position sequence, endpoints included.
func (t *Trajectory) Positions() []Vec3 {
	return t.calcEverything().pos
}

// Actions returns the planned control sequence.
func (t *Trajectory) Actions() []Action {
	return t.calcEverything().actions
}

// NextAction returns the control to execute for the current step.
func (t *Trajectory) NextAction() Action {
	return t.calcEverything().actions[0]
}
