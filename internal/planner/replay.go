package planner

import "fmt"

// ReplayPlan is the control sequence recovered from a saved pose file: the
// state the plan starts from, the per-step actions implied by the poses, and
// the planned positions to measure a replay against.
type ReplayPlan struct {
	Initial   State
	Actions   []Action
	Positions []Vec3
}

// PlanFromPoses inverts a pose sequence back into states and actions using
// the same finite-difference dynamics the planner derives them with.
func PlanFromPoses(poses []Pose, dt float64) (*ReplayPlan, error) {
	if len(poses) < 3 {
		return nil, fmt.Errorf("need at least 3 poses to recover a plan, got %d", len(poses))
	}
	if dt <= 0 {
		return nil, fmt.Errorf("time step must be positive, got %v", dt)
	}
	n := len(poses)

	pos := make([]Vec3, n)
	rot := make([]Mat3, n)
	for i, p := range poses {
		for r := 0; r < 3; r++ {
			pos[i][r] = p[r][3]
			for c := 0; c < 3; c++ {
				rot[i][r][c] = p[r][c]
			}
		}
	}

	vel := make([]Vec3, n)
	for i := 0; i < n-1; i++ {
		vel[i] = pos[i+1].Sub(pos[i]).Scale(1 / dt)
	}
	vel[n-1] = vel[n-2]

	accel := make([]Vec3, n)
	for i := 0; i < n-1; i++ {
		accel[i] = vel[i+1].Sub(vel[i]).Scale(1 / dt).Sub(gravity)
	}
	accel[n-1] = accel[n-2]

	omega := make([]Vec3, n)
	for i := 0; i < n-1; i++ {
		omega[i] = RotMatrixToVec(rot[i+1].Mul(rot[i].Transpose())).Scale(1 / dt)
	}
	omega[n-1] = omega[n-2]

	angAccel := make([]Vec3, n)
	for i := 0; i < n-1; i++ {
		angAccel[i] = omega[i+1].Sub(omega[i]).Scale(1 / dt)
	}
	angAccel[n-1] = angAccel[n-2]

	actions := make([]Action, n)
	for i := 0; i < n; i++ {
		actions[i] = Action{Thrust: mass * accel[i].Norm(), Torque: angAccel[i]}
	}

	return &ReplayPlan{
		Initial:   State{Pos: pos[0], Vel: vel[0], Rot: rot[0], Omega: omega[0]},
		Actions:   actions,
		Positions: pos,
	}, nil
}
