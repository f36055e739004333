package planner

// Simulator propagates the quadrotor's rigid-body dynamics under planned
// actions, standing in for a real vehicle in the receding-horizon loop. It
// keeps the full state history so a run can be inspected after the fact.
type Simulator struct {
	dt      float64
	history []State
}

// NewSimulator starts a simulation at the given state.
func NewSimulator(initial State, dt float64) *Simulator {
	return &Simulator{dt: dt, history: []State{initial}}
}

// State returns the current vehicle state.
func (s *Simulator) State() State {
	return s.history[len(s.history)-1]
}

// History returns every state visited so far, the initial state first.
func (s *Simulator) History() []State {
	return s.history
}

// Advance applies one control for a single time step using explicit Euler
// integration. Thrust acts along the body z axis; the inertia tensor is the
// identity, so torque integrates directly into the body rate.
func (s *Simulator) Advance(a Action) State {
	cur := s.State()
	accel := cur.Rot.MulVec(Vec3{0, 0, 1}).Scale(a.Thrust / mass).Add(gravity)

	next := State{
		Pos:   cur.Pos.Add(cur.Vel.Scale(s.dt)),
		Vel:   cur.Vel.Add(accel.Scale(s.dt)),
		Rot:   NextRotation(cur.Rot, cur.Omega, s.dt),
		Omega: cur.Omega.Add(a.Torque.Scale(s.dt)),
	}
	s.history = append(s.history, next)
	return next
}
