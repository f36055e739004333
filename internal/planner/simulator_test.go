package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulator_HoverIsStationary(t *testing.T) {
	initial := State{Pos: Vec3{0, 0, 1}, Rot: Identity3()}
	sim := NewSimulator(initial, 0.1)

	// Level attitude with thrust exactly canceling gravity.
	hover := Action{Thrust: -gravityZ * mass}
	for i := 0; i < 10; i++ {
		sim.Advance(hover)
	}

	final := sim.State()
	assertVecInDelta(t, initial.Pos, final.Pos, 1e-9)
	assertVecInDelta(t, Vec3{}, final.Vel, 1e-9)
	assert.Len(t, sim.History(), 11)
}

func TestSimulator_FreeFall(t *testing.T) {
	sim := NewSimulator(State{Pos: Vec3{0, 0, 10}, Rot: Identity3()}, 0.1)

	next := sim.Advance(Action{})

	// No thrust: velocity picks up gravity, position lags one step behind.
	assertVecInDelta(t, Vec3{0, 0, -1}, next.Vel, 1e-9)
	assertVecInDelta(t, Vec3{0, 0, 10}, next.Pos, 1e-9)

	next = sim.Advance(Action{})
	assertVecInDelta(t, Vec3{0, 0, 9.9}, next.Pos, 1e-9)
}

func TestSimulator_TorqueSpinsBody(t *testing.T) {
	sim := NewSimulator(State{Rot: Identity3()}, 0.1)

	next := sim.Advance(Action{Torque: Vec3{0, 0, 2}})
	require.Equal(t, Vec3{0, 0, 0.2}, next.Omega)

	// The accumulated body rate rotates the attitude on the next step.
	next = sim.Advance(Action{})
	assert.Greater(t, next.Rot[1][0], 0.0)
}