// Package planner computes collision-aware quadrotor trajectories through a
// trained NeRF's density field. A Trajectory holds a sequence of reduced
// states between two fixed endpoint states and refines them by gradient
// descent on a cost that trades off thrust, torque, and the integrated
// density of a body point cloud swept along the path. The package also ships
// an A* seeder over occupancy grids and a rigid-body simulator for replaying
// planned action sequences.
package planner
