package dag

import (
	"sync"
	"sync/atomic"

	"github.com/mz/nerfnavgo/internal/config"
)

// NodeType distinguishes between different kinds of nodes in the graph.
type NodeType int

const (
	// StepNode represents a node that executes a task.
	StepNode NodeType = iota
	// ResourceNode represents a node that manages a stateful resource.
	ResourceNode
)

// State represents the execution state of a node in the graph.
type State int32

const (
	// Pending indicates the node is waiting for its dependencies to complete.
	Pending State = iota
	// Running indicates the node is currently being executed by a worker.
	Running
	// Done indicates the node has completed execution successfully.
	Done
	// Failed indicates the node has failed execution or was skipped.
	Failed
)

// Node is a single vertex in the execution graph, representing one unit of
// work (executing a step) or a stateful entity (a resource).
type Node struct {
	// ID is the unique, machine-readable identifier for the node.
	// Example: "step.plan.stonehenge_route"
	ID string
	// Name is the human-readable instance name from the configuration.
	Name string
	// Type distinguishes between nodes that represent steps and resources.
	Type NodeType

	// StepConfig holds the configuration for a step node. It is nil for resources.
	StepConfig *config.Step
	// ResourceConfig holds the configuration for a resource node. It is nil for steps.
	ResourceConfig *config.Resource

	// Deps holds the set of nodes that this node depends on (predecessors).
	Deps map[string]*Node
	// Dependents holds the set of nodes that depend on this node (successors).
	Dependents map[string]*Node

	// Error stores any error that occurred during the node's execution.
	Error error
	// Output stores the result of the node's execution for use by downstream nodes.
	Output any

	// depCount is an atomic counter for unmet dependencies, used by the scheduler.
	depCount atomic.Int32
	// descendantCount is an atomic counter for a resource's step dependents,
	// used for efficient resource cleanup.
	descendantCount atomic.Int32
	// state is the node's current execution state, managed atomically.
	state atomic.Int32
	// destroyOnce ensures a node's cleanup/destruction logic is run exactly once.
	destroyOnce sync.Once
	// skipOnce ensures a node is marked as skipped and processed exactly once.
	skipOnce sync.Once
}

// SetInitialCounters derives the scheduling counters from the linked topology.
// It must be called after all linking passes are complete.
func (n *Node) SetInitialCounters() {
	n.depCount.Store(int32(len(n.Deps)))

	if n.Type == ResourceNode {
		stepDependents := int32(0)
		for _, dependent := range n.Dependents {
			if dependent.Type == StepNode {
				stepDependents++
			}
		}
		n.descendantCount.Store(stepDependents)
	}
}

// DepCount atomically returns the current number of unmet dependencies.
func (n *Node) DepCount() int32 {
	return n.depCount.Load()
}

// DecrementDepCount atomically decrements the dependency counter and returns the new value.
func (n *Node) DecrementDepCount() int32 {
	return n.depCount.Add(-1)
}

// DecrementDescendantCount atomically decrements the resource descendant counter.
func (n *Node) DecrementDescendantCount() int32 {
	return n.descendantCount.Add(-1)
}

// SetState atomically sets the node's execution state.
func (n *Node) SetState(s State) {
	n.state.Store(int32(s))
}

// GetState atomically retrieves the node's execution state.
func (n *Node) GetState() State {
	return State(n.state.Load())
}

// Destroy executes the given cleanup function exactly once, making it safe to
// call from both the efficient-cleanup path and the final cleanup stack.
func (n *Node) Destroy(f func()) {
	n.destroyOnce.Do(f)
}

// Skip marks a node as failed and decrements its WaitGroup counter. It uses a
// sync.Once to guarantee this happens only once, returning true if it was the
// first time this node was skipped.
func (n *Node) Skip(err error, wg *sync.WaitGroup) bool {
	var wasSkipped bool
	n.skipOnce.Do(func() {
		n.SetState(Failed)
		n.Error = err
		wg.Done()
		wasSkipped = true
	})
	return wasSkipped
}
