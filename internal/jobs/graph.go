// Package jobs implements the work-stealing task-graph executor spec.md §4.7
// calls the job scheduler: N worker goroutines, each owning a local deque,
// stealing from one another when idle, executing a DAG of dependency-counted
// tasks to completion. It has no notion of systems, views, or components —
// it only consumes an already-built Graph, exactly as spec.md requires
// ("the scheduler only consumes it").
//
// Grounded on the channel-based local-queue-plus-steal sketch in
// other_examples' sbl8-sublation runtime (WorkStealingScheduler) and the
// dependency-counted task lifecycle in DangerosoDavo-ecs' scheduler_impl.go.
package jobs

import "fmt"

// Task is one unit of scheduled work. It receives the id (0..NumWorkers-1)
// of the worker slot executing it, so callers can route thread-local state
// (e.g. a per-worker command-buffer segment) without a lock. It must not
// panic — a system that detects a fatal condition signals it through the
// world's teardown flag, observed by the caller after the tick, per
// spec.md §4.7/§7.
type Task func(workerID int)

// Node is one (task, its dependencies) pair in a Graph, spec.md §3's
// "Task graph node: (SystemId, dependencies: Vec<NodeIdx>)" generalized away
// from SystemId (the jobs package doesn't know what a system is).
type Node struct {
	Run       Task
	Deps      []int
	Exclusive bool
}

// Graph is an immutable task DAG, built once per runner configuration and
// submitted every frame.
type Graph struct {
	Nodes []Node
}

// Validate checks the graph is acyclic and every dependency index is
// in-range. Submitting a cyclic graph is a programmer error (spec.md §7);
// callers should abort rather than retry on this error.
func (g *Graph) Validate() error {
	n := len(g.Nodes)
	state := make([]int8, n) // 0=unvisited 1=visiting 2=done
	var visit func(i int) error
	visit = func(i int) error {
		switch state[i] {
		case 2:
			return nil
		case 1:
			return fmt.Errorf("jobs: cyclic graph at node %d", i)
		}
		state[i] = 1
		for _, d := range g.Nodes[i].Deps {
			if d < 0 || d >= n {
				return fmt.Errorf("jobs: node %d depends on out-of-range node %d", i, d)
			}
			if err := visit(d); err != nil {
				return err
			}
		}
		state[i] = 2
		return nil
	}
	for i := range g.Nodes {
		if err := visit(i); err != nil {
			return err
		}
	}
	return nil
}
