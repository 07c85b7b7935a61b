package loom

import (
	"time"

	"github.com/quarrystack/loom/internal/jobs"
)

// Runner drives one World through repeated ticks, scheduling its systems
// across a work-stealing pool (or single-threaded, for FlagSingleThreaded)
// and flushing the resulting command buffers between ticks (spec.md §4.7).
type Runner struct {
	world     *World
	def       *Definition
	config    RunnerConfig
	scheduler *jobs.Scheduler
	buffers   []*CommandBuffer
	graph     *jobs.Graph
	dumped    bool
}

// NewRunner builds a Runner for world, deriving the system dependency graph
// once from world's Definition.
func NewRunner(world *World, config RunnerConfig) *Runner {
	if config.Logger != nil {
		world.logger = config.Logger
	}

	workers := int(config.WorkerCount)
	sched := jobs.New(workers)
	if workers <= 0 {
		workers = sched.NumWorkers()
	}

	buffers := make([]*CommandBuffer, workers)
	for i := range buffers {
		buffers[i] = newCommandBuffer(i, &world.alloc)
	}

	r := &Runner{
		world:     world,
		def:       world.def,
		config:    config,
		scheduler: sched,
		buffers:   buffers,
	}
	r.graph = buildGraph(world.def, world, buffers)
	return r
}

// RunSync executes exactly one tick: locks the world, runs every system to
// completion (respecting the dependency graph and exclusive serialization),
// unlocks the world, and flushes every buffered command in deterministic
// order. It returns once the tick (including flush) is fully applied.
//
// A cyclic system dependency graph is a malformed registration, not a
// recoverable runtime condition (spec.md §7), so Validate failing here
// aborts the process through Abort rather than returning an error a caller
// could choose to ignore.
func (r *Runner) RunSync() error {
	if err := r.graph.Validate(); err != nil {
		Abort(r.world.logger, invariantf("loom: system graph failed validation: %v", err))
	}
	if r.config.Flags.has(FlagDumpGraph) && !r.dumped {
		r.dumped = true
		r.world.logger.Info("loom: system graph", "nodes", len(r.graph.Nodes))
		for i, node := range r.graph.Nodes {
			r.world.logger.Info("loom: system graph node",
				"node", i, "system", r.def.SystemName(r.def.systemOrder[i]),
				"deps", node.Deps, "exclusive", node.Exclusive)
		}
	}

	start := time.Now()
	r.world.lock()
	if r.config.Flags.has(FlagSingleThreaded) {
		jobs.RunSingleThreaded(r.graph)
	} else {
		handle := r.scheduler.Submit(r.graph)
		r.scheduler.WaitHelp(handle)
	}
	r.world.unlock()

	cmdCount := 0
	for _, b := range r.buffers {
		cmdCount += len(b.commands)
	}
	r.world.flush(r.buffers)
	r.world.frameIndex++

	if r.config.Flags.has(FlagRecordStats) {
		r.config.Metrics.observeTick(start, r.world, cmdCount)
	}
	return nil
}

// Destroy releases resources held by the Runner. Currently a no-op
// placeholder: the scheduler's worker goroutines are spawned per-tick (see
// Scheduler.WaitHelp) rather than pooled for the Runner's lifetime, so there
// is nothing persistent to tear down yet.
func (r *Runner) Destroy() {}

// World returns the world this Runner drives.
func (r *Runner) World() *World { return r.world }
