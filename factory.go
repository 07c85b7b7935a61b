package loom

// NewDefinition is a convenience wrapper around NewBuilder/Finalize for the
// common case where every registration is driven by a fixed list of
// modules (spec.md §4.8), mirroring the teacher's own top-level factory
// helpers that collapse a multi-step construction into one call.
func NewDefinition(modules ...ModuleFunc) (*Definition, error) {
	b := NewBuilder()
	for _, m := range modules {
		m(b)
	}
	return b.Finalize()
}

// NewSimulation builds a World and its Runner from def in one call, the
// shape most command-line entry points (see cmd/loomdemo) actually want.
func NewSimulation(def *Definition, config RunnerConfig, opts ...WorldOption) (*World, *Runner) {
	world := NewWorld(def, opts...)
	runner := NewRunner(world, config)
	return world, runner
}
