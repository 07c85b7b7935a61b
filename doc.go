/*
Package loom is an archetype-based Entity-Component-System (ECS) runtime and
parallel frame scheduler for games and simulations.

Loom groups entities with identical component sets into per-archetype tables
of column arrays, so iterating any view of the world is a linear walk across
tightly packed columns. Systems declare, up front, exactly which views they
touch and in which mode (read or write); from that declaration the runtime
builds a task graph once per definition and executes it across a work-stealing
worker pool every frame, running conflict-free systems in parallel and
serializing the rest without any locks on the hot path.

Core Concepts:

  - Definition: the frozen set of components, views and systems an
    application registers once at startup.
  - World: entity identity, component storage, and the per-frame command
    buffer that defers structural mutations until flush.
  - View: a declarative (required/optional/forbidden, read/write) access
    spec compiled into an archetype matcher.
  - Runner: builds the system graph from a Definition and drives one tick at
    a time across the job scheduler.

Basic Usage:

	builder := loom.NewBuilder()
	position := loom.RegisterComponent[Position](builder, "Position", nil, nil)
	velocity := loom.RegisterComponent[Velocity](builder, "Velocity", nil, nil)

	motion := builder.RegisterView("Motion", loom.AccessSpec{
		Access: []loom.ComponentAccess{
			{Component: position.ID(), Mode: loom.AccessWrite},
			{Component: velocity.ID(), Mode: loom.AccessRead},
		},
	})

	builder.RegisterSystem("Integrate", 0, 0, false, []loom.ViewID{motion},
		func(w *loom.WorldHandle) {
			cur := w.View(motion)
			for cur.Next() {
				pos := position.Get(cur)
				vel := velocity.Get(cur)
				pos.X += vel.X
				pos.Y += vel.Y
			}
		})

	def, _ := builder.Finalize()
	world := loom.NewWorld(def)
	runner := loom.NewRunner(world, loom.RunnerConfig{})
	runner.RunSync()

Loom is a standalone core: rendering, asset loading, input and audio are
external collaborators that observe and mutate the world through the same
handle a system gets, and are never imported by this module.
*/
package loom
