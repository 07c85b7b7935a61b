package loom

import "fmt"

// Cursor iterates the rows of every archetype matching one compiled view,
// in archetype-then-row order (spec.md §4.3/§4.5). A Cursor is created by
// WorldHandle.View and is only valid for the duration of the system call
// that produced it.
type Cursor struct {
	archetypes []*archetype
	archIdx    int
	row        int
	view       *viewMeta
	def        *Definition
	logger     Logger
}

// Next advances the cursor to the next matching row, skipping over
// exhausted archetypes. It returns false once every archetype has been
// walked.
func (c *Cursor) Next() bool {
	for c.archIdx < len(c.archetypes) {
		c.row++
		if c.row < c.archetypes[c.archIdx].length() {
			return true
		}
		c.archIdx++
		c.row = -1
	}
	return false
}

// Walk calls fn once per matching row until the cursor is exhausted.
func (c *Cursor) Walk(fn func(*Cursor)) {
	for c.Next() {
		fn(c)
	}
}

// Entity returns the entity occupying the cursor's current row.
func (c *Cursor) Entity() EntityID {
	return c.archetypes[c.archIdx].entities[c.row]
}

// Len returns the total number of rows this cursor will walk across every
// matching archetype, for systems that want to preallocate.
func (c *Cursor) Len() int {
	n := 0
	for _, a := range c.archetypes {
		n += a.length()
	}
	return n
}

func (c *Cursor) archetype() *archetype { return c.archetypes[c.archIdx] }

// Get returns a mutable pointer to c's value on the cursor's current row. A
// required (non-optional) access in the owning view guarantees the
// component is always present; if it isn't, that's a programmer error
// (spec.md §7) and Get aborts the process through Abort rather than
// returning a value the caller could mistake for valid.
func (c Component[T]) Get(cur *Cursor) *T {
	ptr, ok := c.GetSafe(cur)
	if !ok {
		name := ""
		if cur.def != nil {
			name = cur.def.ComponentName(c.id)
		}
		if name == "" {
			name = fmt.Sprintf("#%d", c.id)
		}
		Abort(cur.logger, invariantf("loom: component %q not present on current archetype; view declared it as required", name))
	}
	return ptr
}

// GetSafe is Get without the abort, for components declared optional on the
// owning view.
func (c Component[T]) GetSafe(cur *Cursor) (*T, bool) {
	v, ok := cur.archetype().table.Get(uint32(c.id), cur.row)
	if !ok {
		return nil, false
	}
	return v.Addr().Interface().(*T), true
}

// GetFromEntity performs a random-access lookup of c on entity e, bypassing
// view iteration entirely (spec.md §4.5 "direct entity access").
func (c Component[T]) GetFromEntity(w *World, e EntityID) (*T, bool) {
	if !w.alloc.isAlive(e) {
		return nil, false
	}
	loc := w.locations[e.Index()]
	arch := w.archetypes[loc.archetype]
	v, ok := arch.table.Get(uint32(c.id), loc.row)
	if !ok {
		return nil, false
	}
	return v.Addr().Interface().(*T), true
}

// WorldHandle is the scoped handle a running system receives: read access
// to world metadata, view-checked iteration, and a worker-local command
// buffer for deferred mutation (spec.md §4.4/§4.6).
type WorldHandle struct {
	world    *World
	commands *CommandBuffer
	system   SystemID
	worker   int
}

// View returns a Cursor over every archetype currently matching viewID.
// viewID must have been declared by this handle's owning system at
// registration; otherwise View is a programmer error (spec.md §4.1/§6) and
// aborts the process through Abort, naming the offending system and view.
func (h *WorldHandle) View(viewID ViewID) *Cursor {
	if !h.world.def.SystemHasAccess(h.system, viewID) {
		sysName := h.world.def.SystemName(h.system)
		if sysName == "" {
			sysName = fmt.Sprintf("#%d", h.system)
		}
		viewName := h.world.def.ViewName(viewID)
		if viewName == "" {
			viewName = fmt.Sprintf("#%d", viewID)
		}
		Abort(h.world.logger, invariantf("loom: system %q accessed undeclared view %q", sysName, viewName))
	}
	meta := h.world.def.view(viewID)
	return &Cursor{
		archetypes: h.world.archetypesForView(viewID),
		archIdx:    0,
		row:        -1,
		view:       meta,
		def:        h.world.def,
		logger:     h.world.logger,
	}
}

// Commands returns this worker's deferred command buffer segment.
func (h *WorldHandle) Commands() *CommandBuffer { return h.commands }

// WorkerID returns the scheduler worker slot this system instance is
// running on, 0-indexed.
func (h *WorldHandle) WorkerID() int { return h.worker }

// World exposes read-only world metadata (frame index, exit state, entity
// liveness). It does not expose CreateEntity/DestroyEntity/AddComponent/
// RemoveComponent during a tick; those are locked and return
// LockedWorldError, use Commands() instead.
func (h *WorldHandle) World() *World { return h.world }

// Logger returns the world's logger.
func (h *WorldHandle) Logger() Logger { return h.world.logger }
