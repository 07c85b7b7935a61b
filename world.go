package loom

import (
	"github.com/quarrystack/loom/internal/bitset"
	"github.com/quarrystack/loom/internal/column"
)

// entityLocation is where one live entity currently lives: which archetype,
// and which row within it. It is kept dense, indexed by EntityID.Index().
type entityLocation struct {
	archetype ArchetypeID
	row       int
}

// World owns every entity, archetype and component value for one running
// simulation built from a Definition (spec.md §3 "World"). A World is not
// safe for direct concurrent mutation; while a Runner tick is in flight the
// world is locked and all writes must go through a CommandBuffer
// (spec.md §4.4).
type World struct {
	def   *Definition
	alloc entityAllocator

	locations  []entityLocation
	archetypes []*archetype

	archetypeByMask map[bitset.Mask]ArchetypeID
	viewCache       map[ViewID][]*archetype

	logger Logger

	frameIndex    uint64
	exitRequested bool
	exitCode      int
	locked        bool
}

// WorldOption configures a World at construction time.
type WorldOption func(*World)

// WithLogger attaches logger to the world; systems and the runner log
// through it. Defaults to a silent no-op logger.
func WithLogger(logger Logger) WorldOption {
	return func(w *World) { w.logger = logger }
}

// NewWorld constructs an empty World from a finalized Definition.
func NewWorld(def *Definition, opts ...WorldOption) *World {
	w := &World{
		def:             def,
		archetypeByMask: make(map[bitset.Mask]ArchetypeID),
		logger:          nopLogger{},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Definition returns the Definition this world was built from.
func (w *World) Definition() *Definition { return w.def }

// FrameIndex returns the number of completed ticks, per spec.md's
// original_source-derived "world.frame_index" counter.
func (w *World) FrameIndex() uint64 { return w.frameIndex }

// SetFrameIndex overrides the frame counter, primarily for save/restore.
func (w *World) SetFrameIndex(n uint64) { w.frameIndex = n }

// RequestExit records that the simulation should stop after the current
// tick finishes flushing, mirroring the original engine's cooperative
// shutdown flag rather than an immediate os.Exit.
func (w *World) RequestExit(code int) {
	w.exitRequested = true
	w.exitCode = code
}

// ExitRequested reports whether RequestExit was called.
func (w *World) ExitRequested() bool { return w.exitRequested }

// ExitCode returns the code passed to RequestExit.
func (w *World) ExitCode() int { return w.exitCode }

// IsAlive reports whether id refers to a currently live entity.
func (w *World) IsAlive(id EntityID) bool { return w.alloc.isAlive(id) }

func (w *World) lock()   { w.locked = true }
func (w *World) unlock() { w.locked = false }

func (w *World) growLocations(idx uint32) {
	for uint32(len(w.locations)) <= idx {
		w.locations = append(w.locations, entityLocation{})
	}
}

// getOrCreateArchetype returns the archetype for exactly mask, creating it
// (and invalidating the view cache) if this is the first time it is seen.
func (w *World) getOrCreateArchetype(mask bitset.Mask) *archetype {
	if id, ok := w.archetypeByMask[mask]; ok {
		return w.archetypes[id]
	}
	id := ArchetypeID(len(w.archetypes))
	arch := newArchetype(id, w.def, mask)
	w.archetypes = append(w.archetypes, arch)
	w.archetypeByMask[mask] = id
	w.viewCache = nil
	return arch
}

// archetypesForView returns every archetype currently matching view,
// computed once per archetype-set change and cached.
func (w *World) archetypesForView(view ViewID) []*archetype {
	if w.viewCache == nil {
		w.viewCache = make(map[ViewID][]*archetype)
	}
	if cached, ok := w.viewCache[view]; ok {
		return cached
	}
	meta := w.def.view(view)
	if meta == nil {
		return nil
	}
	var matched []*archetype
	for _, arch := range w.archetypes {
		if meta.matches(arch.mask) {
			matched = append(matched, arch)
		}
	}
	w.viewCache[view] = matched
	return matched
}

// CreateEntity synchronously creates a new entity carrying values, outside
// of any running tick. Mid-tick creation goes through the command buffer
// (spec.md §4.4).
func (w *World) CreateEntity(values ...ComponentValue) (EntityID, error) {
	if w.locked {
		return 0, LockedWorldError{}
	}
	id := w.alloc.create()
	w.growLocations(id.Index())

	mask := valuesMask(values)
	arch := w.getOrCreateArchetype(mask)
	row := arch.appendEmpty(id)
	for _, v := range values {
		if err := arch.set(v.ID, row, v.Value); err != nil {
			return 0, err
		}
	}
	w.locations[id.Index()] = entityLocation{archetype: arch.id, row: row}
	return id, nil
}

// DestroyEntity synchronously destroys id, running destructors for every
// component it carries.
func (w *World) DestroyEntity(id EntityID) error {
	if w.locked {
		return LockedWorldError{}
	}
	if !w.alloc.isAlive(id) {
		return StaleEntityError{Entity: id}
	}
	loc := w.locations[id.Index()]
	arch := w.archetypes[loc.archetype]
	movedEntity, moved := arch.swapRemove(loc.row)
	if moved {
		w.locations[movedEntity.Index()] = loc
	}
	w.alloc.destroy(id)
	return nil
}

// AddComponent adds values to id, migrating it to a new archetype if any of
// the components are not already present. Values for components already
// present are overwritten in place (spec.md §4.1 "add").
func (w *World) AddComponent(id EntityID, values ...ComponentValue) error {
	if w.locked {
		return LockedWorldError{}
	}
	return w.applyMutation(id, values, nil)
}

// RemoveComponent removes ids from id's component set, running destructors
// for the dropped components and migrating it to a (possibly new)
// archetype (spec.md §4.1 "remove").
func (w *World) RemoveComponent(id EntityID, ids ...ComponentID) error {
	if w.locked {
		return LockedWorldError{}
	}
	return w.applyMutation(id, nil, ids)
}

// applyMutation is the shared core of AddComponent/RemoveComponent and the
// command buffer's per-entity flush step: it computes the resulting
// archetype mask for one combined add+remove and performs at most one
// migration, rather than one per component touched.
func (w *World) applyMutation(id EntityID, adds []ComponentValue, removes []ComponentID) error {
	if !w.alloc.isAlive(id) {
		return StaleEntityError{Entity: id}
	}
	loc := w.locations[id.Index()]
	src := w.archetypes[loc.archetype]

	newMask := src.mask
	for _, v := range adds {
		newMask.Mark(uint32(v.ID))
	}
	for _, c := range removes {
		newMask.Unmark(uint32(c))
	}

	if newMask == src.mask {
		for _, v := range adds {
			if err := src.set(v.ID, loc.row, v.Value); err != nil {
				return err
			}
		}
		return nil
	}

	overrides := make(map[uint32]any, len(adds))
	for _, v := range adds {
		overrides[uint32(v.ID)] = v.Value
	}
	dst := w.getOrCreateArchetype(newMask)
	return w.transfer(id, loc, src, dst, overrides)
}

// transfer moves id's row from src to dst, applying overrides for
// newly-added component values, and fixes up the location index for both id
// and whichever entity's row moved to fill the vacated slot in src.
func (w *World) transfer(id EntityID, loc entityLocation, src, dst *archetype, overrides map[uint32]any) error {
	newRow, movedKey, moved, err := column.TransferRow(src.table, loc.row, dst.table, overrides)
	if err != nil {
		return err
	}

	dst.entities = append(dst.entities, id)

	lastIdx := len(src.entities) - 1
	if moved {
		movedEntity := EntityID(movedKey)
		src.entities[loc.row] = movedEntity
		w.locations[movedEntity.Index()] = loc
	}
	src.entities = src.entities[:lastIdx]

	w.locations[id.Index()] = entityLocation{archetype: dst.id, row: newRow}
	return nil
}

func valuesMask(values []ComponentValue) bitset.Mask {
	var m bitset.Mask
	for _, v := range values {
		m.Mark(uint32(v.ID))
	}
	return m
}
