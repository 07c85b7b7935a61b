package loom

import (
	"github.com/quarrystack/loom/internal/bitset"
	"github.com/quarrystack/loom/internal/column"
)

// archetype is one distinct component-set bucket: a columnar table of rows
// plus the set of entity ids occupying those rows, kept in lockstep
// row-for-row (spec.md §4.1 "Archetype"). Archetypes are created lazily the
// first time a component-set combination is needed and never merged or
// deleted afterward.
type archetype struct {
	id    ArchetypeID
	mask  bitset.Mask
	table *column.Table

	entities []EntityID // parallel to table rows
}

func newArchetype(id ArchetypeID, def *Definition, mask bitset.Mask) *archetype {
	ids := mask.Bits()
	specs := componentSpecs(def, ids)
	return &archetype{
		id:    id,
		mask:  mask,
		table: column.New(specs),
	}
}

func (a *archetype) length() int { return a.table.Length() }

func (a *archetype) contains(id ComponentID) bool { return a.table.Contains(uint32(id)) }

// appendEmpty appends a new, zero-valued row for entity and returns its row
// index. Callers fill required component values afterward via Set.
func (a *archetype) appendEmpty(entity EntityID) int {
	row := a.table.AppendRow(uint64(entity))
	a.entities = append(a.entities, entity)
	return row
}

func (a *archetype) set(id ComponentID, row int, value any) error {
	return a.table.Set(uint32(id), row, value)
}

func (a *archetype) get(id ComponentID, row int) (any, bool) {
	v, ok := a.table.Get(uint32(id), row)
	if !ok {
		return nil, false
	}
	return v.Interface(), true
}

// swapRemove removes row, moving the last row into its place if row was not
// already last. It returns the entity that used to occupy the row that
// moved (so the world's location index can be updated), and whether a move
// happened at all.
func (a *archetype) swapRemove(row int) (movedEntity EntityID, moved bool) {
	lastIdx := len(a.entities) - 1
	movedEntity = a.entities[lastIdx]
	_, moved = a.table.SwapRemove(row)
	if moved {
		a.entities[row] = movedEntity
	}
	a.entities = a.entities[:lastIdx]
	return movedEntity, moved
}
