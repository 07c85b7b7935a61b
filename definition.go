package loom

import (
	"sort"

	"github.com/quarrystack/loom/internal/bitset"
)

// ComponentValue pairs a component id with an untyped value, the currency
// CreateEntity and the command buffer trade in once a Component[T] handle
// has been reduced to its id (spec.md §4.1/§4.4).
type ComponentValue struct {
	ID    ComponentID
	Value any
}

// SystemFunc is the body a registered system runs once per tick, given a
// handle scoped to the views it declared at registration (spec.md §4.6).
type SystemFunc func(w *WorldHandle)

// ModuleFunc installs one or more systems/views onto a Builder, the
// mechanism spec.md §4.8 calls out for composing definitions from reusable
// units without a central registration file.
type ModuleFunc func(b *Builder)

type systemMeta struct {
	ID        SystemID
	Name      string
	OrderKey  int
	Priority  int
	Exclusive bool
	Views     []ViewID
	Run       SystemFunc
}

type moduleMeta struct {
	ID   ModuleID
	Name string
}

// Definition is the finalized, immutable registry of every component, view,
// system and module a world is built from (spec.md §3 "Definition"). It is
// produced once by Builder.Finalize and then shared read-only across every
// World built from it.
type Definition struct {
	components []ComponentMeta
	views      []viewMeta
	systems    []systemMeta
	modules    []moduleMeta

	componentByName map[string]ComponentID
	viewByName      map[string]ViewID
	systemByName    map[string]SystemID
	moduleByName    map[string]ModuleID

	systemOrder []SystemID // logical run order computed at Finalize
}

// ComponentName returns the registered name for id, or "" if unknown.
func (d *Definition) ComponentName(id ComponentID) string {
	if id == 0 || int(id) > len(d.components) {
		return ""
	}
	return d.components[id-1].Name
}

// ViewName returns the registered name for id, or "" if unknown.
func (d *Definition) ViewName(id ViewID) string {
	if id == 0 || int(id) > len(d.views) {
		return ""
	}
	return d.views[id-1].Name
}

// SystemName returns the registered name for id, or "" if unknown.
func (d *Definition) SystemName(id SystemID) string {
	if id == 0 || int(id) > len(d.systems) {
		return ""
	}
	return d.systems[id-1].Name
}

// SystemHasAccess reports whether sys declared view at registration. Any
// access to an undeclared view aborts the process at run time (WorldHandle.View).
func (d *Definition) SystemHasAccess(sys SystemID, view ViewID) bool {
	if sys == 0 || int(sys) > len(d.systems) {
		return false
	}
	for _, v := range d.systems[sys-1].Views {
		if v == view {
			return true
		}
	}
	return false
}

// SystemViews returns the views sys declared at registration, in
// registration order.
func (d *Definition) SystemViews(sys SystemID) []ViewID {
	if sys == 0 || int(sys) > len(d.systems) {
		return nil
	}
	return append([]ViewID(nil), d.systems[sys-1].Views...)
}

func (d *Definition) view(id ViewID) *viewMeta {
	if id == 0 || int(id) > len(d.views) {
		return nil
	}
	return &d.views[id-1]
}

// Builder accumulates component/view/system/module registrations and
// produces a Definition via Finalize. It mirrors the teacher's staged
// "open for registration, then closed" factory pattern: once Finalize (or a
// prior registration) fails, the first error sticks and every subsequent
// call becomes a no-op, so callers can register everything and check the
// error once at the end.
type Builder struct {
	def      *Definition
	err      error
	finished bool
}

// NewBuilder returns an empty Builder ready for component/view/system
// registration.
func NewBuilder() *Builder {
	return &Builder{
		def: &Definition{
			componentByName: make(map[string]ComponentID),
			viewByName:      make(map[string]ViewID),
			systemByName:    make(map[string]SystemID),
			moduleByName:    make(map[string]ModuleID),
		},
	}
}

func (b *Builder) mustBeOpen() {
	if b.finished && b.err == nil {
		b.err = definitionErrorf("loom: builder already finalized")
	}
}

func (b *Builder) fail(err error) {
	if b.err == nil {
		b.err = err
	}
}

// RegisterModule runs fn against b immediately, a thin convenience so
// modules can be assembled and ordered by the caller (spec.md §4.8).
func (b *Builder) RegisterModule(name string, fn ModuleFunc) ModuleID {
	b.mustBeOpen()
	if _, exists := b.def.moduleByName[name]; exists {
		b.fail(definitionErrorf("loom: module %q already registered", name))
		return 0
	}
	id := ModuleID(len(b.def.modules) + 1)
	b.def.modules = append(b.def.modules, moduleMeta{ID: id, Name: name})
	b.def.moduleByName[name] = id
	fn(b)
	return id
}

// RegisterView compiles spec into a named, reusable view and returns its id.
// See view.go for AccessSpec and the compiled matcher.
func (b *Builder) RegisterView(name string, spec AccessSpec) ViewID {
	b.mustBeOpen()
	if b.err != nil {
		return 0
	}
	if _, exists := b.def.viewByName[name]; exists {
		b.fail(definitionErrorf("loom: view %q already registered", name))
		return 0
	}
	meta, err := compileView(spec)
	if err != nil {
		b.fail(err)
		return 0
	}
	id := ViewID(len(b.def.views) + 1)
	meta.ID = id
	meta.Name = name
	b.def.views = append(b.def.views, meta)
	b.def.viewByName[name] = id
	return id
}

// RegisterSystem registers a system named name, running fn once per tick in
// an order determined by orderKey then priority then registration order
// (spec.md §4.6). views lists every view the system will touch; reading
// through a view not listed here aborts the process at run time. exclusive marks
// the system (and every view it reads) as requiring full isolation from all
// concurrently running systems for the duration of its run (spec.md
// §4.6/§4.7).
func (b *Builder) RegisterSystem(name string, orderKey, priority int, exclusive bool, views []ViewID, fn SystemFunc) SystemID {
	b.mustBeOpen()
	if _, exists := b.def.systemByName[name]; exists {
		b.fail(definitionErrorf("loom: system %q already registered", name))
		return 0
	}
	for _, v := range views {
		if d := b.def.view(v); d == nil {
			b.fail(definitionErrorf("loom: system %q declares unknown view %d", name, v))
			return 0
		}
	}
	id := SystemID(len(b.def.systems) + 1)
	b.def.systems = append(b.def.systems, systemMeta{
		ID:        id,
		Name:      name,
		OrderKey:  orderKey,
		Priority:  priority,
		Exclusive: exclusive,
		Views:     append([]ViewID(nil), views...),
		Run:       fn,
	})
	b.def.systemByName[name] = id
	return id
}

// Finalize closes registration and returns the immutable Definition, or the
// first error recorded during registration.
func (b *Builder) Finalize() (*Definition, error) {
	if b.err != nil {
		return nil, b.err
	}
	b.finished = true

	order := make([]SystemID, len(b.def.systems))
	for i := range order {
		order[i] = SystemID(i + 1)
	}
	sort.SliceStable(order, func(i, j int) bool {
		a := b.def.systems[order[i]-1]
		c := b.def.systems[order[j]-1]
		if a.OrderKey != c.OrderKey {
			return a.OrderKey < c.OrderKey
		}
		if a.Priority != c.Priority {
			return a.Priority < c.Priority
		}
		return a.ID < c.ID
	})
	b.def.systemOrder = order

	return b.def, nil
}

// componentMask returns the union bitmask of ids.
func componentMask(ids []ComponentID) bitset.Mask {
	var m bitset.Mask
	for _, id := range ids {
		m.Mark(uint32(id))
	}
	return m
}
