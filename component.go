package loom

import (
	"reflect"

	"github.com/quarrystack/loom/internal/column"
)

// ComponentMeta is the definition-time record for one registered component:
// its stable id, name, Go type, and optional destructor/combiner, per
// spec.md §3/§4.1. Size and alignment are part of the original spec's data
// model but are not reified here: Go's reflect.Type already
// carries size/alignment, and the archetype store never needs to compute
// byte offsets by hand the way the C original does.
type ComponentMeta struct {
	ID         ComponentID
	Name       string
	Type       reflect.Type
	Destructor func(any)
	Combiner   func(existing, incoming any) any
}

// Component is a typed handle to a registered component, returned by
// RegisterComponent. It is the mechanism "code-generated registration
// macros" in the original collapse to in Go (spec.md §9): an ordinary value
// produced once at build time and closed over by systems.
type Component[T any] struct {
	id ComponentID
}

// ID returns the component's stable id.
func (c Component[T]) ID() ComponentID { return c.id }

// Value pairs this component with v, for use with World.CreateEntity,
// CommandBuffer.AddComponent, and friends.
func (c Component[T]) Value(v T) ComponentValue {
	return ComponentValue{ID: c.id, Value: v}
}

// RegisterComponent registers a new component type on builder and returns a
// typed handle. destructor, if non-nil, runs once when a value of type T is
// dropped (removed, an owning entity destroyed, or evicted during
// migration). combiner, if non-nil, resolves a second add(C) issued for the
// same entity within one frame before the first is flushed (spec.md §4.1);
// with no combiner, the later add overwrites the earlier one at flush
// (spec.md §9's open question, resolved — see SPEC_FULL.md).
//
// RegisterComponent is a free function, not a Builder method, because Go
// methods cannot carry their own type parameters.
func RegisterComponent[T any](b *Builder, name string, destructor func(*T), combiner func(existing, incoming *T) *T) Component[T] {
	b.mustBeOpen()
	if _, exists := b.def.componentByName[name]; exists {
		b.fail(definitionErrorf("loom: component %q already registered", name))
		return Component[T]{}
	}

	id := ComponentID(len(b.def.components) + 1)
	meta := ComponentMeta{
		ID:   id,
		Name: name,
		Type: reflect.TypeOf(*new(T)),
	}
	if destructor != nil {
		meta.Destructor = func(v any) {
			val := v.(T)
			destructor(&val)
		}
	}
	if combiner != nil {
		meta.Combiner = func(existing, incoming any) any {
			e := existing.(T)
			i := incoming.(T)
			return *combiner(&e, &i)
		}
	}

	b.def.components = append(b.def.components, meta)
	b.def.componentByName[name] = id
	return Component[T]{id: id}
}

func componentSpecs(def *Definition, ids []uint32) []column.Spec {
	specs := make([]column.Spec, len(ids))
	for i, id := range ids {
		meta := def.components[id-1]
		specs[i] = column.Spec{ID: id, Type: meta.Type, Destructor: meta.Destructor}
	}
	return specs
}
