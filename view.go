package loom

import "github.com/quarrystack/loom/internal/bitset"

// ComponentAccess declares how a view touches one component: which
// component, in which mode, and whether its presence is required or
// optional (spec.md §4.3). Forbidden components are listed separately, in
// AccessSpec.Forbid.
type ComponentAccess struct {
	Component ComponentID
	Mode      AccessMode
	Optional  bool
}

// AccessSpec is the unevaluated description of a view passed to
// Builder.RegisterView: a set of required/optional component accesses plus
// a set of components an archetype must NOT carry to match.
type AccessSpec struct {
	Access   []ComponentAccess
	Forbid   []ComponentID
}

// Required builds an AccessSpec requiring every given component for
// read-only iteration, the common case for a simple view.
func Required(ids ...ComponentID) AccessSpec {
	spec := AccessSpec{Access: make([]ComponentAccess, len(ids))}
	for i, id := range ids {
		spec.Access[i] = ComponentAccess{Component: id, Mode: AccessRead}
	}
	return spec
}

// viewMeta is the compiled form of an AccessSpec: bitmasks the matcher and
// scheduler use directly instead of re-walking the access list every frame.
type viewMeta struct {
	ID           ViewID
	Name         string
	requiredMask bitset.Mask
	forbiddenMask bitset.Mask
	readMask     bitset.Mask
	writeMask    bitset.Mask
	optional     map[ComponentID]bool
	order        []ComponentAccess // declaration order, as listed in AccessSpec.Access
}

func compileView(spec AccessSpec) (viewMeta, error) {
	var meta viewMeta
	meta.optional = make(map[ComponentID]bool)
	seen := make(map[ComponentID]bool)

	for _, a := range spec.Access {
		if seen[a.Component] {
			return viewMeta{}, definitionErrorf("loom: view declares component %d more than once", a.Component)
		}
		seen[a.Component] = true

		if a.Optional {
			meta.optional[a.Component] = true
		} else {
			meta.requiredMask.Mark(uint32(a.Component))
		}
		if a.Mode == AccessWrite {
			meta.writeMask.Mark(uint32(a.Component))
		} else {
			meta.readMask.Mark(uint32(a.Component))
		}
		meta.order = append(meta.order, a)
	}
	for _, id := range spec.Forbid {
		meta.forbiddenMask.Mark(uint32(id))
	}
	if !meta.requiredMask.ContainsNone(meta.forbiddenMask) {
		return viewMeta{}, definitionErrorf("loom: view requires and forbids the same component")
	}
	return meta, nil
}

// matches reports whether an archetype carrying mask satisfies this view:
// every required component present, none of the forbidden ones present.
func (v *viewMeta) matches(mask bitset.Mask) bool {
	return mask.ContainsAll(v.requiredMask) && mask.ContainsNone(v.forbiddenMask)
}

// upgradedWriteMask returns writeMask widened to include readMask, the
// treatment an exclusive system's declared views get when the graph builder
// derives conflict edges (spec.md §4.6: "an exclusive system's reads count
// as writes for conflict purposes").
func (v *viewMeta) upgradedWriteMask() bitset.Mask {
	return v.writeMask.Union(v.readMask)
}
