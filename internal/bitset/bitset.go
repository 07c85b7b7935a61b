// Package bitset implements the fixed-width bitmasks archetypes and views are
// canonicalized against. It plays the same role the teacher's
// github.com/TheBitDrifter/mask package plays for warehouse, but lives
// in-tree because the archetype store is the subsystem this module exists to
// teach, not a concern to delegate outward.
package bitset

import "math/bits"

// words is the number of uint64 limbs backing a Mask, giving room for 256
// distinct component ids per definition before a bigger mask would be needed.
const words = 4

// Mask is a fixed-size bitset identifying a set of component ids. It is a
// comparable value type so it can key a map, exactly as archetype lookup
// requires (spec: "backed by a hash map keyed on the bitset").
type Mask [words]uint64

// Mark sets bit.
func (m *Mask) Mark(bit uint32) {
	m[bit/64] |= 1 << (bit % 64)
}

// Unmark clears bit.
func (m *Mask) Unmark(bit uint32) {
	m[bit/64] &^= 1 << (bit % 64)
}

// Has reports whether bit is set.
func (m Mask) Has(bit uint32) bool {
	return m[bit/64]&(1<<(bit%64)) != 0
}

// IsEmpty reports whether no bits are set.
func (m Mask) IsEmpty() bool {
	return m == Mask{}
}

// Count returns the number of set bits.
func (m Mask) Count() int {
	n := 0
	for _, w := range m {
		n += bits.OnesCount64(w)
	}
	return n
}

// ContainsAll reports whether m has every bit set in other (other ⊆ m).
func (m Mask) ContainsAll(other Mask) bool {
	for i := range m {
		if m[i]&other[i] != other[i] {
			return false
		}
	}
	return true
}

// ContainsAny reports whether m and other share at least one bit.
func (m Mask) ContainsAny(other Mask) bool {
	for i := range m {
		if m[i]&other[i] != 0 {
			return true
		}
	}
	return false
}

// ContainsNone reports whether m and other share no bits (m ∩ other = ∅).
func (m Mask) ContainsNone(other Mask) bool {
	return !m.ContainsAny(other)
}

// Union returns the bitwise OR of m and other.
func (m Mask) Union(other Mask) Mask {
	var out Mask
	for i := range m {
		out[i] = m[i] | other[i]
	}
	return out
}

// Intersect returns the bitwise AND of m and other.
func (m Mask) Intersect(other Mask) Mask {
	var out Mask
	for i := range m {
		out[i] = m[i] & other[i]
	}
	return out
}

// Bits returns the set bit indices in ascending order.
func (m Mask) Bits() []uint32 {
	var out []uint32
	for i, w := range m {
		for w != 0 {
			b := bits.TrailingZeros64(w)
			out = append(out, uint32(i*64+b))
			w &^= 1 << b
		}
	}
	return out
}

// Maskable is implemented by anything that can report its component mask,
// mirroring the teacher's mask.Maskable type-assertion on table.Table.
type Maskable interface {
	Mask() Mask
}
