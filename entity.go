package loom

import (
	"math"
	"sync/atomic"
)

// entityAllocator hands out and recycles EntityIDs, tracking liveness with
// per-index generations, per spec.md §4.2. It is not thread-safe on its own:
// creation/destruction of *recycled* indices happens only through flush,
// which runs single-threaded. Brand-new indices (never before used) can be
// minted concurrently via reserveFresh, which is what the command buffer's
// entity_create uses mid-frame (spec.md §4.4/§5).
type entityAllocator struct {
	generations []uint32
	freeList    []uint32
	retired     map[uint32]bool
	nextFresh   uint32 // atomic
}

// create synchronously allocates an EntityID, preferring a recycled index.
// Must only be called single-threaded (outside a running tick).
func (a *entityAllocator) create() EntityID {
	var idx uint32
	if n := len(a.freeList); n > 0 {
		idx = a.freeList[n-1]
		a.freeList = a.freeList[:n-1]
	} else {
		idx = a.nextFresh
		a.generations = append(a.generations, 0)
		a.nextFresh++
	}
	return NewEntityID(idx, a.generations[idx])
}

// reserveFresh mints a never-before-used index using a lock-free atomic
// increment, safe to call from any worker goroutine mid-frame. The returned
// id carries generation 0; commitReserved must run (single-threaded, at
// flush) before it is looked up.
func (a *entityAllocator) reserveFresh() EntityID {
	idx := atomic.AddUint32(&a.nextFresh, 1) - 1
	return NewEntityID(idx, 0)
}

// commitReserved extends generations to cover idx, backfilling any
// intermediate gap left by concurrently reserved (but not yet committed)
// indices from other workers. Single-threaded, called at flush.
func (a *entityAllocator) commitReserved(idx uint32) {
	for uint32(len(a.generations)) <= idx {
		a.generations = append(a.generations, 0)
	}
}

// cancelReserved commits idx (as commitReserved does) and then immediately
// retires it, as if it had been created and destroyed within the same
// frame without ever becoming visible. Used by the command buffer's flush
// when a reserved id's create and destroy both land in the same frame: the
// index must never settle at generation 0, or a later commitReserved call
// padding past it for a higher, unrelated index would leave it looking
// alive again.
func (a *entityAllocator) cancelReserved(idx uint32) {
	a.commitReserved(idx)
	a.generations[idx]++
	if !a.retired[idx] {
		a.freeList = append(a.freeList, idx)
	}
}

// destroy retires id's index: increments its generation so stale copies of
// id compare unequal to whatever reuses the index, and returns it to the
// free list — unless the generation counter has wrapped all the way around,
// in which case the index is permanently retired rather than reused
// (spec.md §4.2: "treat a full-wrap as 'permanently retired'"). A stale id
// (one whose generation no longer matches) is a silent no-op.
func (a *entityAllocator) destroy(id EntityID) {
	idx := id.Index()
	if idx >= uint32(len(a.generations)) {
		return
	}
	if a.generations[idx] != id.Generation() {
		return
	}
	if a.generations[idx] == math.MaxUint32 {
		if a.retired == nil {
			a.retired = make(map[uint32]bool)
		}
		a.retired[idx] = true
		return
	}
	a.generations[idx]++
	if !a.retired[idx] {
		a.freeList = append(a.freeList, idx)
	}
}

// isAlive reports whether id's generation matches the current occupant of
// its index. A permanently retired index has no occupant.
func (a *entityAllocator) isAlive(id EntityID) bool {
	idx := id.Index()
	if idx >= uint32(len(a.generations)) {
		return false
	}
	if a.retired[idx] {
		return false
	}
	return a.generations[idx] == id.Generation()
}
