package loom

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFlushAppliesDestroysBeforeMutationsBeforeCreates(t *testing.T) {
	w, pos, vel := newTestWorld(t)
	toDestroy, _ := w.CreateEntity(pos.Value(testPosition{X: 1}))
	toMutate, _ := w.CreateEntity(pos.Value(testPosition{X: 2}))

	buf := newCommandBuffer(0, &w.alloc)
	buf.DestroyEntity(toDestroy)
	buf.AddComponent(toMutate, vel.Value(testVelocity{DX: 3}))
	created := buf.CreateEntity(pos.Value(testPosition{X: 9}))

	w.flush([]*CommandBuffer{buf})

	require.False(t, w.IsAlive(toDestroy))

	gotVel, ok := vel.GetFromEntity(w, toMutate)
	require.True(t, ok)
	require.Equal(t, testVelocity{DX: 3}, *gotVel)

	require.True(t, w.IsAlive(created))
	gotPos, ok := pos.GetFromEntity(w, created)
	require.True(t, ok)
	require.Equal(t, testPosition{X: 9}, *gotPos)
}

func TestFlushCreateThenDestroySameFrameNeverVisible(t *testing.T) {
	w, pos, _ := newTestWorld(t)
	buf := newCommandBuffer(0, &w.alloc)
	ephemeral := buf.CreateEntity(pos.Value(testPosition{X: 1}))
	buf.DestroyEntity(ephemeral)
	survivor := buf.CreateEntity(pos.Value(testPosition{X: 2}))

	w.flush([]*CommandBuffer{buf})

	require.False(t, w.IsAlive(ephemeral), "create+destroy within one frame must never become visible")
	_, ok := pos.GetFromEntity(w, ephemeral)
	require.False(t, ok)

	require.True(t, w.IsAlive(survivor))
	gotPos, ok := pos.GetFromEntity(w, survivor)
	require.True(t, ok)
	require.Equal(t, testPosition{X: 2}, *gotPos)

	total := 0
	for _, a := range w.archetypes {
		total += a.length()
	}
	require.Equal(t, 1, total, "the cancelled entity must never occupy a row")
}

func TestFlushCreateThenDestroyFrameDoesNotResurrectOnLaterCommit(t *testing.T) {
	w, pos, _ := newTestWorld(t)
	buf := newCommandBuffer(0, &w.alloc)
	ephemeral := buf.CreateEntity(pos.Value(testPosition{X: 1}))
	buf.DestroyEntity(ephemeral)
	// A later create in the same frame reserves a higher index; committing
	// it must not pad ephemeral's generation slot back to 0.
	later := buf.CreateEntity(pos.Value(testPosition{X: 2}))

	w.flush([]*CommandBuffer{buf})
	require.False(t, w.IsAlive(ephemeral))
	require.True(t, w.IsAlive(later))

	// A fresh entity reusing ephemeral's recycled index must carry a
	// distinct generation, and must not alias any existing row.
	recycled, err := w.CreateEntity(pos.Value(testPosition{X: 3}))
	require.NoError(t, err)
	require.Equal(t, ephemeral.Index(), recycled.Index())
	require.NotEqual(t, ephemeral.Generation(), recycled.Generation())

	got, ok := pos.GetFromEntity(w, recycled)
	require.True(t, ok)
	require.Equal(t, testPosition{X: 3}, *got)
}

func TestFlushCombinesDuplicateAddsWithCombiner(t *testing.T) {
	b := NewBuilder()
	vel := RegisterComponent[testVelocity](b, "Velocity", nil, func(existing, incoming *testVelocity) *testVelocity {
		return &testVelocity{DX: existing.DX + incoming.DX}
	})
	def, err := b.Finalize()
	require.NoError(t, err)
	w := NewWorld(def)

	e, _ := w.CreateEntity()
	buf := newCommandBuffer(0, &w.alloc)
	buf.AddComponent(e, vel.Value(testVelocity{DX: 1}))
	buf.AddComponent(e, vel.Value(testVelocity{DX: 2}))
	w.flush([]*CommandBuffer{buf})

	got, ok := vel.GetFromEntity(w, e)
	require.True(t, ok)
	require.Equal(t, testVelocity{DX: 3}, *got)
}

func TestFlushLastWriteWinsWithoutCombiner(t *testing.T) {
	w, pos, _ := newTestWorld(t)
	e, _ := w.CreateEntity()
	buf := newCommandBuffer(0, &w.alloc)
	buf.AddComponent(e, pos.Value(testPosition{X: 1}))
	buf.AddComponent(e, pos.Value(testPosition{X: 2}))
	w.flush([]*CommandBuffer{buf})

	got, _ := pos.GetFromEntity(w, e)
	require.Equal(t, testPosition{X: 2}, *got)
}

func TestFlushRemoveAfterAddCancelsOut(t *testing.T) {
	w, pos, vel := newTestWorld(t)
	e, _ := w.CreateEntity(pos.Value(testPosition{X: 1}))
	buf := newCommandBuffer(0, &w.alloc)
	buf.AddComponent(e, vel.Value(testVelocity{DX: 1}))
	buf.RemoveComponent(e, vel.ID())
	w.flush([]*CommandBuffer{buf})

	_, ok := vel.GetFromEntity(w, e)
	require.False(t, ok)
}

func TestFlushMergesMultipleWorkersInOrder(t *testing.T) {
	w, pos, _ := newTestWorld(t)
	e, _ := w.CreateEntity(pos.Value(testPosition{X: 0}))

	bufA := newCommandBuffer(0, &w.alloc)
	bufB := newCommandBuffer(1, &w.alloc)
	bufA.AddComponent(e, pos.Value(testPosition{X: 1}))
	bufB.AddComponent(e, pos.Value(testPosition{X: 2}))

	// Worker 1's buffer is passed first in the slice, but merge order is
	// always (worker index, submission order), so worker 0's add is applied
	// before worker 1's regardless of slice order, and worker 1's value wins.
	w.flush([]*CommandBuffer{bufB, bufA})

	got, _ := pos.GetFromEntity(w, e)
	require.Equal(t, testPosition{X: 2}, *got, "worker 1 applies after worker 0 regardless of slice order")
}

func TestFlushRunsDeferredClosuresLast(t *testing.T) {
	w, pos, _ := newTestWorld(t)
	e, _ := w.CreateEntity(pos.Value(testPosition{X: 1}))

	buf := newCommandBuffer(0, &w.alloc)
	var sawFinalValue float64
	buf.AddComponent(e, pos.Value(testPosition{X: 5}))
	buf.Defer(func(world *World) {
		got, _ := pos.GetFromEntity(world, e)
		sawFinalValue = got.X
	})
	w.flush([]*CommandBuffer{buf})

	require.Equal(t, 5.0, sawFinalValue)
}
