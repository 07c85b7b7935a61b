package loom

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type testPosition struct{ X, Y float64 }
type testVelocity struct{ DX, DY float64 }

func TestRegisterComponentAssignsDenseIDs(t *testing.T) {
	b := NewBuilder()
	pos := RegisterComponent[testPosition](b, "Position", nil, nil)
	vel := RegisterComponent[testVelocity](b, "Velocity", nil, nil)

	require.Equal(t, ComponentID(1), pos.ID())
	require.Equal(t, ComponentID(2), vel.ID())
}

func TestRegisterComponentDuplicateNameFails(t *testing.T) {
	b := NewBuilder()
	RegisterComponent[testPosition](b, "Position", nil, nil)
	RegisterComponent[testVelocity](b, "Position", nil, nil)

	_, err := b.Finalize()
	require.Error(t, err)
	var defErr DefinitionError
	require.ErrorAs(t, err, &defErr)
}

func TestRegisterComponentDestructorAdapted(t *testing.T) {
	b := NewBuilder()
	var destroyedX float64
	RegisterComponent[testPosition](b, "Position", func(p *testPosition) {
		destroyedX = p.X
	}, nil)
	def, err := b.Finalize()
	require.NoError(t, err)

	meta := def.components[0]
	require.NotNil(t, meta.Destructor)
	meta.Destructor(testPosition{X: 42})
	require.Equal(t, 42.0, destroyedX)
}

func TestRegisterComponentCombinerAdapted(t *testing.T) {
	b := NewBuilder()
	RegisterComponent[testVelocity](b, "Velocity", nil, func(existing, incoming *testVelocity) *testVelocity {
		return &testVelocity{DX: existing.DX + incoming.DX, DY: existing.DY + incoming.DY}
	})
	def, err := b.Finalize()
	require.NoError(t, err)

	meta := def.components[0]
	require.NotNil(t, meta.Combiner)
	result := meta.Combiner(testVelocity{DX: 1, DY: 1}, testVelocity{DX: 2, DY: 3})
	require.Equal(t, testVelocity{DX: 3, DY: 4}, result)
}
