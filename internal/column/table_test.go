package column

import (
	"reflect"
	"testing"
)

type position struct{ X, Y float64 }
type velocity struct{ X, Y float64 }

func TestAppendAndGet(t *testing.T) {
	tbl := New([]Spec{
		{ID: 1, Type: reflect.TypeOf(position{})},
		{ID: 2, Type: reflect.TypeOf(velocity{})},
	})

	row := tbl.AppendRow(100)
	if tbl.Length() != 1 {
		t.Fatalf("Length() = %d, want 1", tbl.Length())
	}
	if tbl.KeyAt(row) != 100 {
		t.Fatalf("KeyAt = %d, want 100", tbl.KeyAt(row))
	}

	if err := tbl.Set(1, row, position{X: 1, Y: 2}); err != nil {
		t.Fatal(err)
	}
	v, ok := tbl.Get(1, row)
	if !ok {
		t.Fatal("expected column 1 to exist")
	}
	pos := v.Interface().(position)
	if pos.X != 1 || pos.Y != 2 {
		t.Fatalf("got %+v", pos)
	}
}

func TestSwapRemoveCallsDestructor(t *testing.T) {
	var destroyed []int
	tbl := New([]Spec{
		{ID: 1, Type: reflect.TypeOf(position{}), Destructor: func(v any) {
			destroyed = append(destroyed, int(v.(position).X))
		}},
	})

	rows := make([]int, 3)
	for i := range rows {
		rows[i] = tbl.AppendRow(uint64(i + 1))
		tbl.Set(1, rows[i], position{X: float64(i + 1)})
	}

	movedKey, moved := tbl.SwapRemove(0)
	if !moved {
		t.Fatal("expected a row to move into the vacated slot")
	}
	if movedKey != 3 {
		t.Fatalf("movedKey = %d, want 3 (last row's key)", movedKey)
	}
	if tbl.Length() != 2 {
		t.Fatalf("Length() = %d, want 2", tbl.Length())
	}
	if len(destroyed) != 1 || destroyed[0] != 1 {
		t.Fatalf("destroyed = %v, want [1]", destroyed)
	}

	// Row 0 now holds what used to be row 2 (key 3).
	v, _ := tbl.Get(1, 0)
	if v.Interface().(position).X != 3 {
		t.Fatalf("row 0 after swap = %+v, want X=3", v.Interface())
	}
}

func TestSwapRemoveLastRowNoMove(t *testing.T) {
	tbl := New([]Spec{{ID: 1, Type: reflect.TypeOf(position{})}})
	r0 := tbl.AppendRow(1)
	tbl.AppendRow(2)

	_, moved := tbl.SwapRemove(r0 + 1) // remove the last row
	if moved {
		t.Fatal("removing the last row should not report a move")
	}
	if tbl.Length() != 1 {
		t.Fatalf("Length() = %d, want 1", tbl.Length())
	}
}

func TestTransferRowSharedColumnsNotDestructed(t *testing.T) {
	var destroyedPos, destroyedVel int
	posSpec := Spec{ID: 1, Type: reflect.TypeOf(position{}), Destructor: func(any) { destroyedPos++ }}
	velSpec := Spec{ID: 2, Type: reflect.TypeOf(velocity{}), Destructor: func(any) { destroyedVel++ }}

	src := New([]Spec{posSpec, velSpec}) // {Position, Velocity}
	dst := New([]Spec{posSpec})          // {Position} -- removing Velocity

	row := src.AppendRow(42)
	src.Set(1, row, position{X: 9})
	src.Set(2, row, velocity{X: 5})

	newRow, _, _, err := TransferRow(src, row, dst, nil)
	if err != nil {
		t.Fatal(err)
	}
	if destroyedPos != 0 {
		t.Fatalf("Position destructor ran %d times, want 0 (column retained)", destroyedPos)
	}
	if destroyedVel != 1 {
		t.Fatalf("Velocity destructor ran %d times, want 1 (column dropped)", destroyedVel)
	}
	v, _ := dst.Get(1, newRow)
	if v.Interface().(position).X != 9 {
		t.Fatalf("Position not carried over: %+v", v.Interface())
	}
	if dst.KeyAt(newRow) != 42 {
		t.Fatalf("key not carried over: %d", dst.KeyAt(newRow))
	}
	if src.Length() != 0 {
		t.Fatalf("src length = %d, want 0", src.Length())
	}
}

func TestTransferRowWithOverride(t *testing.T) {
	posSpec := Spec{ID: 1, Type: reflect.TypeOf(position{})}
	nameSpec := Spec{ID: 2, Type: reflect.TypeOf("")}

	src := New([]Spec{posSpec})
	dst := New([]Spec{posSpec, nameSpec})

	row := src.AppendRow(7)
	src.Set(1, row, position{X: 3})

	newRow, _, _, err := TransferRow(src, row, dst, map[uint32]any{2: "hello"})
	if err != nil {
		t.Fatal(err)
	}
	v, _ := dst.Get(2, newRow)
	if v.Interface().(string) != "hello" {
		t.Fatalf("override not applied: %+v", v.Interface())
	}
}
