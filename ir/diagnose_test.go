package ir

import (
	"testing"

	"anvil/diag"
	"anvil/types"
)

func TestClassify(t *testing.T) {
	c := NewContext()
	m, _ := c.NewModule("m")

	if _, err := c.ConstInt(c.Int1Type(), 2); Classify(err) != diag.BuildTypeMismatch {
		t.Errorf("overflow literal: got %v", Classify(err))
	}
	if _, err := c.IntType(0); Classify(err) != diag.TypeInvalidSpec {
		t.Errorf("zero-width int: got %v", Classify(err))
	}

	other := NewContext()
	foreign, _ := other.ConstInt(other.Int32Type(), 1)
	if _, err := m.DeclareGlobal("g", c.Int32Type(), foreign); Classify(err) != diag.BuildCrossContext {
		t.Errorf("cross-context initializer: got %v", Classify(err))
	}

	b := c.NewBuilder()
	if _, err := b.BuildRetVoid(); Classify(err) != diag.BuildInvalidInsertionPoint {
		t.Errorf("unpositioned builder: got %v", Classify(err))
	}
}

func TestCollect(t *testing.T) {
	c := NewContext()
	bag := diag.NewBag(8)
	loc := diag.Loc{Func: "f", Block: 0, Instr: 2}

	if Collect(bag, loc, nil) {
		t.Fatal("nil error must not be collected")
	}
	_, err := c.IntType(types.MaxIntBits + 1)
	if !Collect(bag, loc, err) {
		t.Fatal("error must be collected")
	}
	if bag.Len() != 1 || !bag.HasErrors() {
		t.Fatalf("bag: %+v", bag.Items())
	}
	d := bag.Items()[0]
	if d.Code != diag.TypeInvalidSpec || d.Primary != loc {
		t.Fatalf("diagnostic: %+v", d)
	}
}
