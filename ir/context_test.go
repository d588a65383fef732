package ir

import (
	"errors"
	"testing"

	"anvil/types"
)

func TestContextDispose(t *testing.T) {
	c := NewContext()
	m, err := c.NewModule("m")
	if err != nil {
		t.Fatalf("new module: %v", err)
	}
	sig, err := c.FunctionType(nil, c.VoidType(), false)
	if err != nil {
		t.Fatalf("signature: %v", err)
	}
	c.Dispose()
	if !c.Disposed() {
		t.Fatalf("expected disposed")
	}
	if _, err := c.IntType(13); !errors.Is(err, ErrUseAfterDispose) {
		t.Fatalf("expected ErrUseAfterDispose, got %v", err)
	}
	if _, err := c.NewModule("n"); !errors.Is(err, ErrUseAfterDispose) {
		t.Fatalf("expected ErrUseAfterDispose, got %v", err)
	}
	if _, err := m.DeclareFunction("f", sig); !errors.Is(err, ErrUseAfterDispose) {
		t.Fatalf("stale module handle must fail with ErrUseAfterDispose, got %v", err)
	}
}

func TestContextTypeHelpers(t *testing.T) {
	c := NewContext()
	i7, err := c.IntType(7)
	if err != nil {
		t.Fatalf("i7: %v", err)
	}
	i7again, _ := c.IntType(7)
	if i7 != i7again {
		t.Fatalf("arbitrary-width ints must intern")
	}
	if _, err := c.IntType(0); !errors.Is(err, types.ErrInvalidTypeSpec) {
		t.Fatalf("zero-width int must fail, got %v", err)
	}
	arr, err := c.ArrayType(c.Int32Type(), 8)
	if err != nil {
		t.Fatalf("array: %v", err)
	}
	if tt := c.Types().MustLookup(arr); tt.Kind != types.KindArray || tt.Count != 8 {
		t.Fatalf("unexpected array descriptor: %+v", tt)
	}
}

func TestNamedStructRoundTrip(t *testing.T) {
	c := NewContext()
	node, err := c.NamedStructType("node")
	if err != nil {
		t.Fatalf("named struct: %v", err)
	}
	again, _ := c.NamedStructType("node")
	if node != again {
		t.Fatalf("NamedStructType must return the registered identity")
	}
	if err := c.SetStructBody(node, []types.TypeID{c.Int64Type(), c.PointerType()}, false); err != nil {
		t.Fatalf("set body: %v", err)
	}
	if err := c.SetStructBody(node, []types.TypeID{node}, false); !errors.Is(err, types.ErrInvalidTypeSpec) {
		t.Fatalf("direct recursion must fail, got %v", err)
	}
}

func TestIndependentContextsDoNotShareTypes(t *testing.T) {
	a := NewContext()
	b := NewContext()
	if a.Arena() == b.Arena() {
		t.Fatalf("contexts must own distinct arenas")
	}
	ca, _ := a.ConstInt(a.Int32Type(), 1)
	mb, _ := b.NewModule("m")
	if _, err := mb.DeclareGlobal("g", b.Int32Type(), ca); !errors.Is(err, ErrCrossContext) {
		t.Fatalf("cross-context initializer must be rejected, got %v", err)
	}
}
