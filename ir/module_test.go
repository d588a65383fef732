package ir

import (
	"errors"
	"testing"

	"anvil/types"
)

func addSig(t *testing.T, c *Context) types.TypeID {
	t.Helper()
	sig, err := c.FunctionType([]types.TypeID{c.Int32Type(), c.Int32Type()}, c.Int32Type(), false)
	if err != nil {
		t.Fatalf("signature: %v", err)
	}
	return sig
}

func TestDeclareFunctionForwardDeclaration(t *testing.T) {
	c := NewContext()
	m, _ := c.NewModule("m")
	sig := addSig(t, c)
	f1, err := m.DeclareFunction("add", sig)
	if err != nil {
		t.Fatalf("declare: %v", err)
	}
	f2, err := m.DeclareFunction("add", sig)
	if err != nil {
		t.Fatalf("redeclare: %v", err)
	}
	if f1 != f2 {
		t.Fatalf("repeated forward declaration must return the same function")
	}
	if len(m.Functions()) != 1 {
		t.Fatalf("module must hold one function, got %d", len(m.Functions()))
	}
}

func TestDeclareFunctionConflictingSignature(t *testing.T) {
	c := NewContext()
	m, _ := c.NewModule("m")
	if _, err := m.DeclareFunction("add", addSig(t, c)); err != nil {
		t.Fatalf("declare: %v", err)
	}
	other, _ := c.FunctionType([]types.TypeID{c.Int64Type()}, c.Int64Type(), false)
	_, err := m.DeclareFunction("add", other)
	if !errors.Is(err, ErrDuplicateSymbol) {
		t.Fatalf("expected ErrDuplicateSymbol, got %v", err)
	}
}

func TestDeclareFunctionRejectsNonSignature(t *testing.T) {
	c := NewContext()
	m, _ := c.NewModule("m")
	if _, err := m.DeclareFunction("f", c.Int32Type()); !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("expected ErrTypeMismatch, got %v", err)
	}
}

func TestDeclareGlobalDedup(t *testing.T) {
	c := NewContext()
	m, _ := c.NewModule("m")
	g1, err := m.DeclareGlobal("g", c.Int32Type(), nil)
	if err != nil {
		t.Fatalf("declare: %v", err)
	}
	g2, err := m.DeclareGlobal("g", c.Int32Type(), nil)
	if err != nil || g1 != g2 {
		t.Fatalf("same name+type must dedup: %v", err)
	}
	if _, err := m.DeclareGlobal("g", c.Int64Type(), nil); !errors.Is(err, ErrDuplicateSymbol) {
		t.Fatalf("expected ErrDuplicateSymbol, got %v", err)
	}
}

func TestGlobalInitializerTypeChecked(t *testing.T) {
	c := NewContext()
	m, _ := c.NewModule("m")
	wide, _ := c.ConstInt(c.Int64Type(), 7)
	if _, err := m.DeclareGlobal("g", c.Int32Type(), wide); !errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("expected ErrTypeMismatch, got %v", err)
	}
}

func TestFunctionAndGlobalShareNamespace(t *testing.T) {
	c := NewContext()
	m, _ := c.NewModule("m")
	if _, err := m.DeclareGlobal("x", c.Int32Type(), nil); err != nil {
		t.Fatalf("global: %v", err)
	}
	if _, err := m.DeclareFunction("x", addSig(t, c)); !errors.Is(err, ErrDuplicateSymbol) {
		t.Fatalf("expected ErrDuplicateSymbol, got %v", err)
	}
}

func TestModulesShareOneContext(t *testing.T) {
	c := NewContext()
	m1, _ := c.NewModule("a")
	m2, _ := c.NewModule("b")
	sig := addSig(t, c)
	f1, err := m1.DeclareFunction("f", sig)
	if err != nil {
		t.Fatalf("declare in a: %v", err)
	}
	f2, err := m2.DeclareFunction("f", sig)
	if err != nil {
		t.Fatalf("declare in b: %v", err)
	}
	if f1.Signature() != f2.Signature() {
		t.Fatalf("modules of one context must share interned signatures")
	}
}

func TestParamsMatchSignature(t *testing.T) {
	c := NewContext()
	m, _ := c.NewModule("m")
	f, _ := m.DeclareFunction("add", addSig(t, c))
	if len(f.Params()) != 2 {
		t.Fatalf("expected 2 params, got %d", len(f.Params()))
	}
	if f.Param(0).Kind() != ValueParam || f.Param(0).Type() != c.Int32Type() {
		t.Fatalf("param 0 has wrong kind/type")
	}
	if f.Param(1).ParamIndex() != 1 {
		t.Fatalf("param index mismatch")
	}
	if f.ResultType() != c.Int32Type() {
		t.Fatalf("result type mismatch")
	}
}
