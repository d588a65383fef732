package ir

import (
	"strings"
	"testing"

	"anvil/types"
)

func TestDumpModule(t *testing.T) {
	c, m, f, entry := buildAddFunc(t)
	zero, _ := c.ConstInt(c.Int32Type(), 0)
	if _, err := m.DeclareGlobal("counter", c.Int32Type(), zero); err != nil {
		t.Fatalf("global: %v", err)
	}
	b := c.NewBuilder()
	b.PositionAtEnd(entry)
	sum, _ := b.BuildAdd(f.Param(0), f.Param(1), "sum")
	if _, err := b.BuildRet(sum); err != nil {
		t.Fatalf("ret: %v", err)
	}

	var sb strings.Builder
	if err := Dump(&sb, m, DumpOptions{}); err != nil {
		t.Fatalf("dump: %v", err)
	}
	out := sb.String()
	for _, want := range []string{
		`module "m"`,
		"global @counter: i32 = 0",
		"fn @add: fn(i32, i32) i32 {",
		"bb0.entry:",
		"%sum = add i32 %arg0, i32 %arg1",
		"ret i32 %sum",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("dump missing %q:\n%s", want, out)
		}
	}
}

func TestDumpDeclarationOnly(t *testing.T) {
	c := NewContext()
	m, _ := c.NewModule("m")
	sig, _ := c.FunctionType([]types.TypeID{c.Int32Type()}, c.VoidType(), false)
	if _, err := m.DeclareFunction("ext", sig); err != nil {
		t.Fatalf("declare: %v", err)
	}
	var sb strings.Builder
	if err := Dump(&sb, m, DumpOptions{}); err != nil {
		t.Fatalf("dump: %v", err)
	}
	if !strings.Contains(sb.String(), "declare @ext: fn(i32) void") {
		t.Errorf("missing declaration line:\n%s", sb.String())
	}
}

func TestDumpIsStable(t *testing.T) {
	_, m, f, entry := buildAddFunc(t)
	b := m.Context().NewBuilder()
	b.PositionAtEnd(entry)
	sum, _ := b.BuildAdd(f.Param(0), f.Param(1), "")
	_, _ = b.BuildRet(sum)

	var first, second strings.Builder
	_ = Dump(&first, m, DumpOptions{})
	_ = Dump(&second, m, DumpOptions{})
	if first.String() != second.String() {
		t.Fatalf("dump must be deterministic")
	}
	if !strings.Contains(first.String(), "%0 = add") {
		t.Errorf("anonymous results must number from %%0:\n%s", first.String())
	}
}
