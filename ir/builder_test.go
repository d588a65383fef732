package ir

import (
	"errors"
	"testing"

	"anvil/types"
)

func buildAddFunc(t *testing.T) (*Context, *Module, *Func, *Block) {
	t.Helper()
	c := NewContext()
	m, err := c.NewModule("m")
	if err != nil {
		t.Fatalf("module: %v", err)
	}
	sig, err := c.FunctionType([]types.TypeID{c.Int32Type(), c.Int32Type()}, c.Int32Type(), false)
	if err != nil {
		t.Fatalf("signature: %v", err)
	}
	f, err := m.DeclareFunction("add", sig)
	if err != nil {
		t.Fatalf("declare: %v", err)
	}
	entry, err := f.AppendBlock("entry")
	if err != nil {
		t.Fatalf("append block: %v", err)
	}
	return c, m, f, entry
}

func TestBuildAddThenRet(t *testing.T) {
	c, _, f, entry := buildAddFunc(t)
	b := c.NewBuilder()
	b.PositionAtEnd(entry)
	sum, err := b.BuildAdd(f.Param(0), f.Param(1), "sum")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if sum.Kind() != ValueInstr || sum.Type() != c.Int32Type() {
		t.Fatalf("unexpected result value")
	}
	if _, err := b.BuildRet(sum); err != nil {
		t.Fatalf("ret: %v", err)
	}
	if !entry.Terminated() {
		t.Fatalf("block must be terminated")
	}
	if len(entry.Instrs()) != 2 {
		t.Fatalf("expected 2 instructions, got %d", len(entry.Instrs()))
	}
}

func TestBuildMismatchedOperandsFailClosed(t *testing.T) {
	c, _, f, entry := buildAddFunc(t)
	b := c.NewBuilder()
	b.PositionAtEnd(entry)
	wide, err := c.ConstInt(c.Int64Type(), 1)
	if err != nil {
		t.Fatalf("const: %v", err)
	}
	_, err = b.BuildAdd(f.Param(0), wide, "bad")
	if !errors.Is(err, ErrIllTypedOperation) {
		t.Fatalf("expected ErrIllTypedOperation, got %v", err)
	}
	if len(entry.Instrs()) != 0 {
		t.Fatalf("failed build must leave the block unmodified, got %d instrs", len(entry.Instrs()))
	}
}

func TestNoAppendAfterTerminator(t *testing.T) {
	c, _, f, entry := buildAddFunc(t)
	b := c.NewBuilder()
	b.PositionAtEnd(entry)
	sum, _ := b.BuildAdd(f.Param(0), f.Param(1), "sum")
	if _, err := b.BuildRet(sum); err != nil {
		t.Fatalf("ret: %v", err)
	}
	_, err := b.BuildAdd(f.Param(0), f.Param(1), "late")
	if !errors.Is(err, ErrInvalidInsertionPoint) {
		t.Fatalf("expected ErrInvalidInsertionPoint, got %v", err)
	}
	if len(entry.Instrs()) != 2 {
		t.Fatalf("block must keep exactly 2 instructions")
	}
}

func TestSingleTerminatorPerBlock(t *testing.T) {
	c, _, f, entry := buildAddFunc(t)
	b := c.NewBuilder()
	b.PositionAtEnd(entry)
	sum, _ := b.BuildAdd(f.Param(0), f.Param(1), "sum")
	if _, err := b.BuildRet(sum); err != nil {
		t.Fatalf("ret: %v", err)
	}
	if _, err := b.BuildRet(sum); !errors.Is(err, ErrInvalidInsertionPoint) {
		t.Fatalf("second terminator must be rejected, got %v", err)
	}
	term := entry.Terminator()
	if term == nil || term.Op() != OpRet {
		t.Fatalf("terminator must be the trailing ret")
	}
}

func TestPositionBeforeInsertsMidBlock(t *testing.T) {
	c, _, f, entry := buildAddFunc(t)
	b := c.NewBuilder()
	b.PositionAtEnd(entry)
	sum, _ := b.BuildAdd(f.Param(0), f.Param(1), "sum")
	ret, _ := b.BuildRet(sum)
	if err := b.PositionBefore(ret); err != nil {
		t.Fatalf("position before: %v", err)
	}
	if _, err := b.BuildMul(f.Param(0), f.Param(1), "prod"); err != nil {
		t.Fatalf("mid-block insert: %v", err)
	}
	instrs := entry.Instrs()
	if len(instrs) != 3 || instrs[1].Op() != OpMul || instrs[2].Op() != OpRet {
		t.Fatalf("unexpected instruction order")
	}
}

func TestRetTypeChecked(t *testing.T) {
	c, _, _, entry := buildAddFunc(t)
	b := c.NewBuilder()
	b.PositionAtEnd(entry)
	wide, _ := c.ConstInt(c.Int64Type(), 1)
	if _, err := b.BuildRet(wide); !errors.Is(err, ErrIllTypedOperation) {
		t.Fatalf("ret of wrong type must fail, got %v", err)
	}
	if _, err := b.BuildRetVoid(); !errors.Is(err, ErrIllTypedOperation) {
		t.Fatalf("ret void in i32 function must fail, got %v", err)
	}
}

func TestCondBrRequiresI1(t *testing.T) {
	c, _, f, entry := buildAddFunc(t)
	then, _ := f.AppendBlock("then")
	els, _ := f.AppendBlock("else")
	b := c.NewBuilder()
	b.PositionAtEnd(entry)
	if _, err := b.BuildCondBr(f.Param(0), then, els); !errors.Is(err, ErrIllTypedOperation) {
		t.Fatalf("i32 condition must fail, got %v", err)
	}
	cond, _ := b.BuildICmp(IntSLT, f.Param(0), f.Param(1), "cond")
	if _, err := b.BuildCondBr(cond, then, els); err != nil {
		t.Fatalf("condbr: %v", err)
	}
}

func TestBranchTargetMustBeSameFunction(t *testing.T) {
	c, m, _, entry := buildAddFunc(t)
	sig, _ := c.FunctionType(nil, c.VoidType(), false)
	other, _ := m.DeclareFunction("other", sig)
	foreign, _ := other.AppendBlock("entry")
	b := c.NewBuilder()
	b.PositionAtEnd(entry)
	if _, err := b.BuildBr(foreign); !errors.Is(err, ErrIllTypedOperation) {
		t.Fatalf("cross-function branch must fail, got %v", err)
	}
}

func TestOperandFromOtherFunctionRejected(t *testing.T) {
	c, m, f, entry := buildAddFunc(t)
	sig, _ := c.FunctionType([]types.TypeID{c.Int32Type()}, c.Int32Type(), false)
	other, _ := m.DeclareFunction("other", sig)
	b := c.NewBuilder()
	b.PositionAtEnd(entry)
	if _, err := b.BuildAdd(f.Param(0), other.Param(0), "x"); !errors.Is(err, ErrIllTypedOperation) {
		t.Fatalf("foreign-function operand must fail, got %v", err)
	}
}

func TestCastRules(t *testing.T) {
	c, _, f, entry := buildAddFunc(t)
	b := c.NewBuilder()
	b.PositionAtEnd(entry)
	if _, err := b.BuildTrunc(f.Param(0), c.Int8Type(), "t"); err != nil {
		t.Fatalf("trunc i32->i8: %v", err)
	}
	if _, err := b.BuildTrunc(f.Param(0), c.Int64Type(), "bad"); !errors.Is(err, ErrIllTypedOperation) {
		t.Fatalf("trunc to wider type must fail, got %v", err)
	}
	if _, err := b.BuildZExt(f.Param(0), c.Int64Type(), "z"); err != nil {
		t.Fatalf("zext i32->i64: %v", err)
	}
	if _, err := b.BuildSIToFP(f.Param(0), c.Float64Type(), "fp"); err != nil {
		t.Fatalf("sitofp: %v", err)
	}
	if _, err := b.BuildBitcast(f.Param(0), c.Float32Type(), "bc"); err != nil {
		t.Fatalf("bitcast i32->f32 (same width): %v", err)
	}
	if _, err := b.BuildBitcast(f.Param(0), c.Float64Type(), "bad"); !errors.Is(err, ErrIllTypedOperation) {
		t.Fatalf("bitcast across widths must fail, got %v", err)
	}
}

func TestMemoryOps(t *testing.T) {
	c, _, f, entry := buildAddFunc(t)
	b := c.NewBuilder()
	b.PositionAtEnd(entry)
	slot, err := b.BuildAlloca(c.Int32Type(), "slot")
	if err != nil {
		t.Fatalf("alloca: %v", err)
	}
	if slot.Type() != c.PointerType() {
		t.Fatalf("alloca must yield a pointer")
	}
	if _, err := b.BuildStore(f.Param(0), slot); err != nil {
		t.Fatalf("store: %v", err)
	}
	loaded, err := b.BuildLoad(c.Int32Type(), slot, "val")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Type() != c.Int32Type() {
		t.Fatalf("load result type mismatch")
	}
	if _, err := b.BuildStore(f.Param(0), f.Param(1)); !errors.Is(err, ErrIllTypedOperation) {
		t.Fatalf("store through non-pointer must fail, got %v", err)
	}
	if _, err := b.BuildLoad(c.VoidType(), slot, "bad"); !errors.Is(err, ErrIllTypedOperation) {
		t.Fatalf("load of void must fail, got %v", err)
	}
}

func TestCallArityAndTypes(t *testing.T) {
	c, m, f, entry := buildAddFunc(t)
	b := c.NewBuilder()
	b.PositionAtEnd(entry)
	callee, _ := m.Function("add")
	res, err := b.BuildCall(callee, []*Value{f.Param(0), f.Param(1)}, "r")
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if res == nil || res.Type() != c.Int32Type() {
		t.Fatalf("call result mismatch")
	}
	if _, err := b.BuildCall(callee, []*Value{f.Param(0)}, "r2"); !errors.Is(err, ErrIllTypedOperation) {
		t.Fatalf("arity mismatch must fail, got %v", err)
	}
	wide, _ := c.ConstInt(c.Int64Type(), 3)
	if _, err := b.BuildCall(callee, []*Value{f.Param(0), wide}, "r3"); !errors.Is(err, ErrIllTypedOperation) {
		t.Fatalf("arg type mismatch must fail, got %v", err)
	}
}

func TestVariadicCallAdmitsTail(t *testing.T) {
	c, m, f, entry := buildAddFunc(t)
	sig, _ := c.FunctionType([]types.TypeID{c.PointerType()}, c.Int32Type(), true)
	printf, _ := m.DeclareFunction("printf", sig)
	fmtArg, _ := c.ConstNull(c.PointerType())
	b := c.NewBuilder()
	b.PositionAtEnd(entry)
	if _, err := b.BuildCall(printf, []*Value{fmtArg, f.Param(0), f.Param(1)}, "n"); err != nil {
		t.Fatalf("variadic call: %v", err)
	}
	if _, err := b.BuildCall(printf, nil, "bad"); !errors.Is(err, ErrIllTypedOperation) {
		t.Fatalf("missing fixed arg must fail, got %v", err)
	}
}

func TestVoidCallHasNoResult(t *testing.T) {
	c, m, _, entry := buildAddFunc(t)
	sig, _ := c.FunctionType(nil, c.VoidType(), false)
	noop, _ := m.DeclareFunction("noop", sig)
	b := c.NewBuilder()
	b.PositionAtEnd(entry)
	res, err := b.BuildCall(noop, nil, "")
	if err != nil {
		t.Fatalf("void call: %v", err)
	}
	if res != nil {
		t.Fatalf("void call must yield no value")
	}
}

func TestPhiGroupingAndIncoming(t *testing.T) {
	c, _, f, entry := buildAddFunc(t)
	left, _ := f.AppendBlock("left")
	right, _ := f.AppendBlock("right")
	join, _ := f.AppendBlock("join")

	b := c.NewBuilder()
	b.PositionAtEnd(join)
	phi, err := b.BuildPhi(c.Int32Type(), "merged")
	if err != nil {
		t.Fatalf("phi: %v", err)
	}
	if err := phi.Def().AddIncoming(f.Param(0), left); err != nil {
		t.Fatalf("incoming: %v", err)
	}
	if err := phi.Def().AddIncoming(f.Param(1), left); !errors.Is(err, ErrIllTypedOperation) {
		t.Fatalf("duplicate incoming block must fail, got %v", err)
	}
	wide, _ := c.ConstInt(c.Int64Type(), 0)
	if err := phi.Def().AddIncoming(wide, right); !errors.Is(err, ErrIllTypedOperation) {
		t.Fatalf("mismatched incoming type must fail, got %v", err)
	}

	// A non-phi at the top cannot be followed by a phi.
	b.PositionAtEnd(entry)
	if _, err := b.BuildAdd(f.Param(0), f.Param(1), "x"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := b.BuildPhi(c.Int32Type(), "bad"); !errors.Is(err, ErrInvalidInsertionPoint) {
		t.Fatalf("phi after non-phi must fail, got %v", err)
	}
}

func TestBuilderUnpositioned(t *testing.T) {
	c := NewContext()
	b := c.NewBuilder()
	one, _ := c.ConstInt(c.Int32Type(), 1)
	if _, err := b.BuildAdd(one, one, "x"); !errors.Is(err, ErrInvalidInsertionPoint) {
		t.Fatalf("unpositioned builder must fail, got %v", err)
	}
}

func TestBuilderRejectsForeignBlock(t *testing.T) {
	ca := NewContext()
	cb := NewContext()
	// Same interning order, so both IDs share a numeric index and only the
	// owning arena distinguishes them.
	i7, err := ca.IntType(7)
	if err != nil {
		t.Fatalf("i7: %v", err)
	}
	if _, err := cb.IntType(9); err != nil {
		t.Fatalf("i9: %v", err)
	}
	mb, err := cb.NewModule("m")
	if err != nil {
		t.Fatalf("module: %v", err)
	}
	sig, err := cb.FunctionType(nil, cb.VoidType(), false)
	if err != nil {
		t.Fatalf("signature: %v", err)
	}
	f, err := mb.DeclareFunction("f", sig)
	if err != nil {
		t.Fatalf("declare: %v", err)
	}
	entry, err := f.AppendBlock("entry")
	if err != nil {
		t.Fatalf("append block: %v", err)
	}

	b := ca.NewBuilder()
	b.PositionAtEnd(entry)
	if _, err := b.BuildAlloca(i7, "slot"); !errors.Is(err, ErrCrossContext) {
		t.Fatalf("alloca into foreign block must fail with ErrCrossContext, got %v", err)
	}
	if _, err := b.BuildRetVoid(); !errors.Is(err, ErrCrossContext) {
		t.Fatalf("ret into foreign block must fail with ErrCrossContext, got %v", err)
	}
	if len(entry.Instrs()) != 0 {
		t.Fatalf("foreign builder must leave the block unmodified, got %d instrs", len(entry.Instrs()))
	}
}
