package ir

import (
	"fmt"

	"anvil/types"
)

// Builder is a cursor over one basic block: a position the caller threads
// through build calls. Multiple builders over the same module are
// independent; none of them holds hidden global state.
//
// Every build operation validates arity, operand types (strict identity, no
// implicit coercion) and cursor legality before touching the block. A failed
// call leaves the block unmodified.
type Builder struct {
	ctx   *Context
	block *Block
	at    int
}

// NewBuilder returns an unpositioned builder for this context.
func (c *Context) NewBuilder() *Builder {
	return &Builder{ctx: c}
}

// PositionAtEnd moves the cursor to the end of the block.
func (b *Builder) PositionAtEnd(blk *Block) {
	b.block = blk
	if blk != nil {
		b.at = len(blk.instrs)
	}
}

// PositionBefore moves the cursor to just before the given instruction.
func (b *Builder) PositionBefore(ins *Instr) error {
	if ins == nil || ins.parent == nil {
		return fmt.Errorf("%w: instruction is not in a block", ErrInvalidInsertionPoint)
	}
	for idx, cur := range ins.parent.instrs {
		if cur == ins {
			b.block = ins.parent
			b.at = idx
			return nil
		}
	}
	return fmt.Errorf("%w: instruction not found in its block", ErrInvalidInsertionPoint)
}

// Block returns the block the cursor points into, nil when unpositioned.
func (b *Builder) Block() *Block { return b.block }

func (b *Builder) prepare() error {
	if err := b.ctx.alive(); err != nil {
		return err
	}
	if b.block == nil {
		return fmt.Errorf("%w: builder is not positioned", ErrInvalidInsertionPoint)
	}
	// A block from another context would let its raw TypeIDs resolve against
	// the wrong interner, so it is rejected before any type rule runs.
	if b.block.fn.mod.ctx != b.ctx {
		return fmt.Errorf("%w: block belongs to a different context", ErrCrossContext)
	}
	if b.at > len(b.block.instrs) {
		b.at = len(b.block.instrs)
	}
	return nil
}

func leadingPhis(blk *Block) int {
	n := 0
	for _, ins := range blk.instrs {
		if ins.op != OpPhi {
			break
		}
		n++
	}
	return n
}

// checkInsert validates the cursor for an op without mutating anything.
func (b *Builder) checkInsert(op Op) error {
	blk := b.block
	switch {
	case op.IsTerminator():
		if blk.Terminated() {
			return fmt.Errorf("%w: block %q already has a terminator", ErrInvalidInsertionPoint, blk.label)
		}
		if b.at != len(blk.instrs) {
			return fmt.Errorf("%w: terminator must be the last instruction", ErrInvalidInsertionPoint)
		}
	case op == OpPhi:
		if b.at > leadingPhis(blk) {
			return fmt.Errorf("%w: phi nodes must be grouped at the top of the block", ErrInvalidInsertionPoint)
		}
	default:
		if b.at == len(blk.instrs) && blk.Terminated() {
			return fmt.Errorf("%w: cannot append after terminator in block %q", ErrInvalidInsertionPoint, blk.label)
		}
		if b.at < leadingPhis(blk) {
			return fmt.Errorf("%w: cannot insert between phi nodes", ErrInvalidInsertionPoint)
		}
	}
	return nil
}

// checkOperand verifies provenance: same context, and for function-local
// values the builder's own function.
func (b *Builder) checkOperand(v *Value) error {
	if v == nil {
		return fmt.Errorf("%w: nil operand", ErrIllTypedOperation)
	}
	if v.arena != b.ctx.Arena() {
		return fmt.Errorf("%w: operand belongs to a different context", ErrCrossContext)
	}
	fn := b.block.fn
	switch v.kind {
	case ValueInstr, ValueParam:
		if v.fn != fn {
			return fmt.Errorf("%w: operand is local to function %q", ErrIllTypedOperation, v.fn.name)
		}
	case ValueGlobal:
		if v.global.mod != fn.mod {
			return fmt.Errorf("%w: global %q belongs to another module", ErrIllTypedOperation, v.global.name)
		}
	}
	return nil
}

// insert splices the instruction at the cursor and advances past it.
// Callers have fully validated by this point.
func (b *Builder) insert(ins *Instr) {
	blk := b.block
	ins.parent = blk
	blk.instrs = append(blk.instrs, nil)
	copy(blk.instrs[b.at+1:], blk.instrs[b.at:])
	blk.instrs[b.at] = ins
	b.at++
}

func (b *Builder) newResult(ins *Instr, name string) *Value {
	v := &Value{
		kind:  ValueInstr,
		ty:    ins.ty,
		name:  name,
		arena: b.ctx.Arena(),
		fn:    b.block.fn,
		def:   ins,
	}
	ins.result = v
	return v
}

// Integer and float binary operations ----------------------------------------

func (b *Builder) buildBin(op Op, wantKind types.Kind, x, y *Value, name string) (*Value, error) {
	c := b.ctx
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := b.prepare(); err != nil {
		return nil, err
	}
	if err := b.checkInsert(op); err != nil {
		return nil, err
	}
	if err := b.checkOperand(x); err != nil {
		return nil, err
	}
	if err := b.checkOperand(y); err != nil {
		return nil, err
	}
	if x.ty != y.ty {
		return nil, fmt.Errorf("%w: %s requires matching operand types, got %s and %s", ErrIllTypedOperation,
			op, types.Format(c.types, x.ty), types.Format(c.types, y.ty))
	}
	if tt := c.types.MustLookup(x.ty); tt.Kind != wantKind {
		return nil, fmt.Errorf("%w: %s requires %s operands, got %s", ErrIllTypedOperation,
			op, wantKind, types.Format(c.types, x.ty))
	}
	ins := &Instr{op: op, ty: x.ty, operands: []*Value{x, y}}
	v := b.newResult(ins, name)
	b.insert(ins)
	return v, nil
}

func (b *Builder) BuildAdd(x, y *Value, name string) (*Value, error) {
	return b.buildBin(OpAdd, types.KindInt, x, y, name)
}

func (b *Builder) BuildSub(x, y *Value, name string) (*Value, error) {
	return b.buildBin(OpSub, types.KindInt, x, y, name)
}

func (b *Builder) BuildMul(x, y *Value, name string) (*Value, error) {
	return b.buildBin(OpMul, types.KindInt, x, y, name)
}

func (b *Builder) BuildSDiv(x, y *Value, name string) (*Value, error) {
	return b.buildBin(OpSDiv, types.KindInt, x, y, name)
}

func (b *Builder) BuildUDiv(x, y *Value, name string) (*Value, error) {
	return b.buildBin(OpUDiv, types.KindInt, x, y, name)
}

func (b *Builder) BuildSRem(x, y *Value, name string) (*Value, error) {
	return b.buildBin(OpSRem, types.KindInt, x, y, name)
}

func (b *Builder) BuildURem(x, y *Value, name string) (*Value, error) {
	return b.buildBin(OpURem, types.KindInt, x, y, name)
}

func (b *Builder) BuildAnd(x, y *Value, name string) (*Value, error) {
	return b.buildBin(OpAnd, types.KindInt, x, y, name)
}

func (b *Builder) BuildOr(x, y *Value, name string) (*Value, error) {
	return b.buildBin(OpOr, types.KindInt, x, y, name)
}

func (b *Builder) BuildXor(x, y *Value, name string) (*Value, error) {
	return b.buildBin(OpXor, types.KindInt, x, y, name)
}

func (b *Builder) BuildShl(x, y *Value, name string) (*Value, error) {
	return b.buildBin(OpShl, types.KindInt, x, y, name)
}

func (b *Builder) BuildLShr(x, y *Value, name string) (*Value, error) {
	return b.buildBin(OpLShr, types.KindInt, x, y, name)
}

func (b *Builder) BuildAShr(x, y *Value, name string) (*Value, error) {
	return b.buildBin(OpAShr, types.KindInt, x, y, name)
}

func (b *Builder) BuildFAdd(x, y *Value, name string) (*Value, error) {
	return b.buildBin(OpFAdd, types.KindFloat, x, y, name)
}

func (b *Builder) BuildFSub(x, y *Value, name string) (*Value, error) {
	return b.buildBin(OpFSub, types.KindFloat, x, y, name)
}

func (b *Builder) BuildFMul(x, y *Value, name string) (*Value, error) {
	return b.buildBin(OpFMul, types.KindFloat, x, y, name)
}

func (b *Builder) BuildFDiv(x, y *Value, name string) (*Value, error) {
	return b.buildBin(OpFDiv, types.KindFloat, x, y, name)
}

// Comparisons ----------------------------------------------------------------

// BuildICmp compares two integers or two pointers of the same type and
// yields an i1.
func (b *Builder) BuildICmp(pred IntPredicate, x, y *Value, name string) (*Value, error) {
	c := b.ctx
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := b.prepare(); err != nil {
		return nil, err
	}
	if err := b.checkInsert(OpICmp); err != nil {
		return nil, err
	}
	if err := b.checkOperand(x); err != nil {
		return nil, err
	}
	if err := b.checkOperand(y); err != nil {
		return nil, err
	}
	if x.ty != y.ty {
		return nil, fmt.Errorf("%w: icmp requires matching operand types, got %s and %s", ErrIllTypedOperation,
			types.Format(c.types, x.ty), types.Format(c.types, y.ty))
	}
	tt := c.types.MustLookup(x.ty)
	if tt.Kind != types.KindInt && tt.Kind != types.KindPointer {
		return nil, fmt.Errorf("%w: icmp requires int or pointer operands, got %s", ErrIllTypedOperation,
			types.Format(c.types, x.ty))
	}
	ins := &Instr{op: OpICmp, ty: c.types.Builtins().I1, operands: []*Value{x, y}, ipred: pred}
	v := b.newResult(ins, name)
	b.insert(ins)
	return v, nil
}

// BuildFCmp compares two floats of the same type and yields an i1.
func (b *Builder) BuildFCmp(pred FloatPredicate, x, y *Value, name string) (*Value, error) {
	c := b.ctx
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := b.prepare(); err != nil {
		return nil, err
	}
	if err := b.checkInsert(OpFCmp); err != nil {
		return nil, err
	}
	if err := b.checkOperand(x); err != nil {
		return nil, err
	}
	if err := b.checkOperand(y); err != nil {
		return nil, err
	}
	if x.ty != y.ty {
		return nil, fmt.Errorf("%w: fcmp requires matching operand types, got %s and %s", ErrIllTypedOperation,
			types.Format(c.types, x.ty), types.Format(c.types, y.ty))
	}
	if tt := c.types.MustLookup(x.ty); tt.Kind != types.KindFloat {
		return nil, fmt.Errorf("%w: fcmp requires float operands, got %s", ErrIllTypedOperation,
			types.Format(c.types, x.ty))
	}
	ins := &Instr{op: OpFCmp, ty: c.types.Builtins().I1, operands: []*Value{x, y}, fpred: pred}
	v := b.newResult(ins, name)
	b.insert(ins)
	return v, nil
}

// Casts -----------------------------------------------------------------------

// castOK states the legality rule for each explicit conversion; nothing
// outside this table converts.
func castOK(in *types.Interner, op Op, from, to types.Type) bool {
	switch op {
	case OpTrunc:
		return from.Kind == types.KindInt && to.Kind == types.KindInt && from.Bits > to.Bits
	case OpZExt, OpSExt:
		return from.Kind == types.KindInt && to.Kind == types.KindInt && from.Bits < to.Bits
	case OpFPTrunc:
		return from.Kind == types.KindFloat && to.Kind == types.KindFloat && from.Bits > to.Bits
	case OpFPExt:
		return from.Kind == types.KindFloat && to.Kind == types.KindFloat && from.Bits < to.Bits
	case OpFPToSI, OpFPToUI:
		return from.Kind == types.KindFloat && to.Kind == types.KindInt
	case OpSIToFP, OpUIToFP:
		return from.Kind == types.KindInt && to.Kind == types.KindFloat
	case OpPtrToInt:
		return from.Kind == types.KindPointer && to.Kind == types.KindInt
	case OpIntToPtr:
		return from.Kind == types.KindInt && to.Kind == types.KindPointer
	case OpBitcast:
		if from.Kind == types.KindPointer && to.Kind == types.KindPointer {
			return from.AddrSpace == to.AddrSpace
		}
		fromBits, okFrom := scalarBits(in, from)
		toBits, okTo := scalarBits(in, to)
		return okFrom && okTo && fromBits == toBits
	}
	return false
}

// scalarBits returns the total bit width of an int, float or vector type.
func scalarBits(in *types.Interner, tt types.Type) (uint64, bool) {
	switch tt.Kind {
	case types.KindInt, types.KindFloat:
		return uint64(tt.Bits), true
	case types.KindVector:
		elem, ok := in.Lookup(tt.Elem)
		if !ok {
			return 0, false
		}
		bits, ok := scalarBits(in, elem)
		if !ok {
			return 0, false
		}
		return bits * uint64(tt.Count), true
	}
	return 0, false
}

func (b *Builder) buildCast(op Op, v *Value, to types.TypeID, name string) (*Value, error) {
	c := b.ctx
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := b.prepare(); err != nil {
		return nil, err
	}
	if err := b.checkInsert(op); err != nil {
		return nil, err
	}
	if err := b.checkOperand(v); err != nil {
		return nil, err
	}
	toT, ok := c.types.Lookup(to)
	if !ok {
		return nil, fmt.Errorf("%w: unknown target type#%d", ErrIllTypedOperation, to)
	}
	fromT := c.types.MustLookup(v.ty)
	if !castOK(c.types, op, fromT, toT) {
		return nil, fmt.Errorf("%w: no %s conversion from %s to %s", ErrIllTypedOperation,
			op, types.Format(c.types, v.ty), types.Format(c.types, to))
	}
	ins := &Instr{op: op, ty: to, operands: []*Value{v}}
	res := b.newResult(ins, name)
	b.insert(ins)
	return res, nil
}

func (b *Builder) BuildTrunc(v *Value, to types.TypeID, name string) (*Value, error) {
	return b.buildCast(OpTrunc, v, to, name)
}

func (b *Builder) BuildZExt(v *Value, to types.TypeID, name string) (*Value, error) {
	return b.buildCast(OpZExt, v, to, name)
}

func (b *Builder) BuildSExt(v *Value, to types.TypeID, name string) (*Value, error) {
	return b.buildCast(OpSExt, v, to, name)
}

func (b *Builder) BuildFPTrunc(v *Value, to types.TypeID, name string) (*Value, error) {
	return b.buildCast(OpFPTrunc, v, to, name)
}

func (b *Builder) BuildFPExt(v *Value, to types.TypeID, name string) (*Value, error) {
	return b.buildCast(OpFPExt, v, to, name)
}

func (b *Builder) BuildFPToSI(v *Value, to types.TypeID, name string) (*Value, error) {
	return b.buildCast(OpFPToSI, v, to, name)
}

func (b *Builder) BuildFPToUI(v *Value, to types.TypeID, name string) (*Value, error) {
	return b.buildCast(OpFPToUI, v, to, name)
}

func (b *Builder) BuildSIToFP(v *Value, to types.TypeID, name string) (*Value, error) {
	return b.buildCast(OpSIToFP, v, to, name)
}

func (b *Builder) BuildUIToFP(v *Value, to types.TypeID, name string) (*Value, error) {
	return b.buildCast(OpUIToFP, v, to, name)
}

func (b *Builder) BuildPtrToInt(v *Value, to types.TypeID, name string) (*Value, error) {
	return b.buildCast(OpPtrToInt, v, to, name)
}

func (b *Builder) BuildIntToPtr(v *Value, to types.TypeID, name string) (*Value, error) {
	return b.buildCast(OpIntToPtr, v, to, name)
}

func (b *Builder) BuildBitcast(v *Value, to types.TypeID, name string) (*Value, error) {
	return b.buildCast(OpBitcast, v, to, name)
}

// Memory ----------------------------------------------------------------------

// BuildAlloca reserves stack storage for one value of ty and yields its
// pointer.
func (b *Builder) BuildAlloca(ty types.TypeID, name string) (*Value, error) {
	c := b.ctx
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := b.prepare(); err != nil {
		return nil, err
	}
	if err := b.checkInsert(OpAlloca); err != nil {
		return nil, err
	}
	if err := checkSizedValueType(c.types, ty, "alloca"); err != nil {
		return nil, err
	}
	ins := &Instr{op: OpAlloca, ty: c.types.Builtins().Ptr, pointee: ty}
	v := b.newResult(ins, name)
	b.insert(ins)
	return v, nil
}

// BuildLoad reads a value of ty through ptr. The result type is explicit
// because pointers are opaque.
func (b *Builder) BuildLoad(ty types.TypeID, ptr *Value, name string) (*Value, error) {
	c := b.ctx
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := b.prepare(); err != nil {
		return nil, err
	}
	if err := b.checkInsert(OpLoad); err != nil {
		return nil, err
	}
	if err := b.checkOperand(ptr); err != nil {
		return nil, err
	}
	if tt := c.types.MustLookup(ptr.ty); tt.Kind != types.KindPointer {
		return nil, fmt.Errorf("%w: load address must be a pointer, got %s", ErrIllTypedOperation,
			types.Format(c.types, ptr.ty))
	}
	if err := checkSizedValueType(c.types, ty, "load"); err != nil {
		return nil, err
	}
	ins := &Instr{op: OpLoad, ty: ty, operands: []*Value{ptr}}
	v := b.newResult(ins, name)
	b.insert(ins)
	return v, nil
}

// BuildStore writes val through ptr. Void-typed; returns the instruction.
func (b *Builder) BuildStore(val, ptr *Value) (*Instr, error) {
	c := b.ctx
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := b.prepare(); err != nil {
		return nil, err
	}
	if err := b.checkInsert(OpStore); err != nil {
		return nil, err
	}
	if err := b.checkOperand(val); err != nil {
		return nil, err
	}
	if err := b.checkOperand(ptr); err != nil {
		return nil, err
	}
	if tt := c.types.MustLookup(ptr.ty); tt.Kind != types.KindPointer {
		return nil, fmt.Errorf("%w: store address must be a pointer, got %s", ErrIllTypedOperation,
			types.Format(c.types, ptr.ty))
	}
	ins := &Instr{op: OpStore, operands: []*Value{val, ptr}}
	b.insert(ins)
	return ins, nil
}

func checkSizedValueType(in *types.Interner, ty types.TypeID, what string) error {
	tt, ok := in.Lookup(ty)
	if !ok {
		return fmt.Errorf("%w: %s of unknown type#%d", ErrIllTypedOperation, what, ty)
	}
	switch tt.Kind {
	case types.KindVoid, types.KindFunc, types.KindInvalid:
		return fmt.Errorf("%w: %s of non-value type %s", ErrIllTypedOperation, what, tt.Kind)
	case types.KindStruct:
		if info, ok := in.StructInfo(ty); ok && info.Opaque {
			return fmt.Errorf("%w: %s of opaque struct %q", ErrIllTypedOperation, what, info.Name)
		}
	}
	return nil
}

// Calls and phi ----------------------------------------------------------------

// BuildCall calls a function declared in the same module. Argument types
// must match the signature positionally; a variadic signature admits extra
// trailing arguments. The returned value is nil for void calls.
func (b *Builder) BuildCall(callee *Func, args []*Value, name string) (*Value, error) {
	c := b.ctx
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := b.prepare(); err != nil {
		return nil, err
	}
	if err := b.checkInsert(OpCall); err != nil {
		return nil, err
	}
	if callee == nil {
		return nil, fmt.Errorf("%w: nil callee", ErrIllTypedOperation)
	}
	if callee.mod != b.block.fn.mod {
		return nil, fmt.Errorf("%w: callee %q belongs to another module", ErrIllTypedOperation, callee.name)
	}
	info, ok := c.types.FnInfo(callee.sig)
	if !ok {
		return nil, fmt.Errorf("%w: callee %q has no signature", ErrIllTypedOperation, callee.name)
	}
	switch {
	case info.Variadic && len(args) < len(info.Params):
		return nil, fmt.Errorf("%w: call to %q needs at least %d args, got %d", ErrIllTypedOperation,
			callee.name, len(info.Params), len(args))
	case !info.Variadic && len(args) != len(info.Params):
		return nil, fmt.Errorf("%w: call to %q needs %d args, got %d", ErrIllTypedOperation,
			callee.name, len(info.Params), len(args))
	}
	for i, arg := range args {
		if err := b.checkOperand(arg); err != nil {
			return nil, err
		}
		if i < len(info.Params) && arg.ty != info.Params[i] {
			return nil, fmt.Errorf("%w: arg %d of call to %q is %s, want %s", ErrIllTypedOperation,
				i, callee.name, types.Format(c.types, arg.ty), types.Format(c.types, info.Params[i]))
		}
	}
	resultTy := info.Result
	void := c.types.MustLookup(resultTy).Kind == types.KindVoid
	ins := &Instr{op: OpCall, operands: append([]*Value(nil), args...), callee: callee}
	var v *Value
	if !void {
		ins.ty = resultTy
		v = b.newResult(ins, name)
	}
	b.insert(ins)
	return v, nil
}

// BuildPhi creates an empty phi of the given type. Incoming edges are added
// with Instr.AddIncoming on the result's Def; the verifier checks the edge
// set against the realized predecessors.
func (b *Builder) BuildPhi(ty types.TypeID, name string) (*Value, error) {
	c := b.ctx
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := b.prepare(); err != nil {
		return nil, err
	}
	if err := b.checkInsert(OpPhi); err != nil {
		return nil, err
	}
	if err := checkSizedValueType(c.types, ty, "phi"); err != nil {
		return nil, err
	}
	ins := &Instr{op: OpPhi, ty: ty}
	v := b.newResult(ins, name)
	b.insert(ins)
	return v, nil
}

// Terminators ------------------------------------------------------------------

// BuildBr ends the block with an unconditional branch.
func (b *Builder) BuildBr(dest *Block) (*Instr, error) {
	c := b.ctx
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := b.prepare(); err != nil {
		return nil, err
	}
	if err := b.checkInsert(OpBr); err != nil {
		return nil, err
	}
	if dest == nil || dest.fn != b.block.fn {
		return nil, fmt.Errorf("%w: branch target must be a block of the same function", ErrIllTypedOperation)
	}
	ins := &Instr{op: OpBr, blocks: []*Block{dest}}
	b.insert(ins)
	return ins, nil
}

// BuildCondBr ends the block with a two-way conditional branch on an i1.
func (b *Builder) BuildCondBr(cond *Value, then, els *Block) (*Instr, error) {
	c := b.ctx
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := b.prepare(); err != nil {
		return nil, err
	}
	if err := b.checkInsert(OpCondBr); err != nil {
		return nil, err
	}
	if err := b.checkOperand(cond); err != nil {
		return nil, err
	}
	if cond.ty != c.types.Builtins().I1 {
		return nil, fmt.Errorf("%w: branch condition must be i1, got %s", ErrIllTypedOperation,
			types.Format(c.types, cond.ty))
	}
	if then == nil || then.fn != b.block.fn || els == nil || els.fn != b.block.fn {
		return nil, fmt.Errorf("%w: branch targets must be blocks of the same function", ErrIllTypedOperation)
	}
	ins := &Instr{op: OpCondBr, operands: []*Value{cond}, blocks: []*Block{then, els}}
	b.insert(ins)
	return ins, nil
}

// BuildRet ends the block returning a value matching the signature result.
func (b *Builder) BuildRet(v *Value) (*Instr, error) {
	c := b.ctx
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := b.prepare(); err != nil {
		return nil, err
	}
	if err := b.checkInsert(OpRet); err != nil {
		return nil, err
	}
	if err := b.checkOperand(v); err != nil {
		return nil, err
	}
	want := b.block.fn.ResultType()
	if c.types.MustLookup(want).Kind == types.KindVoid {
		return nil, fmt.Errorf("%w: ret with value in void function", ErrIllTypedOperation)
	}
	if v.ty != want {
		return nil, fmt.Errorf("%w: ret of %s, function returns %s", ErrIllTypedOperation,
			types.Format(c.types, v.ty), types.Format(c.types, want))
	}
	ins := &Instr{op: OpRet, operands: []*Value{v}}
	b.insert(ins)
	return ins, nil
}

// BuildRetVoid ends the block returning nothing.
func (b *Builder) BuildRetVoid() (*Instr, error) {
	c := b.ctx
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := b.prepare(); err != nil {
		return nil, err
	}
	if err := b.checkInsert(OpRet); err != nil {
		return nil, err
	}
	want := b.block.fn.ResultType()
	if c.types.MustLookup(want).Kind != types.KindVoid {
		return nil, fmt.Errorf("%w: ret void in function returning %s", ErrIllTypedOperation,
			types.Format(c.types, want))
	}
	ins := &Instr{op: OpRet}
	b.insert(ins)
	return ins, nil
}

// BuildUnreachable ends the block asserting control never reaches it.
func (b *Builder) BuildUnreachable() (*Instr, error) {
	c := b.ctx
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := b.prepare(); err != nil {
		return nil, err
	}
	if err := b.checkInsert(OpUnreachable); err != nil {
		return nil, err
	}
	ins := &Instr{op: OpUnreachable}
	b.insert(ins)
	return ins, nil
}
