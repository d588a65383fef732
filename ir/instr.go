package ir

import (
	"fmt"

	"anvil/types"
)

// Op enumerates instruction operation tags.
type Op uint8

const (
	OpInvalid Op = iota

	// Integer arithmetic and bitwise.
	OpAdd
	OpSub
	OpMul
	OpSDiv
	OpUDiv
	OpSRem
	OpURem
	OpAnd
	OpOr
	OpXor
	OpShl
	OpLShr
	OpAShr

	// Float arithmetic.
	OpFAdd
	OpFSub
	OpFMul
	OpFDiv

	// Comparisons.
	OpICmp
	OpFCmp

	// Casts.
	OpTrunc
	OpZExt
	OpSExt
	OpFPTrunc
	OpFPExt
	OpFPToSI
	OpFPToUI
	OpSIToFP
	OpUIToFP
	OpPtrToInt
	OpIntToPtr
	OpBitcast

	// Memory.
	OpAlloca
	OpLoad
	OpStore

	// Control and misc.
	OpCall
	OpPhi

	// Terminators.
	OpBr
	OpCondBr
	OpRet
	OpUnreachable
)

var opNames = map[Op]string{
	OpAdd: "add", OpSub: "sub", OpMul: "mul", OpSDiv: "sdiv", OpUDiv: "udiv",
	OpSRem: "srem", OpURem: "urem", OpAnd: "and", OpOr: "or", OpXor: "xor",
	OpShl: "shl", OpLShr: "lshr", OpAShr: "ashr",
	OpFAdd: "fadd", OpFSub: "fsub", OpFMul: "fmul", OpFDiv: "fdiv",
	OpICmp: "icmp", OpFCmp: "fcmp",
	OpTrunc: "trunc", OpZExt: "zext", OpSExt: "sext",
	OpFPTrunc: "fptrunc", OpFPExt: "fpext",
	OpFPToSI: "fptosi", OpFPToUI: "fptoui", OpSIToFP: "sitofp", OpUIToFP: "uitofp",
	OpPtrToInt: "ptrtoint", OpIntToPtr: "inttoptr", OpBitcast: "bitcast",
	OpAlloca: "alloca", OpLoad: "load", OpStore: "store",
	OpCall: "call", OpPhi: "phi",
	OpBr: "br", OpCondBr: "condbr", OpRet: "ret", OpUnreachable: "unreachable",
}

func (op Op) String() string {
	if s, ok := opNames[op]; ok {
		return s
	}
	return fmt.Sprintf("Op(%d)", op)
}

// IsTerminator reports whether the op ends a basic block.
func (op Op) IsTerminator() bool {
	switch op {
	case OpBr, OpCondBr, OpRet, OpUnreachable:
		return true
	}
	return false
}

// IntPredicate enumerates integer comparison conditions.
type IntPredicate uint8

const (
	IntEQ IntPredicate = iota
	IntNE
	IntUGT
	IntUGE
	IntULT
	IntULE
	IntSGT
	IntSGE
	IntSLT
	IntSLE
)

var intPredNames = [...]string{"eq", "ne", "ugt", "uge", "ult", "ule", "sgt", "sge", "slt", "sle"}

func (p IntPredicate) String() string {
	if int(p) < len(intPredNames) {
		return intPredNames[p]
	}
	return fmt.Sprintf("IntPredicate(%d)", p)
}

// FloatPredicate enumerates ordered/unordered float comparison conditions.
type FloatPredicate uint8

const (
	FloatOEQ FloatPredicate = iota
	FloatONE
	FloatOGT
	FloatOGE
	FloatOLT
	FloatOLE
	FloatORD
	FloatUNO
)

var floatPredNames = [...]string{"oeq", "one", "ogt", "oge", "olt", "ole", "ord", "uno"}

func (p FloatPredicate) String() string {
	if int(p) < len(floatPredNames) {
		return floatPredNames[p]
	}
	return fmt.Sprintf("FloatPredicate(%d)", p)
}

// Instr is one operation: a tag, ordered operands, optional successor
// blocks, and, unless void, a result value of a statically determined type.
type Instr struct {
	op       Op
	parent   *Block
	ty       types.TypeID // result type; NoTypeID for void ops
	operands []*Value
	blocks   []*Block // br/condbr successors; phi incoming preds
	result   *Value

	ipred   IntPredicate
	fpred   FloatPredicate
	pointee types.TypeID // alloca: allocated type
	callee  *Func
}

// Op returns the operation tag.
func (i *Instr) Op() Op { return i.op }

// Parent returns the owning block.
func (i *Instr) Parent() *Block { return i.parent }

// Type returns the result type, NoTypeID for void operations.
func (i *Instr) Type() types.TypeID { return i.ty }

// Operands returns the ordered operand values.
// Callers must not modify the returned slice.
func (i *Instr) Operands() []*Value { return i.operands }

// Blocks returns successor blocks for branches, or incoming predecessor
// blocks for phi nodes (parallel to Operands).
func (i *Instr) Blocks() []*Block { return i.blocks }

// Result returns the result value, nil for void operations.
func (i *Instr) Result() *Value { return i.result }

// IntPred returns the predicate of an icmp.
func (i *Instr) IntPred() IntPredicate { return i.ipred }

// FloatPred returns the predicate of an fcmp.
func (i *Instr) FloatPred() FloatPredicate { return i.fpred }

// Pointee returns the allocated type of an alloca.
func (i *Instr) Pointee() types.TypeID { return i.pointee }

// Callee returns the called function of a call.
func (i *Instr) Callee() *Func { return i.callee }

// AddIncoming appends one predecessor edge to a phi node. The value must
// have the phi's type and the predecessor must be a block of the same
// function, listed at most once. Completeness of the edge set against the
// realized predecessors is checked by the verifier, since predecessors may
// not all exist yet during construction.
func (i *Instr) AddIncoming(v *Value, pred *Block) error {
	if i.op != OpPhi {
		return fmt.Errorf("%w: AddIncoming on %s", ErrIllTypedOperation, i.op)
	}
	c := i.parent.fn.mod.ctx
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.alive(); err != nil {
		return err
	}
	if v == nil || pred == nil {
		return fmt.Errorf("%w: phi incoming requires value and block", ErrIllTypedOperation)
	}
	if v.arena != c.Arena() {
		return fmt.Errorf("%w: incoming value belongs to a different context", ErrCrossContext)
	}
	if v.ty != i.ty {
		return fmt.Errorf("%w: incoming value is %s, phi is %s", ErrIllTypedOperation,
			types.Format(c.types, v.ty), types.Format(c.types, i.ty))
	}
	if pred.fn != i.parent.fn {
		return fmt.Errorf("%w: incoming block %q belongs to another function", ErrIllTypedOperation, pred.label)
	}
	for _, b := range i.blocks {
		if b == pred {
			return fmt.Errorf("%w: duplicate incoming block %q", ErrIllTypedOperation, pred.label)
		}
	}
	i.operands = append(i.operands, v)
	i.blocks = append(i.blocks, pred)
	return nil
}
